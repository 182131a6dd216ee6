/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/vault/api/middleware"
	"github.com/blnkfinance/vault/model"
)

func TestCreateMovement(t *testing.T) {
	router, v := setupRouter(t)
	source := seedAccount(t, v, "100.00")
	destination := seedAccount(t, v, "0.00")

	tests := []struct {
		name         string
		payload      map[string]interface{}
		expectedCode int
		errorCode    string
	}{
		{
			name:         "deposit",
			payload:      map[string]interface{}{"type": "DEPOSIT", "amount": "25.00", "destination_account_id": destination.AccountID},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "withdrawal",
			payload:      map[string]interface{}{"type": "withdrawal", "amount": "10.00", "source_account_id": source.AccountID},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "missing amount",
			payload:      map[string]interface{}{"type": "DEPOSIT", "destination_account_id": destination.AccountID},
			expectedCode: http.StatusBadRequest,
			errorCode:    "INVALID_AMOUNT",
		},
		{
			name:         "null amount",
			payload:      map[string]interface{}{"type": "WITHDRAWAL", "amount": nil, "source_account_id": source.AccountID},
			expectedCode: http.StatusBadRequest,
			errorCode:    "INVALID_AMOUNT",
		},
		{
			name:         "missing amount on unknown account",
			payload:      map[string]interface{}{"type": "deposit", "destination_account_id": "nope"},
			expectedCode: http.StatusNotFound,
			errorCode:    "NOT_FOUND",
		},
		{
			name:         "unsupported type",
			payload:      map[string]interface{}{"type": "REFUND", "amount": "1.00", "source_account_id": source.AccountID},
			expectedCode: http.StatusBadRequest,
			errorCode:    "UNSUPPORTED_TYPE",
		},
		{
			name:         "missing account",
			payload:      map[string]interface{}{"type": "WITHDRAWAL", "amount": "1.00"},
			expectedCode: http.StatusBadRequest,
			errorCode:    "MISSING_ACCOUNT",
		},
		{
			name:         "zero amount",
			payload:      map[string]interface{}{"type": "DEPOSIT", "amount": "0", "destination_account_id": destination.AccountID},
			expectedCode: http.StatusBadRequest,
			errorCode:    "INVALID_AMOUNT",
		},
		{
			name:         "insufficient funds",
			payload:      map[string]interface{}{"type": "WITHDRAWAL", "amount": "1000.00", "source_account_id": source.AccountID},
			expectedCode: http.StatusUnprocessableEntity,
			errorCode:    "INSUFFICIENT_FUNDS",
		},
		{
			name:         "unknown account",
			payload:      map[string]interface{}{"type": "DEPOSIT", "amount": "1.00", "destination_account_id": "acc_missing"},
			expectedCode: http.StatusNotFound,
			errorCode:    "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  jsonPayload(t, tt.payload),
				Response: &response,
				Method:   http.MethodPost,
				Route:    "/transactions",
				Router:   router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)
			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, response["code"])
			}
		})
	}

	assertBalance(t, v, source.AccountID, "90.00")
	assertBalance(t, v, destination.AccountID, "25.00")
}

func TestTransfer(t *testing.T) {
	router, v := setupRouter(t)
	source := seedAccount(t, v, "100.00")
	destination := seedAccount(t, v, "5.00")

	var response model.Transaction
	resp, err := SetUpTestRequest(TestRequest{
		Payload: jsonPayload(t, map[string]interface{}{
			"source_account_id":      source.AccountID,
			"destination_account_id": destination.AccountID,
			"amount":                 "30.25",
		}),
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/transactions/transfer",
		Router:   router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, model.TransactionTypeTransfer, response.Type)
	require.NotNil(t, response.SourceAccountID)
	assert.Equal(t, source.AccountID, *response.SourceAccountID)

	assertBalance(t, v, source.AccountID, "69.75")
	assertBalance(t, v, destination.AccountID, "35.25")
}

func TestTransfer_SameAccount(t *testing.T) {
	router, v := setupRouter(t)
	account := seedAccount(t, v, "100.00")

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload: jsonPayload(t, map[string]interface{}{
			"source_account_id":      account.AccountID,
			"destination_account_id": account.AccountID,
			"amount":                 "1.00",
		}),
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/transactions/transfer",
		Router:   router,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "SAME_ACCOUNT", response["code"])
}

func TestTransfer_Errors(t *testing.T) {
	router, v := setupRouter(t)
	source := seedAccount(t, v, "100.00")
	destination := seedAccount(t, v, "0.00")

	tests := []struct {
		name         string
		payload      map[string]interface{}
		expectedCode int
		errorCode    string
	}{
		{
			name:         "missing amount",
			payload:      map[string]interface{}{"source_account_id": source.AccountID, "destination_account_id": destination.AccountID},
			expectedCode: http.StatusBadRequest,
			errorCode:    "INVALID_AMOUNT",
		},
		{
			name:         "missing amount on unknown account",
			payload:      map[string]interface{}{"source_account_id": source.AccountID, "destination_account_id": "nope"},
			expectedCode: http.StatusNotFound,
			errorCode:    "NOT_FOUND",
		},
		{
			name:         "missing source",
			payload:      map[string]interface{}{"destination_account_id": destination.AccountID, "amount": "1.00"},
			expectedCode: http.StatusBadRequest,
			errorCode:    "MISSING_ACCOUNT",
		},
		{
			name:         "negative amount",
			payload:      map[string]interface{}{"source_account_id": source.AccountID, "destination_account_id": destination.AccountID, "amount": "-1.00"},
			expectedCode: http.StatusBadRequest,
			errorCode:    "INVALID_AMOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  jsonPayload(t, tt.payload),
				Response: &response,
				Method:   http.MethodPost,
				Route:    "/transactions/transfer",
				Router:   router,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.Equal(t, tt.errorCode, response["code"])
		})
	}

	assertBalance(t, v, source.AccountID, "100.00")
	assertBalance(t, v, destination.AccountID, "0.00")
}

func TestAccountHistoryRoutes(t *testing.T) {
	router, v := setupRouter(t)
	account := seedAccount(t, v, "50.00")
	ctx := context.Background()

	_, err := v.Deposit(ctx, account.AccountID, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	_, err = v.Withdraw(ctx, account.AccountID, decimal.RequireFromString("4.00"))
	require.NoError(t, err)
	_, err = v.Deposit(ctx, account.AccountID, decimal.RequireFromString("1.50"))
	require.NoError(t, err)

	t.Run("history", func(t *testing.T) {
		var response []model.Transaction
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/transactions?limit=2", Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, response, 2)
	})

	t.Run("by type", func(t *testing.T) {
		var response []model.Transaction
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/transactions?type=deposit", Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
		require.Len(t, response, 2)
		for _, txn := range response {
			assert.Equal(t, model.TransactionTypeDeposit, txn.Type)
		}
	})

	t.Run("recent", func(t *testing.T) {
		var response []model.Transaction
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/transactions/recent", Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, response, 3)
	})

	t.Run("totals", func(t *testing.T) {
		var response model.TransactionTotal
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/totals?type=DEPOSIT", Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, decimal.RequireFromString("11.50").Equal(response.Total))
	})

	t.Run("statement", func(t *testing.T) {
		today := model.Today().Format("2006-01-02")
		var response []model.Transaction
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/statement?from=" + today + "&to=" + today, Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Len(t, response, 3)
	})

	t.Run("statement with bad date", func(t *testing.T) {
		var response map[string]interface{}
		resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/accounts/" + account.AccountID + "/statement?from=yesterday&to=today", Router: router, Response: &response})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "INVALID_INPUT", response["code"])
	})
}

func TestDeleteTransaction_KeepsBalance(t *testing.T) {
	router, v := setupRouter(t)
	account := seedAccount(t, v, "0.00")
	txn, err := v.Deposit(context.Background(), account.AccountID, decimal.RequireFromString("20.00"))
	require.NoError(t, err)

	resp, err := SetUpTestRequest(TestRequest{Method: http.MethodDelete, Route: "/transactions/" + txn.TransactionID, Router: router})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assertBalance(t, v, account.AccountID, "20.00")

	var response map[string]interface{}
	resp, err = SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/transactions/" + txn.TransactionID, Router: router, Response: &response})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateMovement_IdempotentReplay(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cnf := testConfig()
	cnf.Redis.Dns = mr.Addr()
	cnf.Idempotency.Enabled = true
	cnf.Idempotency.TTLHours = 1
	router, v := setupRouterWith(t, cnf)
	account := seedAccount(t, v, "0.00")

	send := func() (model.Transaction, *http.Response) {
		var response model.Transaction
		resp, err := SetUpTestRequest(TestRequest{
			Payload:  jsonPayload(t, map[string]interface{}{"type": "DEPOSIT", "amount": "15.00", "destination_account_id": account.AccountID}),
			Response: &response,
			Method:   http.MethodPost,
			Route:    "/transactions",
			Router:   router,
			Header:   map[string]string{middleware.IdempotencyHeader: "deposit-once"},
		})
		require.NoError(t, err)
		return response, resp.Result()
	}

	first, firstResp := send()
	second, secondResp := send()

	assert.Equal(t, http.StatusCreated, firstResp.StatusCode)
	assert.Equal(t, http.StatusCreated, secondResp.StatusCode)
	assert.Equal(t, "true", secondResp.Header.Get(middleware.IdempotencyHitHeader))
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assertBalance(t, v, account.AccountID, "15.00")
}
