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

package vault

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	v, _ := newTestVault(t)
	customer := createTestCustomer(t, v)

	account, err := v.CreateAccount(context.Background(), model.Account{
		AccountNumber: " 0001234567 ",
		AccountType:   model.AccountTypeChecking,
		Balance:       decimal.RequireFromString("10.005"),
		CustomerID:    customer.CustomerID,
	})
	require.NoError(t, err)

	assert.Contains(t, account.AccountID, "acc_")
	assert.Equal(t, "0001234567", account.AccountNumber)
	assert.True(t, decimal.RequireFromString("10.01").Equal(account.Balance))
	assert.Equal(t, model.Today(), account.OpenDate)

	byNumber, err := v.GetAccountByNumber(context.Background(), "0001234567")
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, byNumber.AccountID)
}

func TestCreateAccount_KeepsOpenDate(t *testing.T) {
	v, _ := newTestVault(t)
	customer := createTestCustomer(t, v)
	openDate := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)

	account, err := v.CreateAccount(context.Background(), model.Account{
		AccountNumber: gofakeit.Numerify("########"),
		AccountType:   model.AccountTypeSavings,
		OpenDate:      openDate,
		CustomerID:    customer.CustomerID,
	})
	require.NoError(t, err)
	assert.True(t, openDate.Equal(account.OpenDate))
}

func TestCreateAccount_Validation(t *testing.T) {
	v, _ := newTestVault(t)
	customer := createTestCustomer(t, v)

	tests := []struct {
		name    string
		account model.Account
		code    apierror.ErrorCode
	}{
		{"empty number", model.Account{AccountType: model.AccountTypeSavings, CustomerID: customer.CustomerID}, apierror.ErrInvalidInput},
		{"number too long", model.Account{AccountNumber: "12345678901234567890123", AccountType: model.AccountTypeSavings, CustomerID: customer.CustomerID}, apierror.ErrInvalidInput},
		{"unknown type", model.Account{AccountNumber: "1", AccountType: "BROKERAGE", CustomerID: customer.CustomerID}, apierror.ErrUnsupportedType},
		{"negative balance", model.Account{AccountNumber: "1", AccountType: model.AccountTypeSavings, Balance: decimal.NewFromInt(-1), CustomerID: customer.CustomerID}, apierror.ErrInvalidAmount},
		{"missing customer id", model.Account{AccountNumber: "1", AccountType: model.AccountTypeSavings}, apierror.ErrInvalidInput},
		{"unknown customer", model.Account{AccountNumber: "1", AccountType: model.AccountTypeSavings, CustomerID: "cus_missing"}, apierror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.CreateAccount(context.Background(), tt.account)
			assert.True(t, apierror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestCreateAccount_DuplicateNumberBeforeCustomerCheck(t *testing.T) {
	v, _ := newTestVault(t)
	existing := createTestAccount(t, v, "0")

	_, err := v.CreateAccount(context.Background(), model.Account{
		AccountNumber: existing.AccountNumber,
		AccountType:   model.AccountTypeSavings,
		CustomerID:    "cus_missing",
	})
	assert.True(t, apierror.HasCode(err, apierror.ErrConflict))
}

func TestGetAccount_NotFound(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.GetAccount(context.Background(), "acc_missing")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))

	_, err = v.GetAccountByNumber(context.Background(), "999")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
}

func TestGetAccountsByCustomer(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	customer := createTestCustomer(t, v)
	createTestAccountFor(t, v, customer.CustomerID, "1.00")
	createTestAccountFor(t, v, customer.CustomerID, "2.00")
	createTestAccount(t, v, "3.00")

	accounts, err := v.GetAccountsByCustomer(ctx, customer.CustomerID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	all, err := v.GetAllAccounts(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := v.GetAccountsByCustomer(ctx, "cus_missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateAccount(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	account := createTestAccount(t, v, "100.00")

	updated, err := v.UpdateAccount(ctx, account.AccountID, AccountUpdate{
		AccountType: model.AccountTypeChecking,
		Balance:     decimal.RequireFromString("42.123"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeChecking, updated.AccountType)
	requireBalance(t, v, account.AccountID, "42.12")

	// A direct balance update records no ledger entry.
	history, err := v.GetAccountHistory(ctx, account.AccountID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdateAccount_Errors(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	account := createTestAccount(t, v, "100.00")

	_, err := v.UpdateAccount(ctx, account.AccountID, AccountUpdate{AccountType: "BROKERAGE"})
	assert.True(t, apierror.HasCode(err, apierror.ErrUnsupportedType))

	_, err = v.UpdateAccount(ctx, account.AccountID, AccountUpdate{AccountType: model.AccountTypeSavings, Balance: decimal.NewFromInt(-5)})
	assert.True(t, apierror.HasCode(err, apierror.ErrInvalidAmount))

	_, err = v.UpdateAccount(ctx, "acc_missing", AccountUpdate{AccountType: model.AccountTypeSavings})
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
	requireBalance(t, v, account.AccountID, "100.00")
}

func TestDeleteAccount_RemovesLedgerEntries(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	a := createTestAccount(t, v, "100.00")
	b := createTestAccount(t, v, "0")

	_, err := v.Transfer(ctx, a.AccountID, b.AccountID, decimal.RequireFromString("10"))
	require.NoError(t, err)
	deposit, err := v.Deposit(ctx, b.AccountID, decimal.RequireFromString("5"))
	require.NoError(t, err)
	other, err := v.Withdraw(ctx, b.AccountID, decimal.RequireFromString("1"))
	require.NoError(t, err)
	_, err = v.Deposit(ctx, a.AccountID, decimal.RequireFromString("1"))
	require.NoError(t, err)

	require.NoError(t, v.DeleteAccount(ctx, a.AccountID))

	_, err = v.GetAccount(ctx, a.AccountID)
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))

	all, err := v.GetAllTransactions(ctx, 100, 0)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, txn := range all {
		ids = append(ids, txn.TransactionID)
	}
	assert.ElementsMatch(t, []string{deposit.TransactionID, other.TransactionID}, ids)

	// The number is free again.
	_, err = v.CreateAccount(ctx, model.Account{AccountNumber: a.AccountNumber, AccountType: model.AccountTypeSavings, CustomerID: a.CustomerID})
	assert.NoError(t, err)

	assert.True(t, apierror.HasCode(v.DeleteAccount(ctx, a.AccountID), apierror.ErrNotFound))
}

func selfLookupConfig(baseURL, secret string) *config.Configuration {
	cnf := memoryConfig()
	cnf.AccountClient.BaseURL = baseURL
	cnf.AccountClient.TimeoutSec = 5
	cnf.Server.SecretKey = secret
	return cnf
}

func TestGetAccountSelf(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(selfLookupConfig("http://vault.test/accounts", "s3cret"))
	v, err := NewVault(database.NewMemoryDataSource())
	require.NoError(t, err)

	httpmock.RegisterResponder(http.MethodGet, "http://vault.test/accounts/acc_1", func(req *http.Request) (*http.Response, error) {
		if req.Header.Get(SecretKeyHeader) != "s3cret" {
			return httpmock.NewStringResponse(http.StatusUnauthorized, "missing key"), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, model.Account{
			AccountID:     "acc_1",
			AccountNumber: "0001",
			AccountType:   model.AccountTypeSavings,
			Balance:       decimal.RequireFromString("12.50"),
			CustomerID:    "cus_1",
		})
	})
	httpmock.RegisterResponder(http.MethodGet, "http://vault.test/accounts/acc_2",
		httpmock.NewStringResponder(http.StatusNotFound, `{"code":"NOT_FOUND"}`))
	httpmock.RegisterResponder(http.MethodGet, "http://vault.test/accounts/acc_3",
		httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	account, err := v.GetAccountSelf(context.Background(), "acc_1")
	require.NoError(t, err)
	assert.Equal(t, "0001", account.AccountNumber)
	assert.True(t, decimal.RequireFromString("12.50").Equal(account.Balance))

	_, err = v.GetAccountSelf(context.Background(), "acc_2")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))

	_, err = v.GetAccountSelf(context.Background(), "acc_3")
	assert.True(t, apierror.HasCode(err, apierror.ErrInternalServer))
}

func TestGetAccountSelf_NotConfigured(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.GetAccountSelf(context.Background(), "acc_1")
	assert.True(t, apierror.HasCode(err, apierror.ErrInternalServer))
}
