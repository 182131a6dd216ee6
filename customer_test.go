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
	"testing"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	customer := createTestCustomer(t, v)

	assert.Contains(t, customer.CustomerID, "cus_")
	assert.False(t, customer.CreatedAt.IsZero())

	byDocument, err := v.GetCustomerByDocument(ctx, customer.Document)
	require.NoError(t, err)
	assert.Equal(t, customer.CustomerID, byDocument.CustomerID)

	_, err = v.CreateCustomer(ctx, model.Customer{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Document:  customer.Document,
	})
	assert.True(t, apierror.HasCode(err, apierror.ErrConflict))
}

func TestGetCustomer_NotFound(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.GetCustomer(context.Background(), "cus_missing")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))

	_, err = v.GetCustomerByDocument(context.Background(), "000")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
}

func TestGetAllCustomers_Paginates(t *testing.T) {
	v, _ := newTestVault(t)
	for i := 0; i < 5; i++ {
		createTestCustomer(t, v)
	}

	page, err := v.GetAllCustomers(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	last, err := v.GetAllCustomers(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestUpdateCustomer(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	customer := createTestCustomer(t, v)

	updated, err := v.UpdateCustomer(ctx, customer.CustomerID, CustomerUpdate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+441234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, customer.Document, updated.Document)

	stored, err := v.GetCustomer(ctx, customer.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)

	_, err = v.UpdateCustomer(ctx, "cus_missing", CustomerUpdate{FirstName: "x"})
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
}

func TestDeleteCustomer_Cascades(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	customer := createTestCustomer(t, v)
	first := createTestAccountFor(t, v, customer.CustomerID, "50.00")
	second := createTestAccountFor(t, v, customer.CustomerID, "0")
	outsider := createTestAccount(t, v, "20.00")

	_, err := v.Transfer(ctx, first.AccountID, outsider.AccountID, decimal.RequireFromString("5"))
	require.NoError(t, err)
	_, err = v.Deposit(ctx, second.AccountID, decimal.RequireFromString("5"))
	require.NoError(t, err)
	kept, err := v.Deposit(ctx, outsider.AccountID, decimal.RequireFromString("1"))
	require.NoError(t, err)

	card, err := v.CreateCard(ctx, model.Card{
		CardNumber:     gofakeit.CreditCardNumber(nil),
		CardType:       model.CardTypeDebit,
		ExpirationDate: time.Now().AddDate(3, 0, 0),
		CustomerID:     customer.CustomerID,
	})
	require.NoError(t, err)

	require.NoError(t, v.DeleteCustomer(ctx, customer.CustomerID))

	_, err = v.GetCustomer(ctx, customer.CustomerID)
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
	_, err = v.GetAccount(ctx, first.AccountID)
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
	_, err = v.GetAccount(ctx, second.AccountID)
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
	_, err = v.GetCard(ctx, card.CardID)
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))

	// The outsider keeps its balance; only entries it shared with deleted accounts go.
	requireBalance(t, v, outsider.AccountID, "26.00")
	all, err := v.GetAllTransactions(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.TransactionID, all[0].TransactionID)
}

func TestDeleteCustomer_NotFound(t *testing.T) {
	v, _ := newTestVault(t)

	err := v.DeleteCustomer(context.Background(), "cus_missing")
	assert.True(t, apierror.HasCode(err, apierror.ErrNotFound))
}
