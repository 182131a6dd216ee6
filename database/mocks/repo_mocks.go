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

package mocks

import (
	"context"
	"time"

	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface.
// ExecuteInTx hands the configured Tx to the callback.
type MockDataSource struct {
	mock.Mock
	Tx *MockTx
}

func (m *MockDataSource) ExecuteInTx(ctx context.Context, fn func(tx database.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

// Transaction methods

func (m *MockDataSource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	txn, _ := args.Get(0).(*model.Transaction)
	return txn, args.Error(1)
}

func (m *MockDataSource) GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetRecentTransactionsByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetTransactionsByAccountAndType(ctx context.Context, accountID string, txnType model.TransactionType) ([]model.Transaction, error) {
	args := m.Called(ctx, accountID, txnType)
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) GetStatement(ctx context.Context, accountID string, from, to time.Time) ([]model.Transaction, error) {
	args := m.Called(ctx, accountID, from, to)
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockDataSource) SumAmountByTypeForAccount(ctx context.Context, accountID string, txnType model.TransactionType) (model.TransactionTotal, error) {
	args := m.Called(ctx, accountID, txnType)
	return args.Get(0).(model.TransactionTotal), args.Error(1)
}

// Account methods

func (m *MockDataSource) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockDataSource) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockDataSource) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	args := m.Called(ctx, number)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockDataSource) AccountExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockDataSource) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]model.Account), args.Error(1)
}

// Customer methods

func (m *MockDataSource) CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error) {
	args := m.Called(ctx, customer)
	return args.Get(0).(model.Customer), args.Error(1)
}

func (m *MockDataSource) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	args := m.Called(ctx, id)
	customer, _ := args.Get(0).(*model.Customer)
	return customer, args.Error(1)
}

func (m *MockDataSource) GetCustomerByDocument(ctx context.Context, document string) (*model.Customer, error) {
	args := m.Called(ctx, document)
	customer, _ := args.Get(0).(*model.Customer)
	return customer, args.Error(1)
}

func (m *MockDataSource) CustomerExistsByDocument(ctx context.Context, document string) (bool, error) {
	args := m.Called(ctx, document)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetAllCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Customer), args.Error(1)
}

func (m *MockDataSource) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// Card methods

func (m *MockDataSource) CreateCard(ctx context.Context, card model.Card) (model.Card, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(model.Card), args.Error(1)
}

func (m *MockDataSource) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	args := m.Called(ctx, id)
	card, _ := args.Get(0).(*model.Card)
	return card, args.Error(1)
}

func (m *MockDataSource) CardExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetAllCards(ctx context.Context, limit, offset int) ([]model.Card, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Card), args.Error(1)
}

func (m *MockDataSource) GetCardsByCustomer(ctx context.Context, customerID string) ([]model.Card, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]model.Card), args.Error(1)
}

func (m *MockDataSource) UpdateCard(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockDataSource) DeleteCard(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTx is a mock implementation of database.Tx.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) GetAccountForUpdate(ctx context.Context, id string) (*model.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *MockTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockTx) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	recorded, _ := args.Get(0).(*model.Transaction)
	return recorded, args.Error(1)
}

func (m *MockTx) DeleteTransaction(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTx) DeleteTransactionsByAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockTx) DeleteAccount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTx) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockTx) DeleteCardsByCustomer(ctx context.Context, customerID string) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

func (m *MockTx) DeleteCustomer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
