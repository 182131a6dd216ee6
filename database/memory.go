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

package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	redlock "github.com/blnkfinance/vault/internal/lock"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
)

const memoryRowLockWait = 10 * time.Second

// MemoryDataSource keeps every record in process memory. It is selected with
// the "memory://" data source and backs the engine and API tests.
//
// Writes made inside ExecuteInTx are staged and applied together on commit.
// Accounts touched by a unit are row locked until the unit ends, mirroring
// SELECT ... FOR UPDATE on Postgres.
type MemoryDataSource struct {
	mu             sync.RWMutex
	accounts       map[string]model.Account
	accountNumbers map[string]string
	transactions   map[string]model.Transaction
	customers      map[string]model.Customer
	customerDocs   map[string]string
	cards          map[string]model.Card
	cardNumbers    map[string]string

	rowLocks *redlock.LocalProvider
}

func NewMemoryDataSource() *MemoryDataSource {
	return &MemoryDataSource{
		accounts:       make(map[string]model.Account),
		accountNumbers: make(map[string]string),
		transactions:   make(map[string]model.Transaction),
		customers:      make(map[string]model.Customer),
		customerDocs:   make(map[string]string),
		cards:          make(map[string]model.Card),
		cardNumbers:    make(map[string]string),
		rowLocks:       redlock.NewLocalProvider(),
	}
}

func notFound(kind, id string) error {
	return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("%s with ID '%s' not found", kind, id), nil)
}

func conflict(message string) error {
	return apierror.NewAPIError(apierror.ErrConflict, message, nil)
}

// Accounts

func (m *MemoryDataSource) CreateAccount(_ context.Context, account model.Account) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.accountNumbers[account.AccountNumber]; taken {
		return account, conflict(fmt.Sprintf("account number '%s' already exists", account.AccountNumber))
	}
	account.AccountID = model.GenerateUUIDWithSuffix("acc")
	account.CreatedAt = time.Now().UTC()
	m.accounts[account.AccountID] = account
	m.accountNumbers[account.AccountNumber] = account.AccountID
	return account, nil
}

func (m *MemoryDataSource) GetAccountByID(_ context.Context, id string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return &account, nil
}

func (m *MemoryDataSource) GetAccountByNumber(_ context.Context, number string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.accountNumbers[number]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("account with number '%s' not found", number), nil)
	}
	account := m.accounts[id]
	return &account, nil
}

func (m *MemoryDataSource) AccountExistsByNumber(_ context.Context, number string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accountNumbers[number]
	return ok, nil
}

func (m *MemoryDataSource) GetAllAccounts(_ context.Context, limit, offset int) ([]model.Account, error) {
	m.mu.RLock()
	accounts := make([]model.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	m.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })
	return paginate(accounts, limit, offset), nil
}

func (m *MemoryDataSource) GetAccountsByCustomer(_ context.Context, customerID string) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountsByCustomer(customerID), nil
}

func (m *MemoryDataSource) accountsByCustomer(customerID string) []model.Account {
	accounts := []model.Account{}
	for _, a := range m.accounts {
		if a.CustomerID == customerID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })
	return accounts
}

// Transactions

func (m *MemoryDataSource) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, notFound("transaction", id)
	}
	return &txn, nil
}

func (m *MemoryDataSource) GetAllTransactions(_ context.Context, limit, offset int) ([]model.Transaction, error) {
	return paginate(m.filterTransactions(func(model.Transaction) bool { return true }), limit, offset), nil
}

func (m *MemoryDataSource) GetTransactionsByAccount(_ context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	return paginate(m.filterTransactions(touches(accountID)), limit, offset), nil
}

func (m *MemoryDataSource) GetRecentTransactionsByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error) {
	return m.GetTransactionsByAccount(ctx, accountID, limit, 0)
}

func (m *MemoryDataSource) GetTransactionsByAccountAndType(_ context.Context, accountID string, txnType model.TransactionType) ([]model.Transaction, error) {
	match := touches(accountID)
	return m.filterTransactions(func(t model.Transaction) bool {
		return t.Type == txnType && match(t)
	}), nil
}

func (m *MemoryDataSource) GetStatement(_ context.Context, accountID string, from, to time.Time) ([]model.Transaction, error) {
	match := touches(accountID)
	return m.filterTransactions(func(t model.Transaction) bool {
		return match(t) && !t.Date.Before(from) && !t.Date.After(to)
	}), nil
}

func (m *MemoryDataSource) SumAmountByTypeForAccount(ctx context.Context, accountID string, txnType model.TransactionType) (model.TransactionTotal, error) {
	txns, _ := m.GetTransactionsByAccountAndType(ctx, accountID, txnType)
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return model.TransactionTotal{AccountID: accountID, Type: txnType, Total: total}, nil
}

// filterTransactions returns matching entries ordered by date, newest first.
func (m *MemoryDataSource) filterTransactions(match func(model.Transaction) bool) []model.Transaction {
	m.mu.RLock()
	txns := []model.Transaction{}
	for _, t := range m.transactions {
		if match(t) {
			txns = append(txns, t)
		}
	}
	m.mu.RUnlock()

	sort.Slice(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].TransactionID > txns[j].TransactionID
		}
		return txns[i].Date.After(txns[j].Date)
	})
	return txns
}

func touches(accountID string) func(model.Transaction) bool {
	return func(t model.Transaction) bool {
		return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
			(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
	}
}

// Customers

func (m *MemoryDataSource) CreateCustomer(_ context.Context, customer model.Customer) (model.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.customerDocs[customer.Document]; taken {
		return customer, conflict(fmt.Sprintf("customer with document '%s' already exists", customer.Document))
	}
	customer.CustomerID = model.GenerateUUIDWithSuffix("cus")
	customer.CreatedAt = time.Now().UTC()
	m.customers[customer.CustomerID] = customer
	m.customerDocs[customer.Document] = customer.CustomerID
	return customer, nil
}

func (m *MemoryDataSource) GetCustomerByID(_ context.Context, id string) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, notFound("customer", id)
	}
	return &c, nil
}

func (m *MemoryDataSource) GetCustomerByDocument(_ context.Context, document string) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.customerDocs[document]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("customer with document '%s' not found", document), nil)
	}
	c := m.customers[id]
	return &c, nil
}

func (m *MemoryDataSource) CustomerExistsByDocument(_ context.Context, document string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.customerDocs[document]
	return ok, nil
}

func (m *MemoryDataSource) GetAllCustomers(_ context.Context, limit, offset int) ([]model.Customer, error) {
	m.mu.RLock()
	customers := make([]model.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		customers = append(customers, c)
	}
	m.mu.RUnlock()

	sort.Slice(customers, func(i, j int) bool { return customers[i].CreatedAt.After(customers[j].CreatedAt) })
	return paginate(customers, limit, offset), nil
}

func (m *MemoryDataSource) UpdateCustomer(_ context.Context, customer *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.customers[customer.CustomerID]
	if !ok {
		return notFound("customer", customer.CustomerID)
	}
	existing.FirstName = customer.FirstName
	existing.LastName = customer.LastName
	existing.Email = customer.Email
	existing.Phone = customer.Phone
	m.customers[customer.CustomerID] = existing
	return nil
}

// Cards

func (m *MemoryDataSource) CreateCard(_ context.Context, card model.Card) (model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.cardNumbers[card.CardNumber]; taken {
		return card, conflict(fmt.Sprintf("card number '%s' already exists", card.CardNumber))
	}
	card.CardID = model.GenerateUUIDWithSuffix("crd")
	card.CreatedAt = time.Now().UTC()
	m.cards[card.CardID] = card
	m.cardNumbers[card.CardNumber] = card.CardID
	return card, nil
}

func (m *MemoryDataSource) GetCardByID(_ context.Context, id string) (*model.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cards[id]
	if !ok {
		return nil, notFound("card", id)
	}
	return &c, nil
}

func (m *MemoryDataSource) CardExistsByNumber(_ context.Context, number string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cardNumbers[number]
	return ok, nil
}

func (m *MemoryDataSource) GetAllCards(_ context.Context, limit, offset int) ([]model.Card, error) {
	m.mu.RLock()
	cards := make([]model.Card, 0, len(m.cards))
	for _, c := range m.cards {
		cards = append(cards, c)
	}
	m.mu.RUnlock()

	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return paginate(cards, limit, offset), nil
}

func (m *MemoryDataSource) GetCardsByCustomer(_ context.Context, customerID string) ([]model.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cards := []model.Card{}
	for _, c := range m.cards {
		if c.CustomerID == customerID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (m *MemoryDataSource) UpdateCard(_ context.Context, card *model.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.cards[card.CardID]
	if !ok {
		return notFound("card", card.CardID)
	}
	existing.CardType = card.CardType
	existing.ExpirationDate = card.ExpirationDate
	existing.CreditLimit = card.CreditLimit
	m.cards[card.CardID] = existing
	return nil
}

func (m *MemoryDataSource) DeleteCard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return notFound("card", id)
	}
	delete(m.cards, id)
	delete(m.cardNumbers, c.CardNumber)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
