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
	"time"

	"github.com/blnkfinance/vault/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	transaction // Interface for transaction-related operations
	account     // Interface for account-related operations
	customer    // Interface for customer-related operations
	card        // Interface for card-related operations

	// ExecuteInTx runs fn inside a single storage transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	ExecuteInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of writes that must happen inside one atomic unit.
// Accounts read through GetAccountForUpdate stay exclusively held by the
// unit until it commits or rolls back.
type Tx interface {
	GetAccountForUpdate(ctx context.Context, id string) (*model.Account, error) // Reads an account and holds it for update
	UpdateAccount(ctx context.Context, account *model.Account) error            // Persists the account type and balance
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	DeleteTransactionsByAccount(ctx context.Context, accountID string) error // Removes entries referencing the account on either side
	DeleteAccount(ctx context.Context, id string) error
	GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error)
	DeleteCardsByCustomer(ctx context.Context, customerID string) error
	DeleteCustomer(ctx context.Context, id string) error
}

// transaction defines read access to the transaction log.
type transaction interface {
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)                                       // Retrieves a transaction by ID
	GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error)                           // Retrieves all transactions, newest first
	GetTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) // Entries referencing the account on either side
	GetRecentTransactionsByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error)
	GetTransactionsByAccountAndType(ctx context.Context, accountID string, txnType model.TransactionType) ([]model.Transaction, error)
	GetStatement(ctx context.Context, accountID string, from, to time.Time) ([]model.Transaction, error) // Entries dated within [from, to]
	SumAmountByTypeForAccount(ctx context.Context, accountID string, txnType model.TransactionType) (model.TransactionTotal, error)
}

// account defines methods for handling accounts.
type account interface {
	CreateAccount(ctx context.Context, account model.Account) (model.Account, error) // Creates a new account
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)          // Retrieves an account by ID
	GetAccountByNumber(ctx context.Context, number string) (*model.Account, error)  // Retrieves an account by its number
	AccountExistsByNumber(ctx context.Context, number string) (bool, error)
	GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error)
	GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error)
}

// customer defines methods for handling customers.
type customer interface {
	CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)
	GetCustomerByDocument(ctx context.Context, document string) (*model.Customer, error)
	CustomerExistsByDocument(ctx context.Context, document string) (bool, error)
	GetAllCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
}

// card defines methods for handling cards.
type card interface {
	CreateCard(ctx context.Context, card model.Card) (model.Card, error)
	GetCardByID(ctx context.Context, id string) (*model.Card, error)
	CardExistsByNumber(ctx context.Context, number string) (bool, error)
	GetAllCards(ctx context.Context, limit, offset int) ([]model.Card, error)
	GetCardsByCustomer(ctx context.Context, customerID string) ([]model.Card, error)
	UpdateCard(ctx context.Context, card *model.Card) error
	DeleteCard(ctx context.Context, id string) error
}
