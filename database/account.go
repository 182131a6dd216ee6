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
	"database/sql"
	"fmt"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
)

const accountColumns = `account_id, account_number, account_type, balance, open_date, customer_id, created_at`

// CreateAccount inserts a new Account into the database.
// Parameters:
// - ctx: Context for the database operation.
// - account: The account to insert. The number, type, balance, open date and customer are taken as given.
// Returns:
// - model.Account: The created account with the assigned account ID and creation timestamp.
// - error: CONFLICT when the account number is already taken, otherwise any database error.
func (d Datasource) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	account.AccountID = model.GenerateUUIDWithSuffix("acc")
	account.CreatedAt = time.Now().UTC()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO vault.accounts (account_id, account_number, account_type, balance, open_date, customer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.AccountID, account.AccountNumber, account.AccountType, account.Balance, account.OpenDate, account.CustomerID, account.CreatedAt)
	if err != nil {
		return account, storageError(err, "Failed to create account")
	}

	return account, nil
}

// GetAccountByID retrieves an account by its ID from the database.
// Returns NOT_FOUND when no account has the given ID.
func (d Datasource) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM vault.accounts WHERE account_id = $1`, id)
	return scanAccount(row, fmt.Sprintf("account with ID '%s' not found", id))
}

// GetAccountByNumber retrieves an account based on its number.
func (d Datasource) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM vault.accounts WHERE account_number = $1`, number)
	return scanAccount(row, fmt.Sprintf("account with number '%s' not found", number))
}

// AccountExistsByNumber reports whether an account with the given number exists.
func (d Datasource) AccountExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM vault.accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, storageError(err, "Failed to check account number")
	}
	return exists, nil
}

// GetAllAccounts retrieves a page of accounts, newest first.
func (d Datasource) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM vault.accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve accounts")
	}
	return scanAccounts(rows)
}

// GetAccountsByCustomer retrieves every account owned by a customer.
func (d Datasource) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	return accountsByCustomer(ctx, d.Conn, customerID, false)
}

func accountsByCustomer(ctx context.Context, q queryer, customerID string, forUpdate bool) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM vault.accounts WHERE customer_id = $1 ORDER BY account_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve customer accounts")
	}
	return scanAccounts(rows)
}

func scanAccount(row *sql.Row, notFound string) (*model.Account, error) {
	account := &model.Account{}
	err := row.Scan(&account.AccountID, &account.AccountNumber, &account.AccountType, &account.Balance,
		&account.OpenDate, &account.CustomerID, &account.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, notFound, nil)
		}
		return nil, storageError(err, "Failed to retrieve account")
	}
	return account, nil
}

func scanAccounts(rows *sql.Rows) ([]model.Account, error) {
	defer func() { _ = rows.Close() }()

	accounts := []model.Account{}
	for rows.Next() {
		account := model.Account{}
		err := rows.Scan(&account.AccountID, &account.AccountNumber, &account.AccountType, &account.Balance,
			&account.OpenDate, &account.CustomerID, &account.CreatedAt)
		if err != nil {
			return nil, storageError(err, "Failed to scan account")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "Failed to iterate accounts")
	}
	return accounts, nil
}
