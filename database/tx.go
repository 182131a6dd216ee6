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

// ExecuteInTx runs fn inside a single database transaction.
// The transaction is rolled back if fn returns an error or panics, and committed otherwise.
//
// Parameters:
// - ctx: The context for managing the operation's lifecycle and cancellation.
// - fn: The unit of work. It receives a Tx bound to the open transaction.
//
// Returns:
// - error: The error returned by fn, or an INTERNAL_SERVER_ERROR when the transaction cannot begin or commit.
func (d Datasource) ExecuteInTx(ctx context.Context, fn func(tx Tx) error) error {
	// Begin a new transaction
	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}

	// Ensure that the transaction is rolled back if an error occurs during execution
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	return nil
}

type pgTx struct {
	tx *sql.Tx
}

// GetAccountForUpdate reads an account and takes a row lock on it that is held until the transaction ends.
func (p *pgTx) GetAccountForUpdate(ctx context.Context, id string) (*model.Account, error) {
	row := p.tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM vault.accounts WHERE account_id = $1 FOR UPDATE`, id)
	return scanAccount(row, fmt.Sprintf("account with ID '%s' not found", id))
}

// UpdateAccount persists the mutable account fields. Number, owner and open date never change.
func (p *pgTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	result, err := p.tx.ExecContext(ctx, `
		UPDATE vault.accounts
		SET account_type = $2, balance = $3
		WHERE account_id = $1
	`, account.AccountID, account.AccountType, account.Balance)
	if err != nil {
		return storageError(err, "Failed to update account")
	}
	return expectAffected(result, fmt.Sprintf("account with ID '%s' not found", account.AccountID))
}

// RecordTransaction validates and appends a ledger entry. The ID is always generated here and the
// date defaults to the current time when unset.
func (p *pgTx) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	txn.TransactionID = model.GenerateUUIDWithSuffix("txn")
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}

	_, err := p.tx.ExecContext(ctx, `
		INSERT INTO vault.transactions (transaction_id, date, amount, type, source_account_id, destination_account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, txn.TransactionID, txn.Date, txn.Amount, txn.Type, txn.SourceAccountID, txn.DestinationAccountID)
	if err != nil {
		return nil, storageError(err, "Failed to record transaction")
	}
	return txn, nil
}

func (p *pgTx) DeleteTransaction(ctx context.Context, id string) error {
	result, err := p.tx.ExecContext(ctx, `DELETE FROM vault.transactions WHERE transaction_id = $1`, id)
	if err != nil {
		return storageError(err, "Failed to delete transaction")
	}
	return expectAffected(result, fmt.Sprintf("transaction with ID '%s' not found", id))
}

func (p *pgTx) DeleteTransactionsByAccount(ctx context.Context, accountID string) error {
	_, err := p.tx.ExecContext(ctx, `
		DELETE FROM vault.transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
	`, accountID)
	if err != nil {
		return storageError(err, "Failed to delete account transactions")
	}
	return nil
}

func (p *pgTx) DeleteAccount(ctx context.Context, id string) error {
	result, err := p.tx.ExecContext(ctx, `DELETE FROM vault.accounts WHERE account_id = $1`, id)
	if err != nil {
		return storageError(err, "Failed to delete account")
	}
	return expectAffected(result, fmt.Sprintf("account with ID '%s' not found", id))
}

// GetAccountsByCustomer reads the customer's accounts with row locks held.
func (p *pgTx) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	return accountsByCustomer(ctx, p.tx, customerID, true)
}

func (p *pgTx) DeleteCardsByCustomer(ctx context.Context, customerID string) error {
	_, err := p.tx.ExecContext(ctx, `DELETE FROM vault.cards WHERE customer_id = $1`, customerID)
	if err != nil {
		return storageError(err, "Failed to delete customer cards")
	}
	return nil
}

func (p *pgTx) DeleteCustomer(ctx context.Context, id string) error {
	result, err := p.tx.ExecContext(ctx, `DELETE FROM vault.customers WHERE customer_id = $1`, id)
	if err != nil {
		return storageError(err, "Failed to delete customer")
	}
	return expectAffected(result, fmt.Sprintf("customer with ID '%s' not found", id))
}
