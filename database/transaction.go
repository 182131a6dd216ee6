package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, date, amount, type, source_account_id, destination_account_id`

// GetTransaction retrieves a single ledger entry by ID.
func (d Datasource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM vault.transactions WHERE transaction_id = $1`, id)

	txn := &model.Transaction{}
	err := row.Scan(&txn.TransactionID, &txn.Date, &txn.Amount, &txn.Type, &txn.SourceAccountID, &txn.DestinationAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("transaction with ID '%s' not found", id), nil)
		}
		return nil, storageError(err, "Failed to retrieve transaction")
	}
	return txn, nil
}

// GetAllTransactions retrieves a page of ledger entries, newest first.
func (d Datasource) GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM vault.transactions
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve transactions")
	}
	return scanTransactions(rows)
}

// GetTransactionsByAccount retrieves a page of entries where the account is
// either the source or the destination, newest first.
func (d Datasource) GetTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM vault.transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve account transactions")
	}
	return scanTransactions(rows)
}

// GetRecentTransactionsByAccount retrieves the latest entries for an account.
func (d Datasource) GetRecentTransactionsByAccount(ctx context.Context, accountID string, limit int) ([]model.Transaction, error) {
	return d.GetTransactionsByAccount(ctx, accountID, limit, 0)
}

// GetTransactionsByAccountAndType retrieves every entry of one type touching the account.
func (d Datasource) GetTransactionsByAccountAndType(ctx context.Context, accountID string, txnType model.TransactionType) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM vault.transactions
		WHERE type = $2 AND (source_account_id = $1 OR destination_account_id = $1)
		ORDER BY date DESC
	`, accountID, txnType)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve account transactions")
	}
	return scanTransactions(rows)
}

// GetStatement retrieves the entries touching the account dated between from and to inclusive.
func (d Datasource) GetStatement(ctx context.Context, accountID string, from, to time.Time) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM vault.transactions
		WHERE (source_account_id = $1 OR destination_account_id = $1) AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`, accountID, from, to)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve statement")
	}
	return scanTransactions(rows)
}

// SumAmountByTypeForAccount totals the amounts of one movement type touching the account.
func (d Datasource) SumAmountByTypeForAccount(ctx context.Context, accountID string, txnType model.TransactionType) (model.TransactionTotal, error) {
	total := model.TransactionTotal{AccountID: accountID, Type: txnType}
	var sum decimal.NullDecimal
	err := d.Conn.QueryRowContext(ctx, `
		SELECT SUM(amount)
		FROM vault.transactions
		WHERE type = $2 AND (source_account_id = $1 OR destination_account_id = $1)
	`, accountID, txnType).Scan(&sum)
	if err != nil {
		return total, storageError(err, "Failed to total transactions")
	}
	total.Total = decimal.Zero
	if sum.Valid {
		total.Total = sum.Decimal
	}
	return total, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn := model.Transaction{}
		err := rows.Scan(&txn.TransactionID, &txn.Date, &txn.Amount, &txn.Type, &txn.SourceAccountID, &txn.DestinationAccountID)
		if err != nil {
			return nil, storageError(err, "Failed to scan transaction")
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "Failed to iterate transactions")
	}
	return transactions, nil
}
