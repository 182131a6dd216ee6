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
	"time"

	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var transactionTracer = otel.Tracer("vault.transactions")

// RecentTransactionsLimit is the number of entries returned by GetRecentTransactions.
const RecentTransactionsLimit = 10

func (v *Vault) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetTransaction")
	defer span.End()

	txn, err := v.datasource.GetTransaction(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return txn, nil
}

func (v *Vault) GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetAllTransactions")
	defer span.End()

	txns, err := v.datasource.GetAllTransactions(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("Transactions retrieved", trace.WithAttributes(attribute.Int("transaction.count", len(txns))))
	return txns, nil
}

// DeleteTransaction removes a ledger entry as an administrative correction.
// Balances are left as they are; the movement is not reversed.
func (v *Vault) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := transactionTracer.Start(ctx, "DeleteTransaction", trace.WithAttributes(attribute.String("transaction.id", id)))
	defer span.End()

	err := v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// GetAccountHistory returns the entries referencing an account on either side, newest first.
func (v *Vault) GetAccountHistory(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetAccountHistory", trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	if _, err := v.datasource.GetAccountByID(ctx, accountID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	txns, err := v.datasource.GetTransactionsByAccount(ctx, accountID, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return txns, nil
}

// GetRecentTransactions returns the latest RecentTransactionsLimit entries of an account.
func (v *Vault) GetRecentTransactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetRecentTransactions", trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	if _, err := v.datasource.GetAccountByID(ctx, accountID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	txns, err := v.datasource.GetRecentTransactionsByAccount(ctx, accountID, RecentTransactionsLimit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return txns, nil
}

func (v *Vault) GetAccountHistoryByType(ctx context.Context, accountID string, txnType model.TransactionType) ([]model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetAccountHistoryByType", trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	if !txnType.IsValid() {
		err := apierror.NewAPIError(apierror.ErrUnsupportedType, "unsupported transaction type '"+string(txnType)+"'", nil)
		span.RecordError(err)
		return nil, err
	}
	if _, err := v.datasource.GetAccountByID(ctx, accountID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	txns, err := v.datasource.GetTransactionsByAccountAndType(ctx, accountID, txnType)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return txns, nil
}

// GetStatement returns the entries of an account dated within [from, to].
func (v *Vault) GetStatement(ctx context.Context, accountID string, from, to time.Time) ([]model.Transaction, error) {
	ctx, span := transactionTracer.Start(ctx, "GetStatement", trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	if to.Before(from) {
		err := apierror.NewAPIError(apierror.ErrInvalidInput, "statement end date is before its start date", nil)
		span.RecordError(err)
		return nil, err
	}
	if _, err := v.datasource.GetAccountByID(ctx, accountID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	txns, err := v.datasource.GetStatement(ctx, accountID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return txns, nil
}

// GetTransactionTotal sums the entries of one type that reference the account on either side.
func (v *Vault) GetTransactionTotal(ctx context.Context, accountID string, txnType model.TransactionType) (model.TransactionTotal, error) {
	ctx, span := transactionTracer.Start(ctx, "GetTransactionTotal", trace.WithAttributes(attribute.String("account.id", accountID)))
	defer span.End()

	if !txnType.IsValid() {
		err := apierror.NewAPIError(apierror.ErrUnsupportedType, "unsupported transaction type '"+string(txnType)+"'", nil)
		span.RecordError(err)
		return model.TransactionTotal{}, err
	}
	if _, err := v.datasource.GetAccountByID(ctx, accountID); err != nil {
		span.RecordError(err)
		return model.TransactionTotal{}, err
	}

	total, err := v.datasource.SumAmountByTypeForAccount(ctx, accountID, txnType)
	if err != nil {
		span.RecordError(err)
		return model.TransactionTotal{}, err
	}
	return total, nil
}
