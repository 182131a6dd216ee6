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
	"fmt"

	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("vault.movements")

// Deposit credits amount to the destination account and records a DEPOSIT entry.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - destinationAccountID string: The account receiving the funds.
// - amount decimal.Decimal: The amount, rounded half-up to two decimals.
//
// Returns:
// - *model.Transaction: The recorded entry.
// - error: NOT_FOUND, INVALID_AMOUNT, LOCK_TIMEOUT or a storage error.
func (v *Vault) Deposit(ctx context.Context, destinationAccountID string, amount decimal.Decimal) (*model.Transaction, error) {
	return v.deposit(ctx, destinationAccountID, &amount)
}

func (v *Vault) deposit(ctx context.Context, destinationAccountID string, amount *decimal.Decimal) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Deposit", trace.WithAttributes(attribute.String("account.destination", destinationAccountID)))
	defer span.End()

	var recorded *model.Transaction
	err := v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			account, err := tx.GetAccountForUpdate(ctx, destinationAccountID)
			if err != nil {
				return err
			}

			normalized, err := model.NormalizeAmount(amount)
			if err != nil {
				return err
			}

			account.ApplyDeposit(normalized)
			if err := tx.UpdateAccount(ctx, account); err != nil {
				return err
			}

			recorded, err = tx.RecordTransaction(ctx, &model.Transaction{
				Amount:               normalized,
				Type:                 model.TransactionTypeDeposit,
				DestinationAccountID: ptr.String(destinationAccountID),
			})
			return err
		})
	}, destinationAccountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("Deposit recorded", trace.WithAttributes(attribute.String("transaction.id", recorded.TransactionID)))
	v.sendTransactionWebhook(ctx, recorded)
	return recorded, nil
}

// Withdraw debits amount from the source account and records a WITHDRAWAL entry.
// An empty account fails with ZERO_BALANCE before the INSUFFICIENT_FUNDS check.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - sourceAccountID string: The account the funds leave.
// - amount decimal.Decimal: The amount, rounded half-up to two decimals.
//
// Returns:
// - *model.Transaction: The recorded entry.
// - error: NOT_FOUND, INVALID_AMOUNT, ZERO_BALANCE, INSUFFICIENT_FUNDS, LOCK_TIMEOUT or a storage error.
func (v *Vault) Withdraw(ctx context.Context, sourceAccountID string, amount decimal.Decimal) (*model.Transaction, error) {
	return v.withdraw(ctx, sourceAccountID, &amount)
}

func (v *Vault) withdraw(ctx context.Context, sourceAccountID string, amount *decimal.Decimal) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Withdraw", trace.WithAttributes(attribute.String("account.source", sourceAccountID)))
	defer span.End()

	var recorded *model.Transaction
	err := v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			account, err := tx.GetAccountForUpdate(ctx, sourceAccountID)
			if err != nil {
				return err
			}

			normalized, err := model.NormalizeAmount(amount)
			if err != nil {
				return err
			}

			if err := account.ApplyWithdrawal(normalized); err != nil {
				return err
			}
			if err := tx.UpdateAccount(ctx, account); err != nil {
				return err
			}

			recorded, err = tx.RecordTransaction(ctx, &model.Transaction{
				Amount:          normalized,
				Type:            model.TransactionTypeWithdrawal,
				SourceAccountID: ptr.String(sourceAccountID),
			})
			return err
		})
	}, sourceAccountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("Withdrawal recorded", trace.WithAttributes(attribute.String("transaction.id", recorded.TransactionID)))
	v.sendTransactionWebhook(ctx, recorded)
	return recorded, nil
}

// Transfer moves amount from the source to the destination account and records
// a single TRANSFER entry. Both balances and the entry commit together or not at all.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - sourceAccountID string: The account the funds leave.
// - destinationAccountID string: The account receiving the funds.
// - amount decimal.Decimal: The amount, rounded half-up to two decimals.
//
// Returns:
// - *model.Transaction: The recorded entry.
// - error: SAME_ACCOUNT, NOT_FOUND, INVALID_AMOUNT, ZERO_BALANCE, INSUFFICIENT_FUNDS, LOCK_TIMEOUT or a storage error.
func (v *Vault) Transfer(ctx context.Context, sourceAccountID, destinationAccountID string, amount decimal.Decimal) (*model.Transaction, error) {
	return v.transfer(ctx, sourceAccountID, destinationAccountID, &amount)
}

func (v *Vault) transfer(ctx context.Context, sourceAccountID, destinationAccountID string, amount *decimal.Decimal) (*model.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Transfer", trace.WithAttributes(
		attribute.String("account.source", sourceAccountID),
		attribute.String("account.destination", destinationAccountID),
	))
	defer span.End()

	if sourceAccountID == destinationAccountID {
		err := apierror.NewAPIError(apierror.ErrSameAccount, "source and destination accounts must differ", nil)
		span.RecordError(err)
		return nil, err
	}

	var recorded *model.Transaction
	err := v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			source, destination, err := readTransferAccounts(ctx, tx, sourceAccountID, destinationAccountID)
			if err != nil {
				return err
			}

			normalized, err := model.NormalizeAmount(amount)
			if err != nil {
				return err
			}

			if err := source.ApplyWithdrawal(normalized); err != nil {
				return err
			}
			destination.ApplyDeposit(normalized)

			for _, account := range ascending(source, destination) {
				if err := tx.UpdateAccount(ctx, account); err != nil {
					return err
				}
			}

			recorded, err = tx.RecordTransaction(ctx, &model.Transaction{
				Amount:               normalized,
				Type:                 model.TransactionTypeTransfer,
				SourceAccountID:      ptr.String(sourceAccountID),
				DestinationAccountID: ptr.String(destinationAccountID),
			})
			return err
		})
	}, sourceAccountID, destinationAccountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.AddEvent("Transfer recorded", trace.WithAttributes(attribute.String("transaction.id", recorded.TransactionID)))
	v.sendTransactionWebhook(ctx, recorded)
	return recorded, nil
}

// readTransferAccounts reads both sides of a transfer for update in ascending id order.
// A missing source is reported before a missing destination whatever the read order.
func readTransferAccounts(ctx context.Context, tx database.Tx, sourceID, destinationID string) (*model.Account, *model.Account, error) {
	ids := []string{sourceID, destinationID}
	if destinationID < sourceID {
		ids = []string{destinationID, sourceID}
	}

	accounts := make(map[string]*model.Account, 2)
	missing := make(map[string]error, 2)
	for _, id := range ids {
		account, err := tx.GetAccountForUpdate(ctx, id)
		if apierror.HasCode(err, apierror.ErrNotFound) {
			missing[id] = err
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		accounts[id] = account
	}

	if err, ok := missing[sourceID]; ok {
		return nil, nil, err
	}
	if err, ok := missing[destinationID]; ok {
		return nil, nil, err
	}
	return accounts[sourceID], accounts[destinationID], nil
}

func ascending(a, b *model.Account) []*model.Account {
	if b.AccountID < a.AccountID {
		return []*model.Account{b, a}
	}
	return []*model.Account{a, b}
}

// CreateMovement dispatches a movement request to Deposit, Withdraw or Transfer.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - movement model.Movement: The requested movement.
//
// Returns:
// - *model.Transaction: The recorded entry.
// - error: UNSUPPORTED_TYPE for an empty or unknown type, MISSING_ACCOUNT when a
// required account is absent, otherwise the error of the dispatched operation.
func (v *Vault) CreateMovement(ctx context.Context, movement model.Movement) (*model.Transaction, error) {
	if !movement.Type.IsValid() {
		return nil, apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported transaction type '%s'", movement.Type), nil)
	}

	switch movement.Type {
	case model.TransactionTypeTransfer:
		if !present(movement.SourceAccountID) || !present(movement.DestinationAccountID) {
			return nil, apierror.NewAPIError(apierror.ErrMissingAccount, "transfer: source and destination accounts are required", nil)
		}
		return v.transfer(ctx, *movement.SourceAccountID, *movement.DestinationAccountID, movement.Amount)
	case model.TransactionTypeDeposit:
		if !present(movement.DestinationAccountID) {
			return nil, apierror.NewAPIError(apierror.ErrMissingAccount, "deposit: destination account is required", nil)
		}
		return v.deposit(ctx, *movement.DestinationAccountID, movement.Amount)
	default:
		if !present(movement.SourceAccountID) {
			return nil, apierror.NewAPIError(apierror.ErrMissingAccount, "withdrawal: source account is required", nil)
		}
		return v.withdraw(ctx, *movement.SourceAccountID, movement.Amount)
	}
}

func present(id *string) bool {
	return id != nil && *id != ""
}
