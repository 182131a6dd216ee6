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

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// ParseTransactionType accepts the movement type case-insensitively.
// An empty or unknown value yields UNSUPPORTED_TYPE.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported transaction type '%s'", s), nil)
	}
	return t, nil
}

// Transaction is an immutable ledger entry. Single sided movements leave the
// opposite account reference nil.
type Transaction struct {
	TransactionID        string          `json:"transaction_id"`
	Date                 time.Time       `json:"date"`
	Amount               decimal.Decimal `json:"amount"`
	Type                 TransactionType `json:"type"`
	SourceAccountID      *string         `json:"source_account_id"`
	DestinationAccountID *string         `json:"destination_account_id"`
}

// Validate checks that the amount is positive and that the account references
// match the transaction type.
func (transaction *Transaction) Validate() error {
	if !transaction.Amount.IsPositive() {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, "amount must be greater than zero", nil)
	}

	hasSource := transaction.SourceAccountID != nil && *transaction.SourceAccountID != ""
	hasDestination := transaction.DestinationAccountID != nil && *transaction.DestinationAccountID != ""

	switch transaction.Type {
	case TransactionTypeDeposit:
		if !hasDestination || hasSource {
			return apierror.NewAPIError(apierror.ErrMissingAccount, "a deposit references only a destination account", nil)
		}
	case TransactionTypeWithdrawal:
		if !hasSource || hasDestination {
			return apierror.NewAPIError(apierror.ErrMissingAccount, "a withdrawal references only a source account", nil)
		}
	case TransactionTypeTransfer:
		if !hasSource || !hasDestination {
			return apierror.NewAPIError(apierror.ErrMissingAccount, "a transfer references both a source and a destination account", nil)
		}
		if *transaction.SourceAccountID == *transaction.DestinationAccountID {
			return apierror.NewAPIError(apierror.ErrSameAccount, "source and destination accounts must differ", nil)
		}
	default:
		return apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported transaction type '%s'", transaction.Type), nil)
	}
	return nil
}

// Movement is a request to move funds, dispatched by type. A nil amount is
// rejected as INVALID_AMOUNT once the accounts have been resolved.
type Movement struct {
	Type                 TransactionType  `json:"type"`
	Amount               *decimal.Decimal `json:"amount"`
	SourceAccountID      *string          `json:"source_account_id,omitempty"`
	DestinationAccountID *string          `json:"destination_account_id,omitempty"`
}

// TransactionTotal is the sum of movements of one type against one account.
type TransactionTotal struct {
	AccountID string          `json:"account_id"`
	Type      TransactionType `json:"type"`
	Total     decimal.Decimal `json:"total"`
}
