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

const MaxAccountNumberLength = 22

type AccountType string

const (
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeChecking AccountType = "CHECKING"
)

func (t AccountType) IsValid() bool {
	return t == AccountTypeSavings || t == AccountTypeChecking
}

// ParseAccountType accepts the account type case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported account type '%s'", s), nil)
	}
	return t, nil
}

type Account struct {
	AccountID     string          `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	AccountType   AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	OpenDate      time.Time       `json:"open_date"`
	CustomerID    string          `json:"customer_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ApplyDeposit adds an already normalized amount to the balance.
func (a *Account) ApplyDeposit(amount decimal.Decimal) {
	a.Balance = RoundBalance(a.Balance.Add(amount))
}

// ApplyWithdrawal subtracts an already normalized amount from the balance.
// An empty or negative balance is reported as ZERO_BALANCE before the
// INSUFFICIENT_FUNDS comparison is made.
func (a *Account) ApplyWithdrawal(amount decimal.Decimal) error {
	if !a.Balance.IsPositive() {
		return apierror.NewAPIError(apierror.ErrZeroBalance, fmt.Sprintf("account '%s' has no available balance", a.AccountID), nil)
	}
	if a.Balance.LessThan(amount) {
		return apierror.NewAPIError(apierror.ErrInsufficientFunds, fmt.Sprintf("account '%s' has insufficient funds", a.AccountID), nil)
	}
	a.Balance = RoundBalance(a.Balance.Sub(amount))
	return nil
}
