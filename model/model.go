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
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits kept for balances and amounts.
const AmountScale = 2

// GenerateUUIDWithSuffix generates a UUID with a given module name as a suffix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New() // Generate a new UUID.
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr) // Append the module as a suffix to the UUID.
	return idWithSuffix
}

// NormalizeAmount rounds an amount half-up to AmountScale fractional digits
// and rejects a missing amount or anything not strictly positive after rounding.
func NormalizeAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInvalidAmount, "amount is required", nil)
	}
	rounded := amount.Round(AmountScale)
	if !rounded.IsPositive() {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInvalidAmount, "amount must be greater than zero", nil)
	}
	return rounded, nil
}

// RoundBalance rounds a balance to AmountScale without any sign check.
func RoundBalance(balance decimal.Decimal) decimal.Decimal {
	return balance.Round(AmountScale)
}

// Today returns the current UTC date with the time component truncated.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
