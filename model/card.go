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

const MaxCardNumberLength = 19

type CardType string

const (
	CardTypeCredit CardType = "CREDIT"
	CardTypeDebit  CardType = "DEBIT"
)

func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToUpper(strings.TrimSpace(s)))
	if t != CardTypeCredit && t != CardTypeDebit {
		return "", apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported card type '%s'", s), nil)
	}
	return t, nil
}

type Card struct {
	CardID         string          `json:"card_id"`
	CardNumber     string          `json:"card_number"`
	CardType       CardType        `json:"card_type"`
	ExpirationDate time.Time       `json:"expiration_date"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CustomerID     string          `json:"customer_id"`
	CreatedAt      time.Time       `json:"created_at"`
}
