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
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/blnkfinance/vault/model"
)

type CreateCard struct {
	CardNumber     string           `json:"card_number"`
	CardType       string           `json:"card_type"`
	ExpirationDate string           `json:"expiration_date"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
	CustomerID     string           `json:"customer_id"`
}

type UpdateCard struct {
	CardType       string           `json:"card_type"`
	ExpirationDate string           `json:"expiration_date"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
}

func (c *CreateCard) ValidateCreateCard() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CardNumber, validation.Required, validation.Length(1, model.MaxCardNumberLength)),
		validation.Field(&c.CardType, validation.Required),
		validation.Field(&c.ExpirationDate, validation.Required, validation.By(validDate)),
		validation.Field(&c.CreditLimit, validation.By(nonNegative)),
		validation.Field(&c.CustomerID, validation.Required),
	)
}

func (c *UpdateCard) ValidateUpdateCard() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CardType, validation.Required),
		validation.Field(&c.ExpirationDate, validation.Required, validation.By(validDate)),
		validation.Field(&c.CreditLimit, validation.By(nonNegative)),
	)
}

func creditLimit(limit *decimal.Decimal) decimal.Decimal {
	if limit == nil {
		return decimal.Zero
	}
	return *limit
}

// ToCard converts the request. It must be validated first; the card type is parsed here.
func (c *CreateCard) ToCard() (model.Card, error) {
	cardType, err := model.ParseCardType(c.CardType)
	if err != nil {
		return model.Card{}, err
	}
	expiry, _ := time.Parse(DateLayout, c.ExpirationDate)
	return model.Card{
		CardNumber:     c.CardNumber,
		CardType:       cardType,
		ExpirationDate: expiry,
		CreditLimit:    creditLimit(c.CreditLimit),
		CustomerID:     c.CustomerID,
	}, nil
}

func (c *UpdateCard) ToCardUpdate() (model.CardType, time.Time, decimal.Decimal, error) {
	cardType, err := model.ParseCardType(c.CardType)
	if err != nil {
		return "", time.Time{}, decimal.Zero, err
	}
	expiry, _ := time.Parse(DateLayout, c.ExpirationDate)
	return cardType, expiry, creditLimit(c.CreditLimit), nil
}
