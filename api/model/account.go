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
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/blnkfinance/vault/model"
)

type CreateAccount struct {
	AccountNumber  string           `json:"account_number"`
	AccountType    string           `json:"account_type"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	CustomerID     string           `json:"customer_id"`
}

type UpdateAccount struct {
	AccountType string           `json:"account_type"`
	Balance     *decimal.Decimal `json:"balance"`
}

func (a *CreateAccount) ValidateCreateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.AccountNumber, validation.Required, validation.Length(1, model.MaxAccountNumberLength)),
		validation.Field(&a.AccountType, validation.Required),
		validation.Field(&a.InitialBalance, validation.NotNil, validation.By(nonNegative)),
		validation.Field(&a.CustomerID, validation.Required),
	)
}

func (a *UpdateAccount) ValidateUpdateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.AccountType, validation.Required),
		validation.Field(&a.Balance, validation.NotNil, validation.By(nonNegative)),
	)
}

// ToAccount returns UNSUPPORTED_TYPE when the account type is not a known one.
func (a *CreateAccount) ToAccount() (model.Account, error) {
	accountType, err := model.ParseAccountType(a.AccountType)
	if err != nil {
		return model.Account{}, err
	}
	return model.Account{
		AccountNumber: a.AccountNumber,
		AccountType:   accountType,
		Balance:       *a.InitialBalance,
		CustomerID:    a.CustomerID,
	}, nil
}

func (a *UpdateAccount) ToAccountType() (model.AccountType, error) {
	return model.ParseAccountType(a.AccountType)
}
