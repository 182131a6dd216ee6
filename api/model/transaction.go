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
	"github.com/shopspring/decimal"

	"github.com/blnkfinance/vault/model"
)

// CreateMovement is the body of POST /transactions. The type, the amount and
// the account references are all checked by the engine, after the accounts are
// resolved, so that its error codes and their order reach the caller.
type CreateMovement struct {
	Type                 string           `json:"type"`
	Amount               *decimal.Decimal `json:"amount"`
	SourceAccountID      *string          `json:"source_account_id"`
	DestinationAccountID *string          `json:"destination_account_id"`
}

type CreateTransfer struct {
	SourceAccountID      string           `json:"source_account_id"`
	DestinationAccountID string           `json:"destination_account_id"`
	Amount               *decimal.Decimal `json:"amount"`
}

func (m *CreateMovement) ToMovement() model.Movement {
	return model.Movement{
		Type:                 model.TransactionType(upper(m.Type)),
		Amount:               m.Amount,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
	}
}

func (t *CreateTransfer) ToMovement() model.Movement {
	return model.Movement{
		Type:                 model.TransactionTypeTransfer,
		Amount:               t.Amount,
		SourceAccountID:      &t.SourceAccountID,
		DestinationAccountID: &t.DestinationAccountID,
	}
}
