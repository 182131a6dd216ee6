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
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var cardTracer = otel.Tracer("vault.cards")

// CardUpdate holds the card fields that may change after issue.
type CardUpdate struct {
	CardType       model.CardType
	ExpirationDate time.Time
	CreditLimit    decimal.Decimal
}

func (v *Vault) CreateCard(ctx context.Context, card model.Card) (model.Card, error) {
	ctx, span := cardTracer.Start(ctx, "CreateCard")
	defer span.End()

	if card.CreditLimit.IsNegative() {
		err := apierror.NewAPIError(apierror.ErrInvalidAmount, "credit limit cannot be negative", nil)
		span.RecordError(err)
		return model.Card{}, err
	}

	exists, err := v.datasource.CardExistsByNumber(ctx, card.CardNumber)
	if err != nil {
		span.RecordError(err)
		return model.Card{}, err
	}
	if exists {
		err := apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("card number '%s' already exists", card.CardNumber), nil)
		span.RecordError(err)
		return model.Card{}, err
	}

	if _, err := v.datasource.GetCustomerByID(ctx, card.CustomerID); err != nil {
		span.RecordError(err)
		return model.Card{}, err
	}

	card.CreditLimit = model.RoundBalance(card.CreditLimit)
	created, err := v.datasource.CreateCard(ctx, card)
	if err != nil {
		span.RecordError(err)
		return model.Card{}, err
	}
	span.AddEvent("Card created", trace.WithAttributes(attribute.String("card.id", created.CardID)))
	return created, nil
}

func (v *Vault) GetCard(ctx context.Context, id string) (*model.Card, error) {
	ctx, span := cardTracer.Start(ctx, "GetCard")
	defer span.End()

	card, err := v.datasource.GetCardByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return card, nil
}

func (v *Vault) GetAllCards(ctx context.Context, limit, offset int) ([]model.Card, error) {
	ctx, span := cardTracer.Start(ctx, "GetAllCards")
	defer span.End()

	cards, err := v.datasource.GetAllCards(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return cards, nil
}

func (v *Vault) GetCardsByCustomer(ctx context.Context, customerID string) ([]model.Card, error) {
	ctx, span := cardTracer.Start(ctx, "GetCardsByCustomer")
	defer span.End()

	cards, err := v.datasource.GetCardsByCustomer(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return cards, nil
}

func (v *Vault) UpdateCard(ctx context.Context, id string, update CardUpdate) (*model.Card, error) {
	ctx, span := cardTracer.Start(ctx, "UpdateCard", trace.WithAttributes(attribute.String("card.id", id)))
	defer span.End()

	if update.CreditLimit.IsNegative() {
		err := apierror.NewAPIError(apierror.ErrInvalidAmount, "credit limit cannot be negative", nil)
		span.RecordError(err)
		return nil, err
	}

	card, err := v.datasource.GetCardByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	card.CardType = update.CardType
	card.ExpirationDate = update.ExpirationDate
	card.CreditLimit = model.RoundBalance(update.CreditLimit)
	if err := v.datasource.UpdateCard(ctx, card); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return card, nil
}

func (v *Vault) DeleteCard(ctx context.Context, id string) error {
	ctx, span := cardTracer.Start(ctx, "DeleteCard", trace.WithAttributes(attribute.String("card.id", id)))
	defer span.End()

	if err := v.datasource.DeleteCard(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
