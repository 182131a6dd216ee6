package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
)

const cardColumns = `card_id, card_number, card_type, expiration_date, credit_limit, customer_id, created_at`

func (d Datasource) CreateCard(ctx context.Context, card model.Card) (model.Card, error) {
	card.CardID = model.GenerateUUIDWithSuffix("crd")
	card.CreatedAt = time.Now().UTC()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO vault.cards (card_id, card_number, card_type, expiration_date, credit_limit, customer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, card.CardID, card.CardNumber, card.CardType, card.ExpirationDate, card.CreditLimit, card.CustomerID, card.CreatedAt)
	if err != nil {
		return card, storageError(err, "Failed to create card")
	}
	return card, nil
}

func (d Datasource) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	c := &model.Card{}
	err := d.Conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM vault.cards WHERE card_id = $1`, id).
		Scan(&c.CardID, &c.CardNumber, &c.CardType, &c.ExpirationDate, &c.CreditLimit, &c.CustomerID, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("card with ID '%s' not found", id), nil)
		}
		return nil, storageError(err, "Failed to retrieve card")
	}
	return c, nil
}

func (d Datasource) CardExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM vault.cards WHERE card_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, storageError(err, "Failed to check card number")
	}
	return exists, nil
}

func (d Datasource) GetAllCards(ctx context.Context, limit, offset int) ([]model.Card, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM vault.cards
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve cards")
	}
	return scanCards(rows)
}

func (d Datasource) GetCardsByCustomer(ctx context.Context, customerID string) ([]model.Card, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM vault.cards
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve customer cards")
	}
	return scanCards(rows)
}

// UpdateCard overwrites the card type, expiration date and credit limit.
func (d Datasource) UpdateCard(ctx context.Context, card *model.Card) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE vault.cards
		SET card_type = $2, expiration_date = $3, credit_limit = $4
		WHERE card_id = $1
	`, card.CardID, card.CardType, card.ExpirationDate, card.CreditLimit)
	if err != nil {
		return storageError(err, "Failed to update card")
	}
	return expectAffected(result, fmt.Sprintf("card with ID '%s' not found", card.CardID))
}

func (d Datasource) DeleteCard(ctx context.Context, id string) error {
	result, err := d.Conn.ExecContext(ctx, `DELETE FROM vault.cards WHERE card_id = $1`, id)
	if err != nil {
		return storageError(err, "Failed to delete card")
	}
	return expectAffected(result, fmt.Sprintf("card with ID '%s' not found", id))
}

func scanCards(rows *sql.Rows) ([]model.Card, error) {
	defer func() { _ = rows.Close() }()

	cards := []model.Card{}
	for rows.Next() {
		c := model.Card{}
		if err := rows.Scan(&c.CardID, &c.CardNumber, &c.CardType, &c.ExpirationDate, &c.CreditLimit, &c.CustomerID, &c.CreatedAt); err != nil {
			return nil, storageError(err, "Failed to scan card")
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "Failed to iterate cards")
	}
	return cards, nil
}
