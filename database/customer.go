package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
)

const customerColumns = `customer_id, first_name, last_name, document, email, phone, created_at`

// CreateCustomer inserts a new customer. A duplicate document yields CONFLICT.
func (d Datasource) CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error) {
	customer.CustomerID = model.GenerateUUIDWithSuffix("cus")
	customer.CreatedAt = time.Now().UTC()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO vault.customers (customer_id, first_name, last_name, document, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, customer.CustomerID, customer.FirstName, customer.LastName, customer.Document, customer.Email, customer.Phone, customer.CreatedAt)
	if err != nil {
		return customer, storageError(err, "Failed to create customer")
	}
	return customer, nil
}

func (d Datasource) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM vault.customers WHERE customer_id = $1`, id)
	return scanCustomer(row, fmt.Sprintf("customer with ID '%s' not found", id))
}

func (d Datasource) GetCustomerByDocument(ctx context.Context, document string) (*model.Customer, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM vault.customers WHERE document = $1`, document)
	return scanCustomer(row, fmt.Sprintf("customer with document '%s' not found", document))
}

func (d Datasource) CustomerExistsByDocument(ctx context.Context, document string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM vault.customers WHERE document = $1)`, document).Scan(&exists)
	if err != nil {
		return false, storageError(err, "Failed to check customer document")
	}
	return exists, nil
}

func (d Datasource) GetAllCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	limit, offset = normalizePage(limit, offset)
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM vault.customers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, storageError(err, "Failed to retrieve customers")
	}
	defer func() { _ = rows.Close() }()

	customers := []model.Customer{}
	for rows.Next() {
		c := model.Customer{}
		if err := rows.Scan(&c.CustomerID, &c.FirstName, &c.LastName, &c.Document, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, storageError(err, "Failed to scan customer")
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateCustomer overwrites the mutable customer fields. The document is left untouched.
func (d Datasource) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE vault.customers
		SET first_name = $2, last_name = $3, email = $4, phone = $5
		WHERE customer_id = $1
	`, customer.CustomerID, customer.FirstName, customer.LastName, customer.Email, customer.Phone)
	if err != nil {
		return storageError(err, "Failed to update customer")
	}
	return expectAffected(result, fmt.Sprintf("customer with ID '%s' not found", customer.CustomerID))
}

func scanCustomer(row *sql.Row, notFound string) (*model.Customer, error) {
	c := &model.Customer{}
	err := row.Scan(&c.CustomerID, &c.FirstName, &c.LastName, &c.Document, &c.Email, &c.Phone, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, notFound, nil)
		}
		return nil, storageError(err, "Failed to retrieve customer")
	}
	return c, nil
}

// expectAffected turns an update or delete that touched no row into NOT_FOUND.
func expectAffected(result sql.Result, notFound string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return storageError(err, "Failed to read affected rows")
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, notFound, nil)
	}
	return nil
}
