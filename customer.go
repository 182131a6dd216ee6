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

	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var customerTracer = otel.Tracer("vault.customers")

// CustomerUpdate holds the customer fields that may change after creation.
// The document is fixed.
type CustomerUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (v *Vault) CreateCustomer(ctx context.Context, customer model.Customer) (model.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "CreateCustomer")
	defer span.End()

	exists, err := v.datasource.CustomerExistsByDocument(ctx, customer.Document)
	if err != nil {
		span.RecordError(err)
		return model.Customer{}, err
	}
	if exists {
		err := apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("customer with document '%s' already exists", customer.Document), nil)
		span.RecordError(err)
		return model.Customer{}, err
	}

	created, err := v.datasource.CreateCustomer(ctx, customer)
	if err != nil {
		span.RecordError(err)
		return model.Customer{}, err
	}
	span.AddEvent("Customer created", trace.WithAttributes(attribute.String("customer.id", created.CustomerID)))
	return created, nil
}

func (v *Vault) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "GetCustomer")
	defer span.End()

	customer, err := v.datasource.GetCustomerByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customer, nil
}

func (v *Vault) GetCustomerByDocument(ctx context.Context, document string) (*model.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "GetCustomerByDocument")
	defer span.End()

	customer, err := v.datasource.GetCustomerByDocument(ctx, document)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customer, nil
}

func (v *Vault) GetAllCustomers(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "GetAllCustomers")
	defer span.End()

	customers, err := v.datasource.GetAllCustomers(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customers, nil
}

func (v *Vault) UpdateCustomer(ctx context.Context, id string, update CustomerUpdate) (*model.Customer, error) {
	ctx, span := customerTracer.Start(ctx, "UpdateCustomer", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	customer, err := v.datasource.GetCustomerByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	customer.FirstName = update.FirstName
	customer.LastName = update.LastName
	customer.Email = update.Email
	customer.Phone = update.Phone
	if err := v.datasource.UpdateCustomer(ctx, customer); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer with all of its accounts, their ledger
// entries and its cards in one atomic unit. The locks of every account of the
// customer are held for the whole unit.
func (v *Vault) DeleteCustomer(ctx context.Context, id string) error {
	ctx, span := customerTracer.Start(ctx, "DeleteCustomer", trace.WithAttributes(attribute.String("customer.id", id)))
	defer span.End()

	if _, err := v.datasource.GetCustomerByID(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	accounts, err := v.datasource.GetAccountsByCustomer(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	accountIDs := make([]string, 0, len(accounts))
	for _, account := range accounts {
		accountIDs = append(accountIDs, account.AccountID)
	}

	err = v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			// Re-read under the locks: an account opened in between is removed too.
			owned, err := tx.GetAccountsByCustomer(ctx, id)
			if err != nil {
				return err
			}
			for _, account := range owned {
				if err := tx.DeleteTransactionsByAccount(ctx, account.AccountID); err != nil {
					return err
				}
				if err := tx.DeleteAccount(ctx, account.AccountID); err != nil {
					return err
				}
			}
			if err := tx.DeleteCardsByCustomer(ctx, id); err != nil {
				return err
			}
			return tx.DeleteCustomer(ctx, id)
		})
	}, accountIDs...)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.AddEvent("Customer deleted", trace.WithAttributes(attribute.Int("account.count", len(accountIDs))))
	return nil
}
