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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/internal/request"
	"github.com/blnkfinance/vault/model"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var accountTracer = otel.Tracer("vault.accounts")

// AccountUpdate replaces the type and balance of an account.
type AccountUpdate struct {
	AccountType model.AccountType
	Balance     decimal.Decimal
}

func validateNewAccount(account *model.Account) error {
	account.AccountNumber = strings.TrimSpace(account.AccountNumber)
	if account.AccountNumber == "" || len(account.AccountNumber) > model.MaxAccountNumberLength {
		return apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("account number must be between 1 and %d characters", model.MaxAccountNumberLength), nil)
	}
	if !account.AccountType.IsValid() {
		return apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported account type '%s'", account.AccountType), nil)
	}
	if account.Balance.IsNegative() {
		return apierror.NewAPIError(apierror.ErrInvalidAmount, "initial balance cannot be negative", nil)
	}
	if account.CustomerID == "" {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "customer id is required", nil)
	}
	return nil
}

// CreateAccount opens an account for an existing customer. The account number
// must be unique and the open date defaults to today.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - account model.Account: The account to create.
//
// Returns:
// - model.Account: The created account with its generated id.
// - error: INVALID_INPUT, UNSUPPORTED_TYPE, INVALID_AMOUNT, CONFLICT, NOT_FOUND or a storage error.
func (v *Vault) CreateAccount(ctx context.Context, account model.Account) (model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "CreateAccount")
	defer span.End()

	if err := validateNewAccount(&account); err != nil {
		span.RecordError(err)
		return model.Account{}, err
	}

	exists, err := v.datasource.AccountExistsByNumber(ctx, account.AccountNumber)
	if err != nil {
		span.RecordError(err)
		return model.Account{}, err
	}
	if exists {
		err := apierror.NewAPIError(apierror.ErrConflict, fmt.Sprintf("account number '%s' already exists", account.AccountNumber), nil)
		span.RecordError(err)
		return model.Account{}, err
	}

	if _, err := v.datasource.GetCustomerByID(ctx, account.CustomerID); err != nil {
		span.RecordError(err)
		return model.Account{}, err
	}

	account.Balance = model.RoundBalance(account.Balance)
	if account.OpenDate.IsZero() {
		account.OpenDate = model.Today()
	}

	created, err := v.datasource.CreateAccount(ctx, account)
	if err != nil {
		span.RecordError(err)
		return model.Account{}, err
	}
	span.AddEvent("Account created", trace.WithAttributes(attribute.String("account.id", created.AccountID)))
	return created, nil
}

func (v *Vault) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "GetAccount")
	defer span.End()

	account, err := v.datasource.GetAccountByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return account, nil
}

func (v *Vault) GetAccountByNumber(ctx context.Context, number string) (*model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "GetAccountByNumber")
	defer span.End()

	account, err := v.datasource.GetAccountByNumber(ctx, number)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return account, nil
}

func (v *Vault) GetAllAccounts(ctx context.Context, limit, offset int) ([]model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "GetAllAccounts")
	defer span.End()

	accounts, err := v.datasource.GetAllAccounts(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.AddEvent("Accounts retrieved", trace.WithAttributes(attribute.Int("account.count", len(accounts))))
	return accounts, nil
}

// GetAccountsByCustomer lists the accounts of a customer. An unknown customer
// simply has no accounts.
func (v *Vault) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "GetAccountsByCustomer")
	defer span.End()

	accounts, err := v.datasource.GetAccountsByCustomer(ctx, customerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount overrides the type and balance of an account under its lock.
// It bypasses the movement rules and records no ledger entry, but a negative
// balance is still rejected.
func (v *Vault) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "UpdateAccount", trace.WithAttributes(attribute.String("account.id", id)))
	defer span.End()

	if !update.AccountType.IsValid() {
		err := apierror.NewAPIError(apierror.ErrUnsupportedType, fmt.Sprintf("unsupported account type '%s'", update.AccountType), nil)
		span.RecordError(err)
		return nil, err
	}
	if update.Balance.IsNegative() {
		err := apierror.NewAPIError(apierror.ErrInvalidAmount, "balance cannot be negative", nil)
		span.RecordError(err)
		return nil, err
	}

	var updated *model.Account
	err := v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			account, err := tx.GetAccountForUpdate(ctx, id)
			if err != nil {
				return err
			}
			account.AccountType = update.AccountType
			account.Balance = model.RoundBalance(update.Balance)
			if err := tx.UpdateAccount(ctx, account); err != nil {
				return err
			}
			updated = account
			return nil
		})
	}, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes an account together with every ledger entry that
// references it, in one atomic unit under the account lock.
func (v *Vault) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := accountTracer.Start(ctx, "DeleteAccount", trace.WithAttributes(attribute.String("account.id", id)))
	defer span.End()

	err := v.withAccountLocks(ctx, func() error {
		return v.datasource.ExecuteInTx(ctx, func(tx database.Tx) error {
			if _, err := tx.GetAccountForUpdate(ctx, id); err != nil {
				return err
			}
			if err := tx.DeleteTransactionsByAccount(ctx, id); err != nil {
				return err
			}
			return tx.DeleteAccount(ctx, id)
		})
	}, id)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.AddEvent("Account deleted")
	return nil
}

// GetAccountSelf fetches an account through the service's own HTTP API at
// account_client.base_url. A 404 from the remote side is reported as NOT_FOUND.
func (v *Vault) GetAccountSelf(ctx context.Context, id string) (*model.Account, error) {
	ctx, span := accountTracer.Start(ctx, "GetAccountSelf", trace.WithAttributes(attribute.String("account.id", id)))
	defer span.End()

	baseURL := v.config.AccountClient.BaseURL
	if baseURL == "" {
		err := apierror.NewAPIError(apierror.ErrInternalServer, "account client base url is not configured", nil)
		span.RecordError(err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/"+url.PathEscape(id), nil)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to build account request", err)
	}
	if v.config.Server.SecretKey != "" {
		req.Header.Set(SecretKeyHeader, v.config.Server.SecretKey)
	}

	var account model.Account
	_, err = request.Call(v.accountClient, req, &account)
	if err != nil {
		span.RecordError(err)
		var statusErr *request.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("account with ID '%s' not found (self-call)", id), nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "account self lookup failed", err)
	}
	return &account, nil
}

// SecretKeyHeader carries the server secret key on authenticated requests. The
// server checks it in secure mode and the account self-call sends it.
const SecretKeyHeader = "X-Vault-Key"
