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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/blnkfinance/vault/api/model"
	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/model"
)

// CreateMovement records a deposit, withdrawal or transfer described by the body.
//
// Responses:
// - 201 Created: The committed transaction.
// - 400 Bad Request: Malformed body, missing or non-positive amount, unsupported type or missing account.
// - 404 Not Found: A referenced account does not exist.
// - 409 Conflict: An account lock could not be acquired in time.
// - 422 Unprocessable Entity: The movement would break a balance rule.
func (a Api) CreateMovement(c *gin.Context) {
	var newMovement model2.CreateMovement
	if err := c.ShouldBindJSON(&newMovement); err != nil {
		respondWithBindError(c, err)
		return
	}

	txn, err := a.vault.CreateMovement(c.Request.Context(), newMovement.ToMovement())
	if err != nil {
		logrus.WithError(err).WithField("type", newMovement.Type).Debug("movement rejected")
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// Transfer is CreateMovement with the type fixed to TRANSFER.
func (a Api) Transfer(c *gin.Context) {
	var transfer model2.CreateTransfer
	if err := c.ShouldBindJSON(&transfer); err != nil {
		respondWithBindError(c, err)
		return
	}

	txn, err := a.vault.CreateMovement(c.Request.Context(), transfer.ToMovement())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (a Api) GetTransaction(c *gin.Context) {
	txn, err := a.vault.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (a Api) GetAllTransactions(c *gin.Context) {
	limit, offset := pagination(c)
	txns, err := a.vault.GetAllTransactions(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// DeleteTransaction removes the ledger entry only. Account balances are left as they are.
func (a Api) DeleteTransaction(c *gin.Context) {
	if err := a.vault.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAccountHistory lists the account's transactions newest first. With a
// type query parameter the full history of that type is returned unpaginated.
func (a Api) GetAccountHistory(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if rawType, ok := c.GetQuery("type"); ok {
		txnType, err := model.ParseTransactionType(rawType)
		if err != nil {
			respondWithError(c, err)
			return
		}
		txns, err := a.vault.GetAccountHistoryByType(ctx, id, txnType)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, txns)
		return
	}

	limit, offset := pagination(c)
	txns, err := a.vault.GetAccountHistory(ctx, id, limit, offset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a Api) GetRecentTransactions(c *gin.Context) {
	txns, err := a.vault.GetRecentTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// GetStatement returns the account's transactions dated within [from, to].
func (a Api) GetStatement(c *gin.Context) {
	from, err := model2.ParseDate(c.Query("from"))
	if err != nil {
		respondWithError(c, apierror.NewAPIError(apierror.ErrInvalidInput, "from must be a date", nil))
		return
	}
	to, err := model2.ParseDate(c.Query("to"))
	if err != nil {
		respondWithError(c, apierror.NewAPIError(apierror.ErrInvalidInput, "to must be a date", nil))
		return
	}

	txns, err := a.vault.GetStatement(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (a Api) GetTransactionTotal(c *gin.Context) {
	txnType, err := model.ParseTransactionType(c.Query("type"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := a.vault.GetTransactionTotal(c.Request.Context(), c.Param("id"), txnType)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}
