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

	"github.com/blnkfinance/vault"
	model2 "github.com/blnkfinance/vault/api/model"
)

func (a Api) CreateAccount(c *gin.Context) {
	var newAccount model2.CreateAccount
	if err := c.ShouldBindJSON(&newAccount); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := newAccount.ValidateCreateAccount(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	account, err := newAccount.ToAccount()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := a.vault.CreateAccount(c.Request.Context(), account)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetAccount(c *gin.Context) {
	account, err := a.vault.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a Api) GetAccountByNumber(c *gin.Context) {
	account, err := a.vault.GetAccountByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// GetAccountSelf fetches the account through the configured account service
// instead of the local datasource.
func (a Api) GetAccountSelf(c *gin.Context) {
	account, err := a.vault.GetAccountSelf(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a Api) GetAllAccounts(c *gin.Context) {
	limit, offset := pagination(c)
	accounts, err := a.vault.GetAllAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (a Api) GetAccountsByCustomer(c *gin.Context) {
	accounts, err := a.vault.GetAccountsByCustomer(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (a Api) UpdateAccount(c *gin.Context) {
	var update model2.UpdateAccount
	if err := c.ShouldBindJSON(&update); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := update.ValidateUpdateAccount(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	accountType, err := update.ToAccountType()
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := a.vault.UpdateAccount(c.Request.Context(), c.Param("id"), vault.AccountUpdate{
		AccountType: accountType,
		Balance:     *update.Balance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (a Api) DeleteAccount(c *gin.Context) {
	if err := a.vault.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
