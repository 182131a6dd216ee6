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

func (a Api) CreateCustomer(c *gin.Context) {
	var newCustomer model2.CreateCustomer
	if err := c.ShouldBindJSON(&newCustomer); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := newCustomer.ValidateCreateCustomer(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	resp, err := a.vault.CreateCustomer(c.Request.Context(), newCustomer.ToCustomer())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetCustomer(c *gin.Context) {
	customer, err := a.vault.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (a Api) GetCustomerByDocument(c *gin.Context) {
	customer, err := a.vault.GetCustomerByDocument(c.Request.Context(), c.Param("document"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (a Api) GetAllCustomers(c *gin.Context) {
	limit, offset := pagination(c)
	customers, err := a.vault.GetAllCustomers(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (a Api) UpdateCustomer(c *gin.Context) {
	var update model2.UpdateCustomer
	if err := c.ShouldBindJSON(&update); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := update.ValidateUpdateCustomer(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	customer, err := a.vault.UpdateCustomer(c.Request.Context(), c.Param("id"), vault.CustomerUpdate{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Email:     update.Email,
		Phone:     update.Phone,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes the customer with its accounts, their transactions and its cards.
func (a Api) DeleteCustomer(c *gin.Context) {
	if err := a.vault.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
