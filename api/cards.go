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

func (a Api) CreateCard(c *gin.Context) {
	var newCard model2.CreateCard
	if err := c.ShouldBindJSON(&newCard); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := newCard.ValidateCreateCard(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	card, err := newCard.ToCard()
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := a.vault.CreateCard(c.Request.Context(), card)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetCard(c *gin.Context) {
	card, err := a.vault.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (a Api) GetAllCards(c *gin.Context) {
	limit, offset := pagination(c)
	cards, err := a.vault.GetAllCards(c.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (a Api) GetCardsByCustomer(c *gin.Context) {
	cards, err := a.vault.GetCardsByCustomer(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (a Api) UpdateCard(c *gin.Context) {
	var update model2.UpdateCard
	if err := c.ShouldBindJSON(&update); err != nil {
		respondWithBindError(c, err)
		return
	}

	if err := update.ValidateUpdateCard(); err != nil {
		respondWithValidationError(c, err)
		return
	}

	cardType, expiry, limit, err := update.ToCardUpdate()
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := a.vault.UpdateCard(c.Request.Context(), c.Param("id"), vault.CardUpdate{
		CardType:       cardType,
		ExpirationDate: expiry,
		CreditLimit:    limit,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (a Api) DeleteCard(c *gin.Context) {
	if err := a.vault.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
