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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/blnkfinance/vault"
	"github.com/blnkfinance/vault/api/middleware"
	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/internal/cache"
)

type Api struct {
	vault       *vault.Vault
	router      *gin.Engine
	idempotency gin.HandlerFunc
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/customers", a.CreateCustomer)
	router.GET("/customers", a.GetAllCustomers)
	router.GET("/customers/:id", a.GetCustomer)
	router.GET("/customers/document/:document", a.GetCustomerByDocument)
	router.PUT("/customers/:id", a.UpdateCustomer)
	router.DELETE("/customers/:id", a.DeleteCustomer)

	router.POST("/cards", a.CreateCard)
	router.GET("/cards", a.GetAllCards)
	router.GET("/cards/:id", a.GetCard)
	router.GET("/cards/customer/:customer_id", a.GetCardsByCustomer)
	router.PUT("/cards/:id", a.UpdateCard)
	router.DELETE("/cards/:id", a.DeleteCard)

	router.POST("/accounts", a.CreateAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.GET("/accounts/:id", a.GetAccount)
	router.GET("/accounts/number/:number", a.GetAccountByNumber)
	router.GET("/accounts/customer/:customer_id", a.GetAccountsByCustomer)
	router.GET("/accounts/self/:id", a.GetAccountSelf)
	router.PUT("/accounts/:id", a.UpdateAccount)
	router.DELETE("/accounts/:id", a.DeleteAccount)
	router.GET("/accounts/:id/transactions", a.GetAccountHistory)
	router.GET("/accounts/:id/transactions/recent", a.GetRecentTransactions)
	router.GET("/accounts/:id/statement", a.GetStatement)
	router.GET("/accounts/:id/totals", a.GetTransactionTotal)

	router.POST("/transactions", a.idempotency, a.CreateMovement)
	router.POST("/transactions/transfer", a.idempotency, a.Transfer)
	router.GET("/transactions", a.GetAllTransactions)
	router.GET("/transactions/:id", a.GetTransaction)
	router.DELETE("/transactions/:id", a.DeleteTransaction)

	return a.router
}

// NewAPI builds the HTTP surface of v. Movement routes replay responses for a
// repeated Idempotency-Key when idempotency is enabled and Redis is configured.
func NewAPI(v *vault.Vault) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}

	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	var idempotency gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if conf.Idempotency.Enabled && v.Redis() != nil {
		idempotency = middleware.Idempotency(cache.NewRedisCache(v.Redis()), conf.IdempotencyTTL())
	}

	return &Api{vault: v, router: r, idempotency: idempotency}
}
