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
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/vault/internal/apierror"
)

// respondWithError writes err with the status of its code. A lock timeout
// also tells the client when to retry.
func respondWithError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if apierror.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}

	var apiErr apierror.APIError
	if errors.As(err, &apiErr) {
		c.JSON(status, gin.H{"error": apiErr.Message, "code": apiErr.Code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondWithValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error(), "code": apierror.ErrInvalidInput})
}

func respondWithBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apierror.ErrBadRequest})
}

// pagination reads limit and offset from the query string. Out of range
// values are normalized by the datasource.
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
