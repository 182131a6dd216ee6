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

package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/blnkfinance/vault/internal/cache"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	DefaultIdempotencyTTL = 24 * time.Hour

	// reservationTTL bounds how long a crashed request keeps its key reserved.
	reservationTTL = 10 * time.Second

	responseKeyPrefix    = "idempotency:"
	reservationKeyPrefix = "lock:"
)

// storedResponse is what gets replayed for a repeated key.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request that already succeeded
// under the same Idempotency-Key. Requests without the header pass through.
// While a key is in flight, a second request with it gets 409.
// Only 2xx responses are stored, so a failed movement can be retried with the same key.
func Idempotency(store cache.Cache, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		responseKey := responseKeyPrefix + key
		reservationKey := reservationKeyPrefix + key

		var stored storedResponse
		err := store.Get(ctx, responseKey, &stored)
		if err == nil {
			c.Header(IdempotencyHitHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logrus.WithError(err).Warn("idempotency lookup failed")
		}

		reserved, err := store.Reserve(ctx, reservationKey, reservationTTL)
		if err != nil {
			logrus.WithError(err).Error("idempotency reservation failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "A request with this idempotency key is currently being processed",
				"code":  apierror.ErrConflict,
			})
			return
		}
		defer func() {
			if err := store.Delete(ctx, reservationKey); err != nil {
				logrus.WithError(err).Warn("failed to release idempotency key")
			}
		}()

		recorder := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status < 200 || status >= 300 {
			return
		}
		err = store.Set(ctx, responseKey, storedResponse{
			Status:      status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}, ttl)
		if err != nil {
			logrus.WithError(err).Warn("failed to store idempotent response")
		}
	}
}
