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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/internal/notification"
	"github.com/blnkfinance/vault/internal/request"
	"github.com/blnkfinance/vault/model"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const webhookTimeout = 10 * time.Second

// NewWebhook represents the structure of a webhook notification.
// It includes an event type and associated payload data.
type NewWebhook struct {
	Event   string      `json:"event"` // The event type that triggered the webhook.
	Payload interface{} `json:"data"`  // The data associated with the event.
}

// eventForTransaction maps a ledger entry to its webhook event, e.g. transaction.deposit.
func eventForTransaction(txn *model.Transaction) string {
	return "transaction." + strings.ToLower(string(txn.Type))
}

// sendTransactionWebhook queues the webhook for a committed entry. Failures are
// reported and never change the outcome of the movement.
func (v *Vault) sendTransactionWebhook(ctx context.Context, txn *model.Transaction) {
	if v.queue == nil || v.config.Notification.Webhook.Url == "" {
		return
	}

	hook := NewWebhook{Event: eventForTransaction(txn), Payload: txn}
	if err := v.queue.EnqueueWebhook(ctx, hook); err != nil {
		notification.NotifyError(fmt.Errorf("failed to enqueue webhook %s for %s: %w", hook.Event, txn.TransactionID, err))
	}
}

// processHTTP delivers a webhook notification with a POST request to the configured url.
func processHTTP(ctx context.Context, conf *config.Configuration, data NewWebhook) error {
	payload, err := request.ToJsonReq(data)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, conf.Notification.Webhook.Url, payload)
	if err != nil {
		return err
	}
	for key, value := range conf.Notification.Webhook.Headers {
		req.Header.Set(key, value)
	}

	_, err = request.Call(request.NewClient(webhookTimeout), req, nil)
	return err
}

// ProcessWebhook processes a webhook notification task from the queue.
// A failed delivery returns the error so the task is retried.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - task *asynq.Task: The task containing the webhook notification data.
//
// Returns:
// - error: An error if the webhook processing fails.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var payload NewWebhook
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logrus.Errorf("Error unmarshaling task payload: %v", err)
		return fmt.Errorf("invalid webhook payload: %v: %w", err, asynq.SkipRetry)
	}

	logrus.WithField("event", payload.Event).Info("processing webhook")
	if err := processHTTP(ctx, conf, payload); err != nil {
		logrus.WithError(err).WithField("event", payload.Event).Warn("webhook delivery failed")
		return err
	}
	return nil
}
