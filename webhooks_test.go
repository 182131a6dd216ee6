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
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/database"
	"github.com/blnkfinance/vault/model"
	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"
)

const testWebhookURL = "https://hooks.vault.test/events"

func webhookConfig(redisAddr string) *config.Configuration {
	cnf := memoryConfig()
	cnf.Redis.Dns = redisAddr
	cnf.Notification.Webhook.Url = testWebhookURL
	cnf.Notification.Webhook.Headers = map[string]string{"X-Signature": "abc"}
	return cnf
}

func TestEventForTransaction(t *testing.T) {
	assert.Equal(t, "transaction.deposit", eventForTransaction(&model.Transaction{Type: model.TransactionTypeDeposit}))
	assert.Equal(t, "transaction.withdrawal", eventForTransaction(&model.Transaction{Type: model.TransactionTypeWithdrawal}))
	assert.Equal(t, "transaction.transfer", eventForTransaction(&model.Transaction{Type: model.TransactionTypeTransfer}))
}

func TestSendTransactionWebhook_EnqueuedAfterCommit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config.MockConfig(webhookConfig(mr.Addr()))
	v, err := NewVault(database.NewMemoryDataSource())
	require.NoError(t, err)
	defer func() { _ = v.Close() }()

	account := createTestAccount(t, v, "0")
	_, err = v.Deposit(context.Background(), account.AccountID, decimal.RequireFromString("10"))
	require.NoError(t, err)

	tasks, err := v.queue.Inspector.ListPendingTasks(v.queue.WebhookQueue())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	var hook NewWebhook
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &hook))
	assert.Equal(t, "transaction.deposit", hook.Event)
}

func TestSendTransactionWebhook_NothingForFailedMovement(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config.MockConfig(webhookConfig(mr.Addr()))
	v, err := NewVault(database.NewMemoryDataSource())
	require.NoError(t, err)
	defer func() { _ = v.Close() }()

	account := createTestAccount(t, v, "0")
	_, err = v.Withdraw(context.Background(), account.AccountID, decimal.RequireFromString("10"))
	require.Error(t, err)

	for _, key := range mr.Keys() {
		assert.False(t, strings.Contains(key, v.queue.WebhookQueue()+"}:pending"), "unexpected key %s", key)
	}
}

func TestSendTransactionWebhook_NoQueue(t *testing.T) {
	v, _ := newTestVault(t)
	// Without redis the webhook is skipped and the movement still succeeds.
	v.sendTransactionWebhook(context.Background(), &model.Transaction{Type: model.TransactionTypeDeposit, DestinationAccountID: ptr.String("acc_1")})
}

func newWebhookTask(t *testing.T, hook NewWebhook) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(hook)
	require.NoError(t, err)
	return asynq.NewTask(config.DEFAULT_WEBHOOK_QUEUE, payload)
}

func TestProcessWebhook_Delivers(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(webhookConfig(""))
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, func(req *http.Request) (*http.Response, error) {
		var body map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
		}
		if req.Header.Get("X-Signature") != "abc" || body["event"] != "transaction.deposit" || body["data"] == nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
		}
		return httpmock.NewStringResponse(http.StatusOK, ""), nil
	})

	err := ProcessWebhook(context.Background(), newWebhookTask(t, NewWebhook{
		Event:   "transaction.deposit",
		Payload: model.Transaction{TransactionID: "txn_1", Type: model.TransactionTypeDeposit},
	}))
	assert.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestProcessWebhook_FailedDeliveryIsRetried(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	config.MockConfig(webhookConfig(""))
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, httpmock.NewStringResponder(http.StatusServiceUnavailable, "down"))

	err := ProcessWebhook(context.Background(), newWebhookTask(t, NewWebhook{Event: "transaction.deposit"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestProcessWebhook_InvalidPayloadSkipsRetry(t *testing.T) {
	config.MockConfig(webhookConfig(""))

	err := ProcessWebhook(context.Background(), asynq.NewTask(config.DEFAULT_WEBHOOK_QUEUE, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestProcessWebhook_NoURLConfigured(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	config.MockConfig(memoryConfig())

	err := ProcessWebhook(context.Background(), newWebhookTask(t, NewWebhook{Event: "transaction.deposit"}))
	assert.NoError(t, err)
	assert.Zero(t, httpmock.GetTotalCallCount())
}
