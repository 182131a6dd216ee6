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

	"github.com/blnkfinance/vault/config"
	redis_db "github.com/blnkfinance/vault/internal/redis-db"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const webhookMaxRetry = 5

// Queue represents a queue for handling background tasks.
type Queue struct {
	Client       *asynq.Client
	Inspector    *asynq.Inspector
	webhookQueue string
}

// RedisConnOpt builds the asynq connection options for the configured redis.
// Several comma separated addresses select a cluster connection.
func RedisConnOpt(conf *config.Configuration) (asynq.RedisConnOpt, error) {
	addresses := redis_db.SplitAddresses(conf.Redis.Dns)
	if len(addresses) == 0 {
		return nil, errors.New("redis is not configured")
	}

	if len(addresses) == 1 {
		opts, err := redis_db.ParseRedisURL(addresses[0], conf.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
		return asynq.RedisClientOpt{Addr: opts.Addr, Password: opts.Password, DB: opts.DB, TLSConfig: opts.TLSConfig}, nil
	}

	cluster := asynq.RedisClusterClientOpt{}
	for _, addr := range addresses {
		opts, err := redis_db.ParseRedisURL(addr, conf.Redis.SkipTLSVerify)
		if err != nil {
			return nil, err
		}
		cluster.Addrs = append(cluster.Addrs, opts.Addr)
		if cluster.Password == "" {
			cluster.Password = opts.Password
		}
		if cluster.TLSConfig == nil {
			cluster.TLSConfig = opts.TLSConfig
		}
	}
	return cluster, nil
}

// NewQueue initializes a new Queue instance with the provided configuration.
//
// Parameters:
// - conf *config.Configuration: The configuration for the queue.
//
// Returns:
// - *Queue: A pointer to the newly created Queue instance.
// - error: An error if the redis address cannot be parsed.
func NewQueue(conf *config.Configuration) (*Queue, error) {
	queueOptions, err := RedisConnOpt(conf)
	if err != nil {
		return nil, err
	}

	webhookQueue := conf.Queue.WebhookQueue
	if webhookQueue == "" {
		webhookQueue = config.DEFAULT_WEBHOOK_QUEUE
	}

	return &Queue{
		Client:       asynq.NewClient(queueOptions),
		Inspector:    asynq.NewInspector(queueOptions),
		webhookQueue: webhookQueue,
	}, nil
}

// EnqueueWebhook enqueues a webhook notification task.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - hook NewWebhook: The webhook notification data to enqueue.
//
// Returns:
// - error: An error if the task could not be enqueued.
func (q *Queue) EnqueueWebhook(ctx context.Context, hook NewWebhook) error {
	ctx, span := tracer.Start(ctx, "Adding Webhook To Redis Queue")
	defer span.End()

	payload, err := json.Marshal(hook)
	if err != nil {
		return err
	}

	task := asynq.NewTask(q.webhookQueue, payload, asynq.Queue(q.webhookQueue), asynq.MaxRetry(webhookMaxRetry))
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		span.RecordError(err)
		return err
	}
	logrus.WithFields(logrus.Fields{"event": hook.Event, "task_id": info.ID}).Debug("enqueued webhook")
	return nil
}

// WebhookQueue is the queue name webhook tasks are published to.
func (q *Queue) WebhookQueue() string {
	return q.webhookQueue
}

func (q *Queue) Close() error {
	return errors.Join(q.Client.Close(), q.Inspector.Close())
}
