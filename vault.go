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
	"embed"
	"net/http"
	"time"

	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/database"
	redlock "github.com/blnkfinance/vault/internal/lock"
	redis_db "github.com/blnkfinance/vault/internal/redis-db"
	"github.com/blnkfinance/vault/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Vault is the entry point for account, customer, card and movement operations.
type Vault struct {
	datasource    database.IDataSource
	locks         redlock.Provider
	lockTTL       time.Duration
	lockWait      time.Duration
	queue         *Queue
	redis         redis.UniversalClient
	accountClient *http.Client
	config        *config.Configuration
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewVault initializes a Vault on top of the given datasource.
// When Redis is configured account locks are distributed through it and
// webhooks are queued on it. Without Redis, locks are held in process.
//
// Parameters:
// - db database.IDataSource: The datasource for database operations.
//
// Returns:
// - *Vault: A pointer to the newly created Vault instance.
// - error: An error if the configuration is missing or Redis cannot be reached.
func NewVault(db database.IDataSource) (*Vault, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	v := &Vault{
		datasource:    db,
		lockTTL:       configuration.LockTTL(),
		lockWait:      configuration.LockWait(),
		accountClient: request.NewClient(time.Duration(configuration.AccountClient.TimeoutSec) * time.Second),
		config:        configuration,
	}
	if v.lockTTL <= 0 {
		v.lockTTL = config.DEFAULT_LOCK_TTL_SECONDS * time.Second
	}
	if v.lockWait <= 0 {
		v.lockWait = config.DEFAULT_LOCK_WAIT_TIMEOUT_MS * time.Millisecond
	}

	if configuration.Redis.Dns == "" {
		v.locks = redlock.NewLocalProvider()
		return v, nil
	}

	redisClient, err := redis_db.NewRedisClient(redis_db.SplitAddresses(configuration.Redis.Dns), configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	queue, err := NewQueue(configuration)
	if err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	v.redis = redisClient.Client()
	v.locks = redlock.NewRedisProvider(v.redis)
	v.queue = queue
	return v, nil
}

// Redis returns the shared redis client, or nil when Redis is not configured.
func (v *Vault) Redis() redis.UniversalClient {
	return v.redis
}

// Close releases the redis client and the queue connection.
func (v *Vault) Close() error {
	if v.queue != nil {
		if err := v.queue.Close(); err != nil {
			logrus.Error(err)
		}
	}
	if v.redis != nil {
		return v.redis.Close()
	}
	return nil
}

// withAccountLocks runs fn while holding the locks of every given account.
// Locks are taken in ascending id order and released in reverse order.
func (v *Vault) withAccountLocks(ctx context.Context, fn func() error, accountIDs ...string) error {
	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, redlock.AccountKey(id))
	}

	release, err := redlock.AcquireOrdered(ctx, v.locks, v.lockTTL, v.lockWait, keys...)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}
