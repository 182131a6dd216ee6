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

package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/vault"
	"github.com/blnkfinance/vault/config"
)

const webhookConcurrency = 3

func initializeWorkerServer(conf *config.Configuration) (*asynq.Server, error) {
	redisOpt, err := vault.RedisConnOpt(conf)
	if err != nil {
		return nil, err
	}

	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: webhookConcurrency,
		Queues:      map[string]int{conf.Queue.WebhookQueue: 1},
		Logger:      logrus.StandardLogger(),
	}), nil
}

// workerCommands starts the worker that delivers queued transaction webhooks.
func workerCommands(_ *vaultInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start vault webhook workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}
			if conf.Redis.Dns == "" {
				log.Fatal("workers need redis: set VAULT_REDIS_DNS")
			}

			shutdown, err := initializeObservability(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			srv, err := initializeWorkerServer(conf)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			mux.HandleFunc(conf.Queue.WebhookQueue, vault.ProcessWebhook)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
