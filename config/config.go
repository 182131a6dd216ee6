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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	DEFAULT_LOCK_TTL_SECONDS      = 30
	DEFAULT_LOCK_WAIT_TIMEOUT_MS  = 5000
	DEFAULT_WEBHOOK_QUEUE         = "vault_webhook_queue"
	DEFAULT_IDEMPOTENCY_TTL_HOURS = 24
	DEFAULT_CLIENT_TIMEOUT_SEC    = 10

	// MemoryDataSource selects the in-process datasource instead of Postgres.
	MemoryDataSource = "memory://"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"VAULT_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"VAULT_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"VAULT_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"VAULT_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"VAULT_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"VAULT_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns             string        `json:"dns" envconfig:"VAULT_DATA_SOURCE_DNS"`
	MaxOpenConns    int           `json:"max_open_conns" envconfig:"VAULT_DATA_SOURCE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `json:"max_idle_conns" envconfig:"VAULT_DATA_SOURCE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" envconfig:"VAULT_DATA_SOURCE_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" envconfig:"VAULT_DATA_SOURCE_CONN_MAX_IDLE_TIME"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"VAULT_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"VAULT_REDIS_SKIP_TLS_VERIFY"`
}

type LockConfig struct {
	TTLSeconds    int `json:"ttl_seconds" envconfig:"VAULT_LOCK_TTL_SECONDS"`
	WaitTimeoutMs int `json:"wait_timeout_ms" envconfig:"VAULT_LOCK_WAIT_TIMEOUT_MS"`
}

type QueueConfig struct {
	WebhookQueue string `json:"webhook_queue" envconfig:"VAULT_QUEUE_WEBHOOK_QUEUE"`
}

type IdempotencyConfig struct {
	Enabled  bool `json:"enabled" envconfig:"VAULT_IDEMPOTENCY_ENABLED"`
	TTLHours int  `json:"ttl_hours" envconfig:"VAULT_IDEMPOTENCY_TTL_HOURS"`
}

// AccountClientConfig points at the service queried by the account self lookup.
type AccountClientConfig struct {
	BaseURL    string `json:"base_url" envconfig:"VAULT_ACCOUNT_CLIENT_BASE_URL"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"VAULT_ACCOUNT_CLIENT_TIMEOUT_SEC"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"VAULT_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"VAULT_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"VAULT_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type OtelExporter struct {
	Protocol string `json:"otel_exporter_otlp_protocol" envconfig:"VAULT_OTEL_EXPORTER_OTLP_PROTOCOL"`
	Endpoint string `json:"otel_exporter_otlp_endpoint" envconfig:"VAULT_OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers  string `json:"otel_exporter_otlp_headers" envconfig:"VAULT_OTEL_EXPORTER_OTLP_HEADERS"`
}

type Configuration struct {
	ProjectName        string              `json:"project_name" envconfig:"VAULT_PROJECT_NAME"`
	BackupDir          string              `json:"backup_dir" envconfig:"VAULT_BACKUP_DIR"`
	AwsAccessKeyId     string              `json:"aws_access_key_id"`
	S3Endpoint         string              `json:"s3_endpoint"`
	AwsSecretAccessKey string              `json:"aws_secret_access_key"`
	S3BucketName       string              `json:"s3_bucket_name"`
	S3Region           string              `json:"s3_region"`
	Server             ServerConfig        `json:"server"`
	DataSource         DataSourceConfig    `json:"data_source"`
	Redis              RedisConfig         `json:"redis"`
	Lock               LockConfig          `json:"lock"`
	Queue              QueueConfig         `json:"queue"`
	Idempotency        IdempotencyConfig   `json:"idempotency"`
	AccountClient      AccountClientConfig `json:"account_client"`
	Notification       Notification        `json:"notification"`
	RateLimit          RateLimitConfig     `json:"rate_limit"`
	EnableTelemetry    bool                `json:"enable_telemetry" envconfig:"VAULT_ENABLE_TELEMETRY"`
	OtelExporter       OtelExporter        `json:"otel_exporter"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("vault", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called vault.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Vault Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Redis.Dns == "" {
		log.Println("Warning: Redis DNS is empty. Account locks are local to this process and webhooks are disabled.")
	}

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.DataSource.MaxOpenConns <= 0 {
		cnf.DataSource.MaxOpenConns = 25
	}
	if cnf.DataSource.MaxIdleConns <= 0 {
		cnf.DataSource.MaxIdleConns = 10
	}
	if cnf.DataSource.ConnMaxLifetime <= 0 {
		cnf.DataSource.ConnMaxLifetime = 30 * time.Minute
	}
	if cnf.DataSource.ConnMaxIdleTime <= 0 {
		cnf.DataSource.ConnMaxIdleTime = 5 * time.Minute
	}

	if cnf.Lock.TTLSeconds <= 0 {
		cnf.Lock.TTLSeconds = DEFAULT_LOCK_TTL_SECONDS
	}
	if cnf.Lock.WaitTimeoutMs <= 0 {
		cnf.Lock.WaitTimeoutMs = DEFAULT_LOCK_WAIT_TIMEOUT_MS
	}

	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = DEFAULT_WEBHOOK_QUEUE
	}

	if cnf.Idempotency.TTLHours <= 0 {
		cnf.Idempotency.TTLHours = DEFAULT_IDEMPOTENCY_TTL_HOURS
	}

	if cnf.AccountClient.TimeoutSec <= 0 {
		cnf.AccountClient.TimeoutSec = DEFAULT_CLIENT_TIMEOUT_SEC
	}
	cnf.AccountClient.BaseURL = strings.TrimRight(strings.TrimSpace(cnf.AccountClient.BaseURL), "/")

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// LockTTL is how long a distributed account lock lives before it expires on its own.
func (cnf *Configuration) LockTTL() time.Duration {
	return time.Duration(cnf.Lock.TTLSeconds) * time.Second
}

// LockWait bounds how long an operation waits for an account lock.
func (cnf *Configuration) LockWait() time.Duration {
	return time.Duration(cnf.Lock.WaitTimeoutMs) * time.Millisecond
}

func (cnf *Configuration) IdempotencyTTL() time.Duration {
	return time.Duration(cnf.Idempotency.TTLHours) * time.Hour
}

// SetOtelExporterEnvs exports the configured OTLP settings as the standard
// OTEL_EXPORTER_OTLP_* variables read by the trace exporter.
func SetOtelExporterEnvs() error {
	cnf, err := Fetch()
	if err != nil {
		return err
	}
	envs := map[string]string{
		"OTEL_EXPORTER_OTLP_PROTOCOL": cnf.OtelExporter.Protocol,
		"OTEL_EXPORTER_OTLP_ENDPOINT": cnf.OtelExporter.Endpoint,
		"OTEL_EXPORTER_OTLP_HEADERS":  cnf.OtelExporter.Headers,
	}
	for key, value := range envs {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
