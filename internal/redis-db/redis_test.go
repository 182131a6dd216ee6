package redis_db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected *redis.Options
		wantErr  bool
	}{
		{
			name: "simple docker style",
			url:  "redis:6379",
			expected: &redis.Options{
				Addr: "redis:6379",
			},
		},
		{
			name: "redis url with password",
			url:  "redis://:password123@localhost:6379",
			expected: &redis.Options{
				Addr:     "localhost:6379",
				Password: "password123",
			},
		},
		{
			name: "password without username",
			url:  "redis://password123@localhost:6379",
			expected: &redis.Options{
				Addr:     "localhost:6379",
				Password: "password123",
			},
		},
		{
			name:    "unsupported scheme",
			url:     "http://localhost:6379/0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url, false)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Addr, got.Addr)
			assert.Equal(t, tt.expected.Password, got.Password)
		})
	}
}

func TestParseRedisURL_SkipTLSVerify(t *testing.T) {
	got, err := ParseRedisURL("rediss://cache.example.com:6380", true)
	require.NoError(t, err)
	require.NotNil(t, got.TLSConfig)
	assert.True(t, got.TLSConfig.InsecureSkipVerify)
}

func TestSplitAddresses(t *testing.T) {
	assert.Equal(t, []string{"a:6379", "b:6379"}, SplitAddresses(" a:6379, ,b:6379 "))
	assert.Empty(t, SplitAddresses(""))
}

func TestNewRedisClient_EmptyAddresses(t *testing.T) {
	_, err := NewRedisClient(nil, false)
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient([]string{"127.0.0.1:1"}, false)
	assert.Error(t, err)
}

func TestNewRedisClient_Miniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient([]string{mr.Addr()}, false)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	require.NoError(t, client.Client().Set(ctx, "test_key", "test_value", time.Minute).Err())

	got, err := client.Client().Get(ctx, "test_key").Result()
	assert.NoError(t, err)
	assert.Equal(t, "test_value", got)

	require.NoError(t, client.Client().Del(ctx, "test_key").Err())
	_, err = client.Client().Get(ctx, "test_key").Result()
	assert.Equal(t, redis.Nil, err)
}
