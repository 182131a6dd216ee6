package redlock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	"github.com/sirupsen/logrus"
)

const accountKeyPrefix = "vault:account:"

// AccountKey is the lock key guarding a single account.
func AccountKey(accountID string) string {
	return accountKeyPrefix + accountID
}

// AcquireOrdered locks every key in ascending order and returns a function
// that releases them in reverse order. Duplicate keys are locked once.
// When any key cannot be acquired the keys already held are released and a
// LOCK_TIMEOUT error is returned.
func AcquireOrdered(ctx context.Context, provider Provider, lockTimeout, waitTimeout time.Duration, keys ...string) (func(), error) {
	ordered := uniqueSorted(keys)
	held := make([]Mutex, 0, len(ordered))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(context.Background()); err != nil {
				logrus.Errorf("failed to release lock: %v", err)
			}
		}
	}

	for _, key := range ordered {
		m := provider.NewMutex(key)
		if err := m.WaitLock(ctx, lockTimeout, waitTimeout); err != nil {
			release()
			return nil, apierror.NewAPIError(apierror.ErrLockTimeout, fmt.Sprintf("timed out waiting for lock %s", key), err.Error())
		}
		held = append(held, m)
	}

	return release, nil
}

func uniqueSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
