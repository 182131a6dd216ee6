package database

import (
	"context"
	"time"

	"github.com/blnkfinance/vault/internal/apierror"
	redlock "github.com/blnkfinance/vault/internal/lock"
	"github.com/blnkfinance/vault/model"
	"github.com/sirupsen/logrus"
)

// ExecuteInTx runs fn against a staged view of the store. Staged writes are
// applied under the store lock only when fn succeeds.
func (m *MemoryDataSource) ExecuteInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memTx{
		store:    m,
		accounts: make(map[string]*model.Account),
		deleted:  make(map[string]bool),
		locks:    make(map[string]redlock.Mutex),
	}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range tx.ops {
		op(m)
	}
	return nil
}

type memTx struct {
	store    *MemoryDataSource
	accounts map[string]*model.Account // staged account state
	deleted  map[string]bool           // accounts deleted in this unit
	ops      []func(m *MemoryDataSource)
	locks    map[string]redlock.Mutex
}

func (t *memTx) lockRow(ctx context.Context, key string) error {
	if _, held := t.locks[key]; held {
		return nil
	}
	mutex := t.store.rowLocks.NewMutex(key)
	if err := mutex.WaitLock(ctx, 0, memoryRowLockWait); err != nil {
		return apierror.NewAPIError(apierror.ErrLockTimeout, "timed out waiting for row lock", err.Error())
	}
	t.locks[key] = mutex
	return nil
}

func (t *memTx) releaseLocks() {
	for key, mutex := range t.locks {
		if err := mutex.Unlock(context.Background()); err != nil {
			logrus.Errorf("failed to release row lock %s: %v", key, err)
		}
	}
}

func (t *memTx) GetAccountForUpdate(ctx context.Context, id string) (*model.Account, error) {
	if err := t.lockRow(ctx, "account:"+id); err != nil {
		return nil, err
	}
	if t.deleted[id] {
		return nil, notFound("account", id)
	}
	if staged, ok := t.accounts[id]; ok {
		account := *staged
		return &account, nil
	}

	t.store.mu.RLock()
	account, ok := t.store.accounts[id]
	t.store.mu.RUnlock()
	if !ok {
		return nil, notFound("account", id)
	}
	t.accounts[id] = &account
	copied := account
	return &copied, nil
}

func (t *memTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	current, err := t.GetAccountForUpdate(ctx, account.AccountID)
	if err != nil {
		return err
	}
	current.AccountType = account.AccountType
	current.Balance = account.Balance
	t.accounts[account.AccountID] = current

	updated := *current
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		m.accounts[updated.AccountID] = updated
	})
	return nil
}

func (t *memTx) RecordTransaction(_ context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	txn.TransactionID = model.GenerateUUIDWithSuffix("txn")
	if txn.Date.IsZero() {
		txn.Date = time.Now().UTC()
	}
	entry := *txn
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		m.transactions[entry.TransactionID] = entry
	})
	return txn, nil
}

func (t *memTx) DeleteTransaction(_ context.Context, id string) error {
	t.store.mu.RLock()
	_, ok := t.store.transactions[id]
	t.store.mu.RUnlock()
	if !ok {
		return notFound("transaction", id)
	}
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		delete(m.transactions, id)
	})
	return nil
}

func (t *memTx) DeleteTransactionsByAccount(_ context.Context, accountID string) error {
	match := touches(accountID)
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		for id, txn := range m.transactions {
			if match(txn) {
				delete(m.transactions, id)
			}
		}
	})
	return nil
}

func (t *memTx) DeleteAccount(ctx context.Context, id string) error {
	account, err := t.GetAccountForUpdate(ctx, id)
	if err != nil {
		return err
	}
	t.deleted[id] = true
	delete(t.accounts, id)

	number := account.AccountNumber
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		delete(m.accounts, id)
		delete(m.accountNumbers, number)
	})
	return nil
}

func (t *memTx) GetAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	t.store.mu.RLock()
	owned := t.store.accountsByCustomer(customerID)
	t.store.mu.RUnlock()

	accounts := make([]model.Account, 0, len(owned))
	for _, a := range owned {
		locked, err := t.GetAccountForUpdate(ctx, a.AccountID)
		if err != nil {
			if apierror.HasCode(err, apierror.ErrNotFound) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, *locked)
	}
	return accounts, nil
}

func (t *memTx) DeleteCardsByCustomer(_ context.Context, customerID string) error {
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		for id, c := range m.cards {
			if c.CustomerID == customerID {
				delete(m.cards, id)
				delete(m.cardNumbers, c.CardNumber)
			}
		}
	})
	return nil
}

func (t *memTx) DeleteCustomer(_ context.Context, id string) error {
	t.store.mu.RLock()
	c, ok := t.store.customers[id]
	t.store.mu.RUnlock()
	if !ok {
		return notFound("customer", id)
	}
	document := c.Document
	t.ops = append(t.ops, func(m *MemoryDataSource) {
		delete(m.customers, id)
		delete(m.customerDocs, document)
	})
	return nil
}
