package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
)

// LedgerStore keeps accounts in a mutex-guarded map with per-record versions.
// Transactions are optimistic: reads and buffered writes run against a
// snapshot, and commit revalidates every read version under the lock. A
// concurrent change between read and commit fails the transaction with
// commons.ErrConflict, exactly like a serialization failure in postgres.
type LedgerStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{accounts: make(map[string]domain.Account)}
}

func (s *LedgerStore) Get(_ context.Context, accountNumber string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(accountNumber)
}

func (s *LedgerStore) Exists(_ context.Context, accountNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[accountNumber]
	return ok, nil
}

func (s *LedgerStore) Insert(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(account)
}

func (s *LedgerStore) Update(_ context.Context, account domain.Account, expectedVersion int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(account, expectedVersion)
}

func (s *LedgerStore) List(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AccountNumber < out[j].AccountNumber
	})
	return out, nil
}

func (s *LedgerStore) WithTransaction(ctx context.Context, _ sql.IsolationLevel, fn func(tx repo_interfaces.LedgerTx) error) error {
	tx := &ledgerTx{
		store:   s,
		reads:   make(map[string]int64),
		writes:  make(map[string]domain.Account),
		inserts: make(map[string]domain.Account),
	}

	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *LedgerStore) commit(tx *ledgerTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for accountNumber, version := range tx.reads {
		current, ok := s.accounts[accountNumber]
		if !ok || current.Version != version {
			return commons.ErrConflict
		}
	}
	for accountNumber := range tx.inserts {
		if _, ok := s.accounts[accountNumber]; ok {
			return commons.ErrConflict
		}
	}

	for accountNumber, account := range tx.inserts {
		s.accounts[accountNumber] = account
	}
	for accountNumber, account := range tx.writes {
		s.accounts[accountNumber] = account
	}
	return nil
}

func (s *LedgerStore) getLocked(accountNumber string) (domain.Account, error) {
	account, ok := s.accounts[accountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (s *LedgerStore) insertLocked(account domain.Account) (domain.Account, error) {
	if _, ok := s.accounts[account.AccountNumber]; ok {
		return domain.Account{}, commons.ErrConflict
	}
	account.Version = 1
	s.accounts[account.AccountNumber] = account
	return account, nil
}

func (s *LedgerStore) updateLocked(account domain.Account, expectedVersion int64) (domain.Account, error) {
	current, ok := s.accounts[account.AccountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	if current.Version != expectedVersion {
		return domain.Account{}, commons.ErrConflict
	}
	account.Version = expectedVersion + 1
	s.accounts[account.AccountNumber] = account
	return account, nil
}

// ledgerTx buffers one transaction's effects. Writes are only visible to the
// transaction itself until commit.
type ledgerTx struct {
	store   *LedgerStore
	reads   map[string]int64
	writes  map[string]domain.Account
	inserts map[string]domain.Account
}

func (t *ledgerTx) Get(_ context.Context, accountNumber string) (domain.Account, error) {
	if account, ok := t.writes[accountNumber]; ok {
		return account, nil
	}
	if account, ok := t.inserts[accountNumber]; ok {
		return account, nil
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	account, err := t.store.getLocked(accountNumber)
	if err != nil {
		return domain.Account{}, err
	}
	t.reads[accountNumber] = account.Version
	return account, nil
}

func (t *ledgerTx) Exists(ctx context.Context, accountNumber string) (bool, error) {
	if _, ok := t.inserts[accountNumber]; ok {
		return true, nil
	}
	return t.store.Exists(ctx, accountNumber)
}

func (t *ledgerTx) Insert(_ context.Context, account domain.Account) (domain.Account, error) {
	t.store.mu.Lock()
	_, exists := t.store.accounts[account.AccountNumber]
	t.store.mu.Unlock()
	if exists {
		return domain.Account{}, commons.ErrConflict
	}
	if _, ok := t.inserts[account.AccountNumber]; ok {
		return domain.Account{}, commons.ErrConflict
	}

	account.Version = 1
	t.inserts[account.AccountNumber] = account
	return account, nil
}

func (t *ledgerTx) Update(_ context.Context, account domain.Account, expectedVersion int64) (domain.Account, error) {
	if readVersion, ok := t.reads[account.AccountNumber]; ok && readVersion != expectedVersion {
		return domain.Account{}, commons.ErrConflict
	}

	account.Version = expectedVersion + 1
	t.writes[account.AccountNumber] = account
	return account, nil
}
