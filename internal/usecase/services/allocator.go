package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/logger"
	"golang.org/x/sync/semaphore"
)

const (
	accountNumberPrefix   = "ACC"
	maxAllocationAttempts = 10
)

// AccountNumberAllocator hands out unique ACC###### numbers. A weight-1
// semaphore serializes the check-then-insert step across all goroutines, so
// two concurrent allocations can never pick the same free candidate; the
// store's uniqueness guarantee backstops any other writer, surfacing as
// commons.ErrConflict and costing one attempt.
type AccountNumberAllocator struct {
	store repo_interfaces.LedgerStore
	sem   *semaphore.Weighted
}

func NewAccountNumberAllocator(store repo_interfaces.LedgerStore) *AccountNumberAllocator {
	return &AccountNumberAllocator{
		store: store,
		sem:   semaphore.NewWeighted(1),
	}
}

// AllocateAndInsert picks a free account number, builds the account through
// newAccount and inserts it, all inside the allocation critical section. Only
// the allocate-and-reserve step is serialized; callers do the rest of their
// work outside.
func (a *AccountNumberAllocator) AllocateAndInsert(
	ctx context.Context,
	newAccount func(accountNumber string) (domain.Account, error),
) (domain.Account, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return domain.Account{}, fmt.Errorf("acquire allocation semaphore: %w", err)
	}
	defer a.sem.Release(1)

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%06d", accountNumberPrefix, 100000+rand.IntN(900000))

		exists, err := a.store.Exists(ctx, candidate)
		if err != nil {
			return domain.Account{}, err
		}
		if exists {
			logger.Warn("account number candidate taken", logger.Fields{
				"candidate": candidate,
				"attempt":   attempt + 1,
			})
			continue
		}

		account, err := newAccount(candidate)
		if err != nil {
			return domain.Account{}, err
		}

		created, err := a.store.Insert(ctx, account)
		if err != nil {
			if errors.Is(err, commons.ErrConflict) {
				logger.Warn("account number insert conflict", logger.Fields{
					"candidate": candidate,
					"attempt":   attempt + 1,
				})
				continue
			}
			return domain.Account{}, err
		}

		return created, nil
	}

	return domain.Account{}, domain.NewError(domain.KindAllocationExhausted, "could not allocate a unique account number")
}
