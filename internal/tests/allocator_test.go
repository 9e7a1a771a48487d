package services_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/memory"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/usecase/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var accountNumberPattern = regexp.MustCompile(`^ACC\d{6}$`)

func TestAllocatorProducesWellFormedUniqueNumbers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLedgerStore()
	allocator := services.NewAccountNumberAllocator(store)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		created, err := allocator.AllocateAndInsert(ctx, func(accountNumber string) (domain.Account, error) {
			return domain.NewAccount(accountNumber, "John Fitz", "USD", decimal.Zero)
		})
		require.NoError(t, err)
		require.Regexp(t, accountNumberPattern, created.AccountNumber)

		_, taken := seen[created.AccountNumber]
		require.False(t, taken, "allocator reused %s", created.AccountNumber)
		seen[created.AccountNumber] = struct{}{}
	}
}

func TestAllocatorPropagatesBuildErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewLedgerStore()
	allocator := services.NewAccountNumberAllocator(store)

	_, err := allocator.AllocateAndInsert(ctx, func(accountNumber string) (domain.Account, error) {
		return domain.NewAccount(accountNumber, "", "USD", decimal.Zero)
	})
	require.Error(t, err)
	require.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))

	exists, err := store.Exists(ctx, "")
	require.NoError(t, err)
	require.False(t, exists)
}
