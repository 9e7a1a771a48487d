package memory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, number string) domain.Account {
	t.Helper()
	account, err := domain.NewAccount(number, "John Fitz", "USD", decimal.RequireFromString("100"))
	require.NoError(t, err)
	return account
}

func TestLedgerStoreInsertGetExists(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	created, err := store.Insert(ctx, newTestAccount(t, "ACC200001"))
	require.NoError(t, err)
	require.Equal(t, int64(1), created.Version)

	got, err := store.Get(ctx, "ACC200001")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	exists, err := store.Exists(ctx, "ACC200001")
	require.NoError(t, err)
	require.True(t, exists)

	_, err = store.Get(ctx, "ACC999999")
	require.ErrorIs(t, err, commons.ErrRecordNotFound)
}

func TestLedgerStoreInsertDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	_, err := store.Insert(ctx, newTestAccount(t, "ACC200002"))
	require.NoError(t, err)

	_, err = store.Insert(ctx, newTestAccount(t, "ACC200002"))
	require.ErrorIs(t, err, commons.ErrConflict)
}

func TestLedgerStoreUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	created, err := store.Insert(ctx, newTestAccount(t, "ACC200003"))
	require.NoError(t, err)

	require.NoError(t, created.Deposit(decimal.RequireFromString("50")))
	updated, err := store.Update(ctx, created, created.Version)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.Version)

	// Stale version loses.
	_, err = store.Update(ctx, created, created.Version)
	require.ErrorIs(t, err, commons.ErrConflict)
}

func TestLedgerStoreTransactionDetectsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	created, err := store.Insert(ctx, newTestAccount(t, "ACC200004"))
	require.NoError(t, err)

	err = store.WithTransaction(ctx, sql.LevelSerializable, func(tx repo_interfaces.LedgerTx) error {
		account, err := tx.Get(ctx, "ACC200004")
		if err != nil {
			return err
		}

		// Another writer commits between this transaction's read and commit.
		outside := created
		require.NoError(t, outside.Deposit(decimal.RequireFromString("1")))
		_, err = store.Update(ctx, outside, created.Version)
		require.NoError(t, err)

		if err := account.Deposit(decimal.RequireFromString("5")); err != nil {
			return err
		}
		_, err = tx.Update(ctx, account, account.Version)
		return err
	})
	require.ErrorIs(t, err, commons.ErrConflict)

	got, err := store.Get(ctx, "ACC200004")
	require.NoError(t, err)
	require.Equal(t, "101.00", got.Balance.StringFixed(2))
}

func TestLedgerStoreTransactionWritesInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	_, err := store.Insert(ctx, newTestAccount(t, "ACC200005"))
	require.NoError(t, err)

	err = store.WithTransaction(ctx, sql.LevelSerializable, func(tx repo_interfaces.LedgerTx) error {
		account, err := tx.Get(ctx, "ACC200005")
		if err != nil {
			return err
		}
		if err := account.Deposit(decimal.RequireFromString("25")); err != nil {
			return err
		}
		if _, err := tx.Update(ctx, account, account.Version); err != nil {
			return err
		}

		outside, err := store.Get(ctx, "ACC200005")
		require.NoError(t, err)
		require.Equal(t, "100.00", outside.Balance.StringFixed(2))
		return nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "ACC200005")
	require.NoError(t, err)
	require.Equal(t, "125.00", got.Balance.StringFixed(2))
}

func TestLedgerStoreTransactionRollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewLedgerStore()

	_, err := store.Insert(ctx, newTestAccount(t, "ACC200006"))
	require.NoError(t, err)

	boom := domain.NewError(domain.KindServerError, "boom")
	err = store.WithTransaction(ctx, sql.LevelSerializable, func(tx repo_interfaces.LedgerTx) error {
		account, err := tx.Get(ctx, "ACC200006")
		if err != nil {
			return err
		}
		if err := account.Deposit(decimal.RequireFromString("25")); err != nil {
			return err
		}
		if _, err := tx.Update(ctx, account, account.Version); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "ACC200006")
	require.NoError(t, err)
	require.Equal(t, "100.00", got.Balance.StringFixed(2))
}
