package repo_interfaces

import (
	"context"
	"database/sql"

	"github.com/Iamfittz/TheFitzBank/internal/domain"
)

// LedgerTx is the set of account operations available both inside and outside
// an explicit transaction. Implementations return commons.ErrRecordNotFound
// for absent accounts and commons.ErrConflict for duplicate inserts or
// version-mismatched updates.
type LedgerTx interface {
	Get(ctx context.Context, accountNumber string) (domain.Account, error)
	Exists(ctx context.Context, accountNumber string) (bool, error)
	Insert(ctx context.Context, account domain.Account) (domain.Account, error)
	// Update persists the account only if its stored version still equals
	// expectedVersion, then returns the record with the version advanced.
	Update(ctx context.Context, account domain.Account, expectedVersion int64) (domain.Account, error)
}

// LedgerStore is the durable keyed storage the engine orchestrates against.
type LedgerStore interface {
	LedgerTx

	List(ctx context.Context) ([]domain.Account, error)

	// WithTransaction runs fn inside one storage transaction at the given
	// isolation level. A nil error from fn commits; any error rolls the whole
	// transaction back. Detected write-write conflicts surface as
	// commons.ErrConflict from WithTransaction itself.
	WithTransaction(ctx context.Context, level sql.IsolationLevel, fn func(tx LedgerTx) error) error
}

type TransactionStore interface {
	Record(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}
