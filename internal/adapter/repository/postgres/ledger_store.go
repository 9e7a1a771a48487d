package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/logger"
	"github.com/lib/pq"
)

// LedgerStore persists accounts in postgres. Lost updates are prevented by a
// version column checked on every update; serializable transactions report
// write-write conflicts through SQLSTATE 40001, which is mapped to
// commons.ErrConflict for the engine's retry loop.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const accountColumns = `id, account_number, owner_name, currency, balance, version, is_closed, closed_at, created_at, updated_at`

func (s *LedgerStore) Get(ctx context.Context, accountNumber string) (domain.Account, error) {
	return getAccount(ctx, s.db, accountNumber)
}

func (s *LedgerStore) Exists(ctx context.Context, accountNumber string) (bool, error) {
	return accountExists(ctx, s.db, accountNumber)
}

func (s *LedgerStore) Insert(ctx context.Context, account domain.Account) (domain.Account, error) {
	return insertAccount(ctx, s.db, account)
}

func (s *LedgerStore) Update(ctx context.Context, account domain.Account, expectedVersion int64) (domain.Account, error) {
	return updateAccount(ctx, s.db, account, expectedVersion)
}

func (s *LedgerStore) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_number`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ledger store list failed", err, nil)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (s *LedgerStore) WithTransaction(ctx context.Context, level sql.IsolationLevel, fn func(tx repo_interfaces.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: level})
	if err != nil {
		logger.Error("ledger store begin tx failed", err, nil)
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		if isConflict(err) {
			return commons.ErrConflict
		}
		logger.Error("ledger store commit tx failed", err, nil)
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx *sql.Tx
}

func (t *ledgerTx) Get(ctx context.Context, accountNumber string) (domain.Account, error) {
	return getAccount(ctx, t.tx, accountNumber)
}

func (t *ledgerTx) Exists(ctx context.Context, accountNumber string) (bool, error) {
	return accountExists(ctx, t.tx, accountNumber)
}

func (t *ledgerTx) Insert(ctx context.Context, account domain.Account) (domain.Account, error) {
	return insertAccount(ctx, t.tx, account)
}

func (t *ledgerTx) Update(ctx context.Context, account domain.Account, expectedVersion int64) (domain.Account, error) {
	return updateAccount(ctx, t.tx, account, expectedVersion)
}

func getAccount(ctx context.Context, q querier, accountNumber string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	account, err := scanAccount(q.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		if isConflict(err) {
			return domain.Account{}, commons.ErrConflict
		}
		logger.Error("ledger store get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

func accountExists(ctx context.Context, q querier, accountNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	if err := q.QueryRowContext(ctx, query, accountNumber).Scan(&exists); err != nil {
		if isConflict(err) {
			return false, commons.ErrConflict
		}
		logger.Error("ledger store exists check failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return false, fmt.Errorf("check account exists: %w", err)
	}

	return exists, nil
}

func insertAccount(ctx context.Context, q querier, account domain.Account) (domain.Account, error) {
	logger.Info("ledger store insert account", logger.Fields{
		"accountNumber": account.AccountNumber,
		"currency":      account.Currency,
	})

	const query = `
INSERT INTO accounts (
	id,
	account_number,
	owner_name,
	currency,
	balance,
	version,
	is_closed,
	closed_at
) VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
RETURNING version, created_at, updated_at`

	if err := q.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.AccountNumber,
		account.OwnerName,
		account.Currency,
		account.Balance,
		account.IsClosed,
		account.ClosedAt,
	).Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isConflict(err) {
			logger.Warn("ledger store insert conflict", logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			return domain.Account{}, commons.ErrConflict
		}
		logger.Error("ledger store insert failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return account, nil
}

func updateAccount(ctx context.Context, q querier, account domain.Account, expectedVersion int64) (domain.Account, error) {
	const query = `
UPDATE accounts
SET owner_name = $2,
    balance = $3,
    is_closed = $4,
    closed_at = $5,
    version = version + 1,
    updated_at = NOW()
WHERE account_number = $1
  AND version = $6
RETURNING version, updated_at`

	if err := q.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.OwnerName,
		account.Balance,
		account.IsClosed,
		account.ClosedAt,
		expectedVersion,
	).Scan(&account.Version, &account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No row matched: either the account is gone or someone
			// committed a newer version since our read.
			exists, existsErr := accountExists(ctx, q, account.AccountNumber)
			if existsErr != nil {
				return domain.Account{}, existsErr
			}
			if !exists {
				return domain.Account{}, commons.ErrRecordNotFound
			}
			return domain.Account{}, commons.ErrConflict
		}
		if isConflict(err) {
			return domain.Account{}, commons.ErrConflict
		}
		logger.Error("ledger store update failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return account, nil
}

func scanAccount(row interface{ Scan(dest ...any) error }) (domain.Account, error) {
	var account domain.Account
	var closedAt sql.NullTime

	if err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.OwnerName,
		&account.Currency,
		&account.Balance,
		&account.Version,
		&account.IsClosed,
		&closedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	if closedAt.Valid {
		value := closedAt.Time
		account.ClosedAt = &value
	}
	return account, nil
}

// isConflict recognizes the postgres failure modes that mean "someone else
// got there first": unique violations, serialization failures and deadlocks.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "23505", "40001", "40P01":
			return true
		}
	}
	return false
}
