package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/logger"
	"github.com/google/uuid"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Record(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	id,
	type,
	amount,
	account_number,
	from_account,
	to_account
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

	transaction.ID = uuid.NewString()
	if err := s.db.QueryRowContext(
		ctx,
		query,
		transaction.ID,
		transaction.Type,
		transaction.Amount,
		transaction.AccountNumber,
		transaction.FromAccount,
		transaction.ToAccount,
	).Scan(&transaction.CreatedAt); err != nil {
		logger.Error("transaction store record failed", err, logger.Fields{
			"accountNumber": transaction.AccountNumber,
			"type":          transaction.Type,
		})
		return domain.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	return transaction, nil
}

func (s *TransactionStore) ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	const query = `
SELECT id, type, amount, account_number, from_account, to_account, created_at
FROM transactions
WHERE account_number = $1
   OR from_account = $1
   OR to_account = $1
ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, accountNumber)
	if err != nil {
		logger.Error("transaction store list failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(
			&transaction.ID,
			&transaction.Type,
			&transaction.Amount,
			&transaction.AccountNumber,
			&transaction.FromAccount,
			&transaction.ToAccount,
			&transaction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}
