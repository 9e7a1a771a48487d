package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/google/uuid"
)

type TransactionStore struct {
	mu           sync.Mutex
	transactions []domain.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) Record(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction.ID = uuid.NewString()
	transaction.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, transaction)
	return transaction, nil
}

func (s *TransactionStore) ListByAccount(_ context.Context, accountNumber string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Transaction
	for _, transaction := range s.transactions {
		if transactionTouches(transaction, accountNumber) {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func transactionTouches(transaction domain.Transaction, accountNumber string) bool {
	if transaction.AccountNumber == accountNumber {
		return true
	}
	if transaction.FromAccount != nil && *transaction.FromAccount == accountNumber {
		return true
	}
	if transaction.ToAccount != nil && *transaction.ToAccount == accountNumber {
		return true
	}
	return false
}
