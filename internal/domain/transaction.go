package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// Transaction is the minimal record of one committed money movement. For a
// transfer, AccountNumber holds the debited side and FromAccount/ToAccount
// carry both ends.
type Transaction struct {
	ID            string
	Type          TransactionType
	Amount        decimal.Decimal
	AccountNumber string
	FromAccount   *string
	ToAccount     *string
	CreatedAt     time.Time
}
