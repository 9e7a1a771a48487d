package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the in-memory representation of one monetary account. All money
// arithmetic happens here, truncated toward zero to 2 decimal places, and the
// balance can never go negative. Persistence belongs to the repositories.
type Account struct {
	ID            string
	AccountNumber string
	OwnerName     string
	Currency      string
	Balance       decimal.Decimal
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	IsClosed      bool
	ClosedAt      *time.Time
}

// NewAccount builds an open account. AccountNumber comes from the allocator
// and is immutable afterwards, as is the currency.
func NewAccount(accountNumber, ownerName, currency string, initialBalance decimal.Decimal) (Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	ownerName = strings.TrimSpace(ownerName)
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if accountNumber == "" {
		return Account{}, NewInvalidArgument("account number is required")
	}
	if ownerName == "" {
		return Account{}, NewInvalidArgument("owner name is required")
	}
	if !isCurrencyCode(currency) {
		return Account{}, NewInvalidArgument("currency must be a 3-letter code")
	}
	if initialBalance.IsNegative() {
		return Account{}, NewInvalidArgument("initial balance cannot be negative")
	}

	now := time.Now().UTC()
	return Account{
		ID:            uuid.NewString(),
		AccountNumber: accountNumber,
		OwnerName:     ownerName,
		Currency:      currency,
		Balance:       initialBalance.Truncate(2),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewInvalidArgument("deposit amount must be greater than zero")
	}
	if a.IsClosed {
		return NewError(KindAccountClosed, fmt.Sprintf("account %s is closed", a.AccountNumber))
	}

	// Only whole cents ever move, so a debit and its compensating credit
	// are exact inverses of each other.
	a.Balance = a.Balance.Add(amount.Truncate(2))
	a.touch()
	return nil
}

func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewInvalidArgument("withdrawal amount must be greater than zero")
	}
	if a.IsClosed {
		return NewError(KindAccountClosed, fmt.Sprintf("account %s is closed", a.AccountNumber))
	}
	amount = amount.Truncate(2)
	if amount.GreaterThan(a.Balance) {
		return NewError(KindInsufficientFunds, "insufficient balance")
	}

	a.Balance = a.Balance.Sub(amount)
	a.touch()
	return nil
}

// TransferTo debits the receiver and credits destination. If the credit is
// rejected the debit is restored, so money never leaves one account without
// arriving at the other.
func (a *Account) TransferTo(destination *Account, amount decimal.Decimal) error {
	if destination == nil {
		return NewInvalidArgument("destination account is required")
	}
	if destination.AccountNumber == a.AccountNumber {
		return NewInvalidArgument("cannot transfer to the same account")
	}
	if !strings.EqualFold(a.Currency, destination.Currency) {
		return NewError(KindCurrencyMismatch, fmt.Sprintf("cannot transfer %s to a %s account", a.Currency, destination.Currency))
	}

	if err := a.Withdraw(amount); err != nil {
		return err
	}
	if err := destination.Deposit(amount); err != nil {
		// Restore the exact cents Withdraw removed. The failed transfer is
		// not a mutation, so UpdatedAt stays where Withdraw left it.
		a.Balance = a.Balance.Add(amount.Truncate(2))
		return err
	}
	return nil
}

// Close is idempotent. A closed account rejects every further mutation.
func (a *Account) Close() {
	if a.IsClosed {
		return
	}
	now := time.Now().UTC()
	a.IsClosed = true
	a.ClosedAt = &now
	a.UpdatedAt = now
}

func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}

func isCurrencyCode(currency string) bool {
	if len(currency) != 3 {
		return false
	}
	for _, ch := range currency {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
