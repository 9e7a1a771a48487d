package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	OwnerName      string `json:"ownerName"`
	Currency       string `json:"currency,omitempty"`
	InitialBalance string `json:"initialBalance,omitempty"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.OwnerName) == "" {
		errs = append(errs, "ownerName is required")
	}

	ccy := strings.ToUpper(strings.TrimSpace(r.Currency))
	if ccy != "" && !isCurrencyCode(ccy) {
		errs = append(errs, "currency must be a 3-letter code")
	}

	if strings.TrimSpace(r.InitialBalance) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(r.InitialBalance))
		if err != nil {
			errs = append(errs, "initialBalance must be numeric")
		} else if parsed.IsNegative() {
			errs = append(errs, "initialBalance cannot be negative")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	OwnerName     string `json:"ownerName"`
	Currency      string `json:"currency"`
	Balance       string `json:"balance"`
	IsClosed      bool   `json:"isClosed"`
	ClosedAt      string `json:"closedAt,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type DepositRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
}

func (r DepositRequest) Validate() error {
	return validateAccountAmount(r.AccountNumber, r.Amount)
}

type WithdrawRequest struct {
	AccountNumber string `json:"accountNumber"`
	Amount        string `json:"amount"`
}

func (r WithdrawRequest) Validate() error {
	return validateAccountAmount(r.AccountNumber, r.Amount)
}

func validateAccountAmount(accountNumber, amount string) error {
	var errs []string

	if strings.TrimSpace(accountNumber) == "" {
		errs = append(errs, "accountNumber is required")
	}

	amount = strings.TrimSpace(amount)
	if amount == "" {
		errs = append(errs, "amount is required")
	} else {
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			errs = append(errs, "amount must be numeric")
		} else if parsed.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, "amount must be greater than zero")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
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
