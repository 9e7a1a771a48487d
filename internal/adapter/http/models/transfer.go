package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	FromAccountNumber string `json:"fromAccountNumber"`
	ToAccountNumber   string `json:"toAccountNumber"`
	Amount            string `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	from := strings.TrimSpace(r.FromAccountNumber)
	to := strings.TrimSpace(r.ToAccountNumber)

	if from == "" {
		errs = append(errs, "fromAccountNumber is required")
	}
	if to == "" {
		errs = append(errs, "toAccountNumber is required")
	}
	if from != "" && from == to {
		errs = append(errs, "cannot transfer to the same account")
	}

	amount := strings.TrimSpace(r.Amount)
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

// TransferResponse is a business outcome, not an API error: a transfer that
// could not happen still produces Success=false with a message, delivered
// inside a successful envelope.
type TransferResponse struct {
	FromAccountNumber string `json:"fromAccountNumber"`
	ToAccountNumber   string `json:"toAccountNumber"`
	Amount            string `json:"amount"`
	TransferredAt     string `json:"transferredAt,omitempty"`
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
}

type TransactionResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	AccountNumber string `json:"accountNumber"`
	FromAccount   string `json:"fromAccount,omitempty"`
	ToAccount     string `json:"toAccount,omitempty"`
	CreatedAt     string `json:"createdAt"`
}
