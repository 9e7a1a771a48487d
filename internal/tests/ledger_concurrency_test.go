package services_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentCreateAccountNumbersAreUnique(t *testing.T) {
	svc := newLedgerService()

	const creations = 50

	var mu sync.Mutex
	numbers := make(map[string]struct{}, creations)

	var g errgroup.Group
	for i := 0; i < creations; i++ {
		owner := fmt.Sprintf("Owner %d", i)
		g.Go(func() error {
			response, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
				OwnerName:      owner,
				InitialBalance: "10",
			})
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			if _, taken := numbers[response.Data.AccountNumber]; taken {
				return fmt.Errorf("account number %s allocated twice", response.Data.AccountNumber)
			}
			numbers[response.Data.AccountNumber] = struct{}{}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	require.Len(t, numbers, creations)
}

// Many transfers in random directions over a small pool of shared accounts:
// everything must finish (success or structured failure), no balance may go
// negative and the pool's total must be conserved to the cent.
func TestConcurrentTransfersConserveTotalAndComplete(t *testing.T) {
	svc := newLedgerService()

	const (
		accounts  = 5
		transfers = 400
	)

	numbers := make([]string, 0, accounts)
	for i := 0; i < accounts; i++ {
		account := createAccount(t, svc, fmt.Sprintf("Owner %d", i), "1000")
		numbers = append(numbers, account.AccountNumber)
	}

	var g errgroup.Group
	for i := 0; i < transfers; i++ {
		g.Go(func() error {
			from := numbers[rand.IntN(accounts)]
			to := numbers[rand.IntN(accounts)]
			if from == to {
				return nil
			}

			amount := fmt.Sprintf("%d.%02d", 1+rand.IntN(50), rand.IntN(100))
			response, err := svc.Transfer(context.Background(), models.TransferRequest{
				FromAccountNumber: from,
				ToAccountNumber:   to,
				Amount:            amount,
			})
			if err != nil {
				return err
			}
			if response.Data == nil {
				return fmt.Errorf("transfer returned no outcome")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	total := decimal.Zero
	for _, number := range numbers {
		balance := decimal.RequireFromString(accountBalance(t, svc, number))
		require.False(t, balance.IsNegative(), "account %s went negative", number)
		total = total.Add(balance)
	}
	require.Equal(t, "5000.00", total.StringFixed(2))
}

func TestConcurrentDepositsAreNotLost(t *testing.T) {
	svc := newLedgerService()
	account := createAccount(t, svc, "John Fitz", "0")

	const deposits = 40

	var mu sync.Mutex
	succeeded := 0

	var g errgroup.Group
	for i := 0; i < deposits; i++ {
		g.Go(func() error {
			response, err := svc.Deposit(context.Background(), models.DepositRequest{
				AccountNumber: account.AccountNumber,
				Amount:        "1.00",
			})
			if err != nil {
				// Retries exhausted under contention is a structured
				// failure, not a lost update.
				if response.ErrorKind == string(domain.KindStoreConflict) {
					return nil
				}
				return err
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	expected := decimal.NewFromInt(int64(succeeded))
	require.Equal(t, expected.StringFixed(2), accountBalance(t, svc, account.AccountNumber))
}
