package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/repo_interfaces"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/logger"
	"github.com/Iamfittz/TheFitzBank/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.LedgerService = (*LedgerService)(nil)

// maxConflictRetries bounds how often an operation is replayed from fresh
// reads after the store reports a write-write conflict.
const maxConflictRetries = 5

// LedgerService orchestrates every money movement against the ledger store.
// Each operation loads its own copy of the accounts inside its own
// transaction, mutates them through the entity methods and persists with a
// version check, so no in-memory state outlives a single attempt.
type LedgerService struct {
	store        repo_interfaces.LedgerStore
	transactions repo_interfaces.TransactionStore
	allocator    *AccountNumberAllocator
}

func NewLedgerService(
	store repo_interfaces.LedgerStore,
	transactions repo_interfaces.TransactionStore,
	allocator *AccountNumberAllocator,
) *LedgerService {
	return &LedgerService{
		store:        store,
		transactions: transactions,
		allocator:    allocator,
	}
}

func (s *LedgerService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("ledger service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service create account validation failed", err, nil)
		return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	initialBalance := decimal.Zero
	if raw := strings.TrimSpace(req.InitialBalance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", "initialBalance must be numeric"), err
		}
		initialBalance = parsed
	}

	created, err := s.allocator.AllocateAndInsert(ctx, func(accountNumber string) (domain.Account, error) {
		return domain.NewAccount(accountNumber, req.OwnerName, currency, initialBalance)
	})
	if err != nil {
		logger.Error("ledger service create account failed", err, logger.Fields{
			"currency": currency,
		})
		return failureResponse[models.AccountResponse](err, "Unable to create account right now")
	}

	logger.Info("ledger service create account success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
	})

	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		err := errors.New("accountNumber is required")
		return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	account, err := s.store.Get(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			logger.Warn("ledger service account not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return commons.KindResponse[models.AccountResponse](string(domain.KindNotFound), "Account not found"), err
		}
		logger.Error("ledger service get account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return failureResponse[models.AccountResponse](err, "Unable to fetch account right now")
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *LedgerService) ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		logger.Error("ledger service list accounts failed", err, nil)
		return failureResponse[[]models.AccountResponse](err, "Unable to fetch accounts right now")
	}

	responses := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, mapAccountToResponse(account))
	}

	return commons.SuccessResponse("accounts fetched successfully", responses), nil
}

func (s *LedgerService) Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("ledger service deposit request", logger.Fields{
		"accountNumber": req.AccountNumber,
		"amount":        req.Amount,
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service deposit validation failed", err, nil)
		return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", "amount must be numeric"), err
	}

	updated, err := s.mutateAccount(ctx, accountNumber, func(account *domain.Account) error {
		return account.Deposit(amount)
	})
	if err != nil {
		logger.Error("ledger service deposit failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"amount":        amount,
		})
		return failureResponse[models.AccountResponse](err, "Unable to deposit funds right now")
	}

	_, _ = s.transactions.Record(ctx, domain.Transaction{
		Type:          domain.TransactionTypeDeposit,
		Amount:        amount.Truncate(2),
		AccountNumber: accountNumber,
	})

	logger.Info("ledger service deposit success", logger.Fields{
		"accountNumber": accountNumber,
		"balance":       updated.Balance,
	})

	return commons.SuccessResponse("funds deposited successfully", mapAccountToResponse(updated)), nil
}

func (s *LedgerService) Withdraw(ctx context.Context, req models.WithdrawRequest) (commons.Response[struct{}], error) {
	logger.Info("ledger service withdraw request", logger.Fields{
		"accountNumber": req.AccountNumber,
		"amount":        req.Amount,
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service withdraw validation failed", err, nil)
		return commons.KindResponse[struct{}](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return commons.KindResponse[struct{}](string(domain.KindInvalidArgument), "validation failed", "amount must be numeric"), err
	}

	updated, err := s.mutateAccount(ctx, accountNumber, func(account *domain.Account) error {
		return account.Withdraw(amount)
	})
	if err != nil {
		logger.Error("ledger service withdraw failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"amount":        amount,
		})
		return failureResponse[struct{}](err, "Unable to withdraw funds right now")
	}

	_, _ = s.transactions.Record(ctx, domain.Transaction{
		Type:          domain.TransactionTypeWithdrawal,
		Amount:        amount.Truncate(2),
		AccountNumber: accountNumber,
	})

	logger.Info("ledger service withdraw success", logger.Fields{
		"accountNumber": accountNumber,
		"balance":       updated.Balance,
	})

	return commons.SuccessResponse("funds withdrawn successfully", struct{}{}), nil
}

// Transfer moves money between two accounts inside one serializable
// transaction. Business failures come back as a TransferResponse value with
// Success=false; only infrastructure faults use the error channel.
//
// Validation order is fixed: input shape, then existence, then business rules.
func (s *LedgerService) Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("ledger service transfer request", logger.Fields{
		"fromAccountNumber": req.FromAccountNumber,
		"toAccountNumber":   req.ToAccountNumber,
		"amount":            req.Amount,
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service transfer validation failed", err, nil)
		return commons.KindResponse[models.TransferResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	from := strings.TrimSpace(req.FromAccountNumber)
	to := strings.TrimSpace(req.ToAccountNumber)
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return commons.KindResponse[models.TransferResponse](string(domain.KindInvalidArgument), "validation failed", "amount must be numeric"), err
	}
	// The same 2-decimal amount must leave one account and arrive at the
	// other, otherwise truncation could create or destroy fractions of a
	// cent.
	amount = amount.Truncate(2)

	outcome := models.TransferResponse{
		FromAccountNumber: from,
		ToAccountNumber:   to,
		Amount:            amount.StringFixed(2),
	}

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var rejection *domain.Error

		err := s.store.WithTransaction(ctx, sql.LevelSerializable, func(tx repo_interfaces.LedgerTx) error {
			// Both accounts are loaded in lexicographic order, whichever
			// side is the source. Every concurrent transfer acquires its
			// locks in this same total order, so overlapping transfers
			// cannot deadlock.
			first, second := from, to
			if second < first {
				first, second = second, first
			}

			loaded := make(map[string]domain.Account, 2)
			for _, accountNumber := range []string{first, second} {
				account, err := tx.Get(ctx, accountNumber)
				if err != nil {
					if errors.Is(err, commons.ErrRecordNotFound) {
						rejection = domain.NewError(domain.KindNotFound, "One or both accounts not found")
						return nil
					}
					return err
				}
				loaded[accountNumber] = account
			}

			source := loaded[from]
			destination := loaded[to]
			if err := source.TransferTo(&destination, amount); err != nil {
				var domainErr *domain.Error
				if errors.As(err, &domainErr) {
					rejection = domainErr
					return nil
				}
				return err
			}

			updated := map[string]domain.Account{from: source, to: destination}
			for _, accountNumber := range []string{first, second} {
				account := updated[accountNumber]
				if _, err := tx.Update(ctx, account, account.Version); err != nil {
					return err
				}
			}
			return nil
		})

		if err == nil {
			if rejection != nil {
				logger.Warn("ledger service transfer rejected", logger.Fields{
					"fromAccountNumber": from,
					"toAccountNumber":   to,
					"reason":            rejection.Message,
				})
				outcome.Message = rejection.Message
				return commons.SuccessResponse(rejection.Message, outcome), nil
			}

			outcome.Success = true
			outcome.Message = "Transfer successful"
			outcome.TransferredAt = time.Now().UTC().Format(time.RFC3339)

			_, _ = s.transactions.Record(ctx, domain.Transaction{
				Type:          domain.TransactionTypeTransfer,
				Amount:        amount.Truncate(2),
				AccountNumber: from,
				FromAccount:   &from,
				ToAccount:     &to,
			})

			logger.Info("ledger service transfer success", logger.Fields{
				"fromAccountNumber": from,
				"toAccountNumber":   to,
				"amount":            amount,
			})
			return commons.SuccessResponse("Transfer successful", outcome), nil
		}

		if errors.Is(err, commons.ErrConflict) {
			logger.Warn("ledger service transfer conflict, retrying", logger.Fields{
				"fromAccountNumber": from,
				"toAccountNumber":   to,
				"attempt":           attempt + 1,
			})
			continue
		}

		logger.Error("ledger service transfer failed", err, logger.Fields{
			"fromAccountNumber": from,
			"toAccountNumber":   to,
		})
		return commons.KindResponse[models.TransferResponse](string(domain.KindServerError), "failed to process transfer", "Unable to process transfer right now"), err
	}

	outcome.Message = "Transfer conflicted with concurrent activity, please retry"
	logger.Warn("ledger service transfer retries exhausted", logger.Fields{
		"fromAccountNumber": from,
		"toAccountNumber":   to,
	})
	return commons.SuccessResponse(outcome.Message, outcome), nil
}

func (s *LedgerService) CloseAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		err := errors.New("accountNumber is required")
		return commons.KindResponse[models.AccountResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	updated, err := s.mutateAccount(ctx, accountNumber, func(account *domain.Account) error {
		account.Close()
		return nil
	})
	if err != nil {
		logger.Error("ledger service close account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return failureResponse[models.AccountResponse](err, "Unable to close account right now")
	}

	logger.Info("ledger service close account success", logger.Fields{
		"accountNumber": accountNumber,
	})

	return commons.SuccessResponse("account closed successfully", mapAccountToResponse(updated)), nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, accountNumber string) (commons.Response[[]models.TransactionResponse], error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		err := errors.New("accountNumber is required")
		return commons.KindResponse[[]models.TransactionResponse](string(domain.KindInvalidArgument), "validation failed", err.Error()), err
	}

	transactions, err := s.transactions.ListByAccount(ctx, accountNumber)
	if err != nil {
		logger.Error("ledger service list transactions failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return failureResponse[[]models.TransactionResponse](err, "Unable to fetch transactions right now")
	}

	responses := make([]models.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		responses = append(responses, mapTransactionToResponse(transaction))
	}

	return commons.SuccessResponse("transactions fetched successfully", responses), nil
}

// mutateAccount runs one read-mutate-update cycle against a single account,
// retrying from a fresh read whenever the version check or the transaction
// itself reports a conflict. Mutations are never replayed against stale
// in-memory state.
func (s *LedgerService) mutateAccount(ctx context.Context, accountNumber string, mutate func(*domain.Account) error) (domain.Account, error) {
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		var updated domain.Account

		err := s.store.WithTransaction(ctx, sql.LevelReadCommitted, func(tx repo_interfaces.LedgerTx) error {
			account, err := tx.Get(ctx, accountNumber)
			if err != nil {
				return err
			}
			if err := mutate(&account); err != nil {
				return err
			}

			updated, err = tx.Update(ctx, account, account.Version)
			return err
		})
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, commons.ErrConflict) {
			logger.Warn("ledger service account conflict, retrying", logger.Fields{
				"accountNumber": accountNumber,
				"attempt":       attempt + 1,
			})
			continue
		}
		return domain.Account{}, err
	}

	return domain.Account{}, domain.NewError(domain.KindStoreConflict, "account was modified concurrently, please retry")
}

func failureResponse[T any](err error, fallback string) (commons.Response[T], error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return commons.KindResponse[T](string(domainErr.Kind), domainErr.Message), err
	}
	if errors.Is(err, commons.ErrRecordNotFound) {
		return commons.KindResponse[T](string(domain.KindNotFound), "Account not found"), err
	}
	if errors.Is(err, commons.ErrConflict) {
		return commons.KindResponse[T](string(domain.KindStoreConflict), "record was modified concurrently, please retry"), err
	}
	return commons.KindResponse[T](string(domain.KindServerError), fallback), err
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	response := models.AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		OwnerName:     account.OwnerName,
		Currency:      account.Currency,
		Balance:       account.Balance.StringFixed(2),
		IsClosed:      account.IsClosed,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
	if account.ClosedAt != nil {
		response.ClosedAt = account.ClosedAt.Format(time.RFC3339)
	}
	return response
}

func mapTransactionToResponse(transaction domain.Transaction) models.TransactionResponse {
	response := models.TransactionResponse{
		ID:            transaction.ID,
		Type:          string(transaction.Type),
		Amount:        transaction.Amount.StringFixed(2),
		AccountNumber: transaction.AccountNumber,
		CreatedAt:     transaction.CreatedAt.Format(time.RFC3339),
	}
	if transaction.FromAccount != nil {
		response.FromAccount = *transaction.FromAccount
	}
	if transaction.ToAccount != nil {
		response.ToAccount = *transaction.ToAccount
	}
	return response
}
