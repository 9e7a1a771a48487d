package service_interfaces

import (
	"context"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
)

type LedgerService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
	Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.AccountResponse], error)
	Withdraw(ctx context.Context, req models.WithdrawRequest) (commons.Response[struct{}], error)
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	CloseAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
	ListTransactions(ctx context.Context, accountNumber string) (commons.Response[[]models.TransactionResponse], error)
}
