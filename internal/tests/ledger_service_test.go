package services_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/adapter/repository/memory"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
	"github.com/Iamfittz/TheFitzBank/internal/usecase/services"
	"github.com/stretchr/testify/require"
)

func newLedgerService() *services.LedgerService {
	store := memory.NewLedgerStore()
	allocator := services.NewAccountNumberAllocator(store)
	return services.NewLedgerService(store, memory.NewTransactionStore(), allocator)
}

func createAccount(t *testing.T, svc *services.LedgerService, owner, balance string) models.AccountResponse {
	t.Helper()
	response, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerName:      owner,
		InitialBalance: balance,
	})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.NotNil(t, response.Data)
	return *response.Data
}

func accountBalance(t *testing.T, svc *services.LedgerService, accountNumber string) string {
	t.Helper()
	response, err := svc.GetAccount(context.Background(), accountNumber)
	require.NoError(t, err)
	require.NotNil(t, response.Data)
	return response.Data.Balance
}

func TestLedgerServiceCreateAccountValidationError(t *testing.T) {
	svc := newLedgerService()

	_, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty create account request")
	}
}

func TestLedgerServiceDepositValidationError(t *testing.T) {
	svc := newLedgerService()

	_, err := svc.Deposit(context.Background(), models.DepositRequest{
		AccountNumber: "ACC123456",
		Amount:        "0",
	})
	if err == nil {
		t.Fatal("expected validation error for non-positive deposit amount")
	}
}

func TestLedgerServiceTransferValidationError(t *testing.T) {
	svc := newLedgerService()

	_, err := svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: "ACC123456",
		ToAccountNumber:   "ACC123456",
		Amount:            "10",
	})
	if err == nil {
		t.Fatal("expected validation error for transfer to the same account")
	}
}

func TestLedgerServiceCreateAccount(t *testing.T) {
	svc := newLedgerService()

	account := createAccount(t, svc, "John Fitz", "100.009")

	require.Regexp(t, regexp.MustCompile(`^ACC\d{6}$`), account.AccountNumber)
	require.Equal(t, "John Fitz", account.OwnerName)
	require.Equal(t, "USD", account.Currency)
	require.Equal(t, "100.00", account.Balance)
}

func TestLedgerServiceGetAccountNotFound(t *testing.T) {
	svc := newLedgerService()

	response, err := svc.GetAccount(context.Background(), "ACC999999")
	require.Error(t, err)
	require.False(t, response.Success)
	require.Equal(t, string(domain.KindNotFound), response.ErrorKind)
}

func TestLedgerServiceListAccounts(t *testing.T) {
	svc := newLedgerService()
	createAccount(t, svc, "John Fitz", "10")
	createAccount(t, svc, "Jane Fitz", "20")

	response, err := svc.ListAccounts(context.Background())
	require.NoError(t, err)
	require.NotNil(t, response.Data)
	require.Len(t, *response.Data, 2)
}

func TestLedgerServiceDepositAndWithdraw(t *testing.T) {
	svc := newLedgerService()
	account := createAccount(t, svc, "John Fitz", "100")

	depositResp, err := svc.Deposit(context.Background(), models.DepositRequest{
		AccountNumber: account.AccountNumber,
		Amount:        "49.999",
	})
	require.NoError(t, err)
	require.Equal(t, "149.99", depositResp.Data.Balance)

	_, err = svc.Withdraw(context.Background(), models.WithdrawRequest{
		AccountNumber: account.AccountNumber,
		Amount:        "50",
	})
	require.NoError(t, err)
	require.Equal(t, "99.99", accountBalance(t, svc, account.AccountNumber))
}

func TestLedgerServiceWithdrawInsufficientFunds(t *testing.T) {
	svc := newLedgerService()
	account := createAccount(t, svc, "John Fitz", "100")

	response, err := svc.Withdraw(context.Background(), models.WithdrawRequest{
		AccountNumber: account.AccountNumber,
		Amount:        "5000",
	})
	require.Error(t, err)
	require.Equal(t, string(domain.KindInsufficientFunds), response.ErrorKind)
	require.Equal(t, "100.00", accountBalance(t, svc, account.AccountNumber))
}

func TestLedgerServiceClosedAccountRejectsMutations(t *testing.T) {
	svc := newLedgerService()
	account := createAccount(t, svc, "John Fitz", "100")

	closeResp, err := svc.CloseAccount(context.Background(), account.AccountNumber)
	require.NoError(t, err)
	require.True(t, closeResp.Data.IsClosed)

	// Closing again is a no-op.
	_, err = svc.CloseAccount(context.Background(), account.AccountNumber)
	require.NoError(t, err)

	depositResp, err := svc.Deposit(context.Background(), models.DepositRequest{
		AccountNumber: account.AccountNumber,
		Amount:        "10",
	})
	require.Error(t, err)
	require.Equal(t, string(domain.KindAccountClosed), depositResp.ErrorKind)

	withdrawResp, err := svc.Withdraw(context.Background(), models.WithdrawRequest{
		AccountNumber: account.AccountNumber,
		Amount:        "10",
	})
	require.Error(t, err)
	require.Equal(t, string(domain.KindAccountClosed), withdrawResp.ErrorKind)

	require.Equal(t, "100.00", accountBalance(t, svc, account.AccountNumber))
}

func TestLedgerServiceTransferSuccess(t *testing.T) {
	svc := newLedgerService()
	from := createAccount(t, svc, "John Fitz", "1000")
	to := createAccount(t, svc, "Jane Fitz", "500")

	response, err := svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   to.AccountNumber,
		Amount:            "300",
	})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.True(t, response.Data.Success)
	require.Equal(t, "Transfer successful", response.Data.Message)

	require.Equal(t, "700.00", accountBalance(t, svc, from.AccountNumber))
	require.Equal(t, "800.00", accountBalance(t, svc, to.AccountNumber))
}

func TestLedgerServiceTransferAccountNotFound(t *testing.T) {
	svc := newLedgerService()
	from := createAccount(t, svc, "John Fitz", "1000")

	response, err := svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   "NOPE",
		Amount:            "50",
	})
	require.NoError(t, err)
	require.NotNil(t, response.Data)
	require.False(t, response.Data.Success)
	require.Equal(t, "One or both accounts not found", response.Data.Message)

	require.Equal(t, "1000.00", accountBalance(t, svc, from.AccountNumber))
}

func TestLedgerServiceTransferInsufficientFundsIsSoftOutcome(t *testing.T) {
	svc := newLedgerService()
	from := createAccount(t, svc, "John Fitz", "100")
	to := createAccount(t, svc, "Jane Fitz", "0")

	response, err := svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   to.AccountNumber,
		Amount:            "100.01",
	})
	require.NoError(t, err)
	require.False(t, response.Data.Success)
	require.Equal(t, "insufficient balance", response.Data.Message)

	require.Equal(t, "100.00", accountBalance(t, svc, from.AccountNumber))
	require.Equal(t, "0.00", accountBalance(t, svc, to.AccountNumber))
}

func TestLedgerServiceTransferCurrencyMismatchIsSoftOutcome(t *testing.T) {
	svc := newLedgerService()
	from := createAccount(t, svc, "John Fitz", "100")

	eurResp, err := svc.CreateAccount(context.Background(), models.CreateAccountRequest{
		OwnerName:      "Jane Fitz",
		Currency:       "EUR",
		InitialBalance: "100",
	})
	require.NoError(t, err)

	response, err := svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   eurResp.Data.AccountNumber,
		Amount:            "50",
	})
	require.NoError(t, err)
	require.False(t, response.Data.Success)

	require.Equal(t, "100.00", accountBalance(t, svc, from.AccountNumber))
	require.Equal(t, "100.00", accountBalance(t, svc, eurResp.Data.AccountNumber))
}

func TestLedgerServiceRecordsTransactions(t *testing.T) {
	svc := newLedgerService()
	from := createAccount(t, svc, "John Fitz", "1000")
	to := createAccount(t, svc, "Jane Fitz", "500")

	_, err := svc.Deposit(context.Background(), models.DepositRequest{
		AccountNumber: from.AccountNumber,
		Amount:        "100",
	})
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), models.WithdrawRequest{
		AccountNumber: from.AccountNumber,
		Amount:        "50",
	})
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), models.TransferRequest{
		FromAccountNumber: from.AccountNumber,
		ToAccountNumber:   to.AccountNumber,
		Amount:            "25",
	})
	require.NoError(t, err)

	response, err := svc.ListTransactions(context.Background(), from.AccountNumber)
	require.NoError(t, err)
	require.NotNil(t, response.Data)

	transactions := *response.Data
	require.Len(t, transactions, 3)
	require.Equal(t, string(domain.TransactionTypeDeposit), transactions[0].Type)
	require.Equal(t, string(domain.TransactionTypeWithdrawal), transactions[1].Type)
	require.Equal(t, string(domain.TransactionTypeTransfer), transactions[2].Type)
	require.Equal(t, to.AccountNumber, transactions[2].ToAccount)
}
