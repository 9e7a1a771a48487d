package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
	"github.com/Iamfittz/TheFitzBank/internal/domain"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
	Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.AccountResponse], error)
	Withdraw(ctx context.Context, req models.WithdrawRequest) (commons.Response[struct{}], error)
	CloseAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/accounts", c.accounts)
	mux.HandleFunc("/accounts/", c.accountByNumber)
	mux.HandleFunc("/accounts/deposit", c.deposit)
	mux.HandleFunc("/accounts/withdraw", c.withdraw)
}

func (c *AccountController) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.createAccount(w, r)
	case http.MethodGet:
		c.listAccounts(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
	}
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.CreateAccount(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	response, err := c.service.ListAccounts(r.Context())
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// accountByNumber serves GET /accounts/{accountNumber} and
// POST /accounts/{accountNumber}/close.
func (c *AccountController) accountByNumber(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/accounts/")

	if r.Method == http.MethodPost && strings.HasSuffix(rest, "/close") {
		accountNumber := strings.TrimSuffix(rest, "/close")
		response, err := c.service.CloseAccount(r.Context(), accountNumber)
		if err != nil {
			writeJSON(w, statusForKind(response.ErrorKind), response)
			return
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}

	response, err := c.service.GetAccount(r.Context(), rest)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.AccountResponse]("method not allowed"))
		return
	}

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Deposit(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *AccountController) withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[struct{}]("method not allowed"))
		return
	}

	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[struct{}]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Withdraw(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForKind(kind string) int {
	switch domain.ErrorKind(kind) {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAccountClosed, domain.KindInsufficientFunds, domain.KindCurrencyMismatch, domain.KindStoreConflict:
		return http.StatusConflict
	case domain.KindAllocationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
