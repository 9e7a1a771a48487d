package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Iamfittz/TheFitzBank/internal/adapter/http/models"
	"github.com/Iamfittz/TheFitzBank/internal/commons"
)

type TransactionService interface {
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	ListTransactions(ctx context.Context, accountNumber string) (commons.Response[[]models.TransactionResponse], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/transfers", c.transfer)
	mux.HandleFunc("/transactions", c.listTransactions)
}

// transfer always answers 200 for business outcomes; the TransferResponse
// body says whether the transfer happened. Only malformed requests and
// infrastructure faults use error statuses.
func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.TransferResponse]("method not allowed"))
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *TransactionController) listTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[[]models.TransactionResponse]("method not allowed"))
		return
	}

	accountNumber := r.URL.Query().Get("accountNumber")
	response, err := c.service.ListTransactions(r.Context(), accountNumber)
	if err != nil {
		writeJSON(w, statusForKind(response.ErrorKind), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
