package router

import "net/http"

type AccountRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

type TransactionRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

func New(
	accountController AccountRouteRegistrar,
	transactionController TransactionRouteRegistrar,
) *http.ServeMux {
	mux := http.NewServeMux()

	if accountController != nil {
		accountController.RegisterRoutes(mux)
	}
	if transactionController != nil {
		transactionController.RegisterRoutes(mux)
	}

	return mux
}
