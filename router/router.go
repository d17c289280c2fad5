package router

import (
	"net/http"

	_ "bank-ledger-api/docs"
	"bank-ledger-api/handler"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires every route. Routes under /api/ go through auth, which
// must place a model.Identity into the request context.
func NewRouter(userHandler *handler.UserHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))

	api := http.NewServeMux()
	api.Handle("POST /api/deposit", handler.ErrorHandlingMiddleware(transactionHandler.Deposit))
	api.Handle("POST /api/withdrawal", handler.ErrorHandlingMiddleware(transactionHandler.Withdraw))
	api.Handle("POST /api/transfer", handler.ErrorHandlingMiddleware(transactionHandler.Transfer))
	api.Handle("GET /api/balance", handler.ErrorHandlingMiddleware(accountHandler.GetBalance))
	api.Handle("GET /api/account-number", handler.ErrorHandlingMiddleware(accountHandler.GetAccountNumber))
	api.Handle("GET /api/transactions", handler.ErrorHandlingMiddleware(accountHandler.ListTransactions))
	mux.Handle("/api/", auth(api))

	return handler.RequestLogger(mux)
}
