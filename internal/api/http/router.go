package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentorder-backend/internal/logger"
)

// NewRouter wires all order routes onto a mux router.
func NewRouter(orders *OrderHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", orders.CreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", orders.GetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/totals", orders.GetTotals).Methods(http.MethodGet)

	api.HandleFunc("/orders/{id}/lines", orders.AddLine).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/lines/{lineID}", orders.UpdateLine).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}/lines/{lineID}", orders.RemoveLine).Methods(http.MethodDelete)

	api.HandleFunc("/orders/{id}/confirm", orders.Confirm).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/activate", orders.Activate).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/cancel", orders.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/complete", orders.Complete).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/reset", orders.ResetToDraft).Methods(http.MethodPost)

	api.HandleFunc("/orders/{id}/invoices", orders.GenerateInvoices).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/invoices", orders.ListInvoices).Methods(http.MethodGet)

	api.HandleFunc("/invoice-periods", orders.ListInvoicePeriods).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request handled", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
