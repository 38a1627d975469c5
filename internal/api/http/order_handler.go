package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/invoicing"
	"rentorder-backend/internal/logger"
	"rentorder-backend/internal/pricing"
	"rentorder-backend/internal/service"
)

// OrderHandler exposes the rent order workflow over REST
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	CustomerID     int32   `json:"customer_id"`
	DateBegin      string  `json:"date_begin"` // YYYY-MM-DD
	Duration       int32   `json:"duration"`
	DurationUnit   string  `json:"duration_unit,omitempty"`
	Discount       float64 `json:"discount,omitempty"`
	InvoicePeriod  string  `json:"invoice_period,omitempty"`
	FiscalPosition string  `json:"fiscal_position,omitempty"`
	Description    string  `json:"description,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

type addLineRequest struct {
	ProductID   int32   `json:"product_id"`
	ProductType string  `json:"product_type,omitempty"`
	Quantity    int32   `json:"quantity"`
	Discount    float64 `json:"discount,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

type updateLineRequest struct {
	Quantity  *int32   `json:"quantity,omitempty"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Discount  *float64 `json:"discount,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

type addLineResponse struct {
	Line    *domain.RentOrderLine `json:"line"`
	Warning string                `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	begin, err := time.Parse("2006-01-02", req.DateBegin)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date_begin must be YYYY-MM-DD")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), &service.CreateOrderInput{
		CustomerID:     req.CustomerID,
		DateBegin:      begin,
		Duration:       req.Duration,
		DurationUnit:   domain.DurationUnit(req.DurationUnit),
		Discount:       req.Discount,
		InvoicePeriod:  req.InvoicePeriod,
		FiscalPosition: req.FiscalPosition,
		Description:    req.Description,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetTotals handles GET /api/v1/orders/{id}/totals
func (h *OrderHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	totals, err := h.orders.Totals(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// AddLine handles POST /api/v1/orders/{id}/lines
func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, warning, err := h.orders.AddLine(r.Context(), id, &service.AddLineInput{
		ProductID:   req.ProductID,
		ProductType: domain.ProductType(req.ProductType),
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := addLineResponse{Line: line}
	if warning != nil {
		resp.Warning = warning.Message()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateLine handles PUT /api/v1/orders/{id}/lines/{lineID}
func (h *OrderHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineID")
	if !ok {
		return
	}
	var req updateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	line, err := h.orders.UpdateLine(r.Context(), id, lineID, &service.UpdateLineInput{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Discount:  req.Discount,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// RemoveLine handles DELETE /api/v1/orders/{id}/lines/{lineID}
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineID")
	if !ok {
		return
	}
	if err := h.orders.RemoveLine(r.Context(), id, lineID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm handles POST /api/v1/orders/{id}/confirm
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Confirm)
}

// Cancel handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Cancel)
}

// Complete handles POST /api/v1/orders/{id}/complete
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Complete)
}

// ResetToDraft handles POST /api/v1/orders/{id}/reset
func (h *OrderHandler) ResetToDraft(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.ResetToDraft)
}

// Activate handles POST /api/v1/orders/{id}/activate and returns the
// invoices generated by starting the rental.
func (h *OrderHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	invoices, err := h.orders.Activate(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GenerateInvoices handles POST /api/v1/orders/{id}/invoices
func (h *OrderHandler) GenerateInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	invoices, err := h.orders.GenerateInvoices(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoices)
}

// ListInvoices handles GET /api/v1/orders/{id}/invoices
func (h *OrderHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	invoices, err := h.orders.ListInvoices(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// ListInvoicePeriods handles GET /api/v1/invoice-periods
func (h *OrderHandler) ListInvoicePeriods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, invoicing.Labels())
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int32) error) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return int32(id), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP status codes. Validation
// and workflow errors become client errors; everything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		unitErr    *pricing.UnknownDurationUnitError
		periodErr  *invoicing.InvalidInvoicePeriodError
		accountErr *invoicing.MissingIncomeAccountError
		productErr *domain.InvalidProductTypeError
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.As(err, &unitErr), errors.As(err, &periodErr), errors.As(err, &productErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &accountErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
