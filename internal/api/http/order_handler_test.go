package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/invoicing"
	"rentorder-backend/internal/service"
)

// stubOrderService lets each test pin the behavior of exactly the calls it
// exercises.
type stubOrderService struct {
	createOrder func(ctx context.Context, input *service.CreateOrderInput) (*domain.RentOrder, error)
	getOrder    func(ctx context.Context, id int32) (*domain.RentOrder, error)
	addLine     func(ctx context.Context, orderID int32, input *service.AddLineInput) (*domain.RentOrderLine, *domain.QuantityWarning, error)
	confirm     func(ctx context.Context, id int32) error
	generate    func(ctx context.Context, id int32) ([]domain.Invoice, error)
	totals      func(ctx context.Context, id int32) (*service.OrderTotals, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, input *service.CreateOrderInput) (*domain.RentOrder, error) {
	return s.createOrder(ctx, input)
}

func (s *stubOrderService) GetOrder(ctx context.Context, id int32) (*domain.RentOrder, error) {
	return s.getOrder(ctx, id)
}

func (s *stubOrderService) AddLine(ctx context.Context, orderID int32, input *service.AddLineInput) (*domain.RentOrderLine, *domain.QuantityWarning, error) {
	return s.addLine(ctx, orderID, input)
}

func (s *stubOrderService) UpdateLine(context.Context, int32, int32, *service.UpdateLineInput) (*domain.RentOrderLine, error) {
	return nil, nil
}

func (s *stubOrderService) RemoveLine(context.Context, int32, int32) error { return nil }

func (s *stubOrderService) Confirm(ctx context.Context, id int32) error { return s.confirm(ctx, id) }

func (s *stubOrderService) Activate(context.Context, int32) ([]domain.Invoice, error) {
	return nil, nil
}

func (s *stubOrderService) Cancel(context.Context, int32) error       { return nil }
func (s *stubOrderService) Complete(context.Context, int32) error     { return nil }
func (s *stubOrderService) ResetToDraft(context.Context, int32) error { return nil }

func (s *stubOrderService) GenerateInvoices(ctx context.Context, id int32) ([]domain.Invoice, error) {
	return s.generate(ctx, id)
}

func (s *stubOrderService) ListInvoices(context.Context, int32) ([]domain.Invoice, error) {
	return nil, nil
}

func (s *stubOrderService) Totals(ctx context.Context, id int32) (*service.OrderTotals, error) {
	return s.totals(ctx, id)
}

func serve(stub *stubOrderService, method, path, body string) *httptest.ResponseRecorder {
	router := NewRouter(NewOrderHandler(stub))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_Handler(t *testing.T) {
	stub := &stubOrderService{
		createOrder: func(_ context.Context, input *service.CreateOrderInput) (*domain.RentOrder, error) {
			assert.Equal(t, int32(1), input.CustomerID)
			assert.Equal(t, domain.UnitMonth, input.DurationUnit)
			return &domain.RentOrder{ID: 7, Ref: "RO000007", State: domain.OrderStateDraft}, nil
		},
	}

	rec := serve(stub, http.MethodPost, "/api/v1/orders",
		`{"customer_id":1,"date_begin":"2026-09-01","duration":2,"duration_unit":"month"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.RentOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "RO000007", order.Ref)
}

func TestCreateOrder_Handler_BadDate(t *testing.T) {
	rec := serve(&stubOrderService{}, http.MethodPost, "/api/v1/orders",
		`{"customer_id":1,"date_begin":"09/01/2026","duration":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_Handler_InvalidPeriod(t *testing.T) {
	stub := &stubOrderService{
		createOrder: func(context.Context, *service.CreateOrderInput) (*domain.RentOrder, error) {
			return nil, &invoicing.InvalidInvoicePeriodError{Period: "weekly", Reason: "no such invoice period is registered"}
		},
	}

	rec := serve(stub, http.MethodPost, "/api/v1/orders",
		`{"customer_id":1,"date_begin":"2026-09-01","duration":2,"invoice_period":"weekly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "weekly")
}

func TestGetOrder_Handler_NotFound(t *testing.T) {
	stub := &stubOrderService{
		getOrder: func(context.Context, int32) (*domain.RentOrder, error) {
			return nil, sql.ErrNoRows
		},
	}

	rec := serve(stub, http.MethodGet, "/api/v1/orders/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_Handler_BadID(t *testing.T) {
	rec := serve(&stubOrderService{}, http.MethodGet, "/api/v1/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLine_Handler_Warning(t *testing.T) {
	stub := &stubOrderService{
		addLine: func(_ context.Context, orderID int32, input *service.AddLineInput) (*domain.RentOrderLine, *domain.QuantityWarning, error) {
			assert.Equal(t, int32(3), orderID)
			return &domain.RentOrderLine{ID: 1, ProductID: input.ProductID},
				&domain.QuantityWarning{ProductID: input.ProductID, Requested: 5, Available: 3}, nil
		},
	}

	rec := serve(stub, http.MethodPost, "/api/v1/orders/3/lines",
		`{"product_id":10,"quantity":5}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Line    *domain.RentOrderLine `json:"line"`
		Warning string                `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Line)
	assert.Contains(t, resp.Warning, "only 3 are available")
}

func TestConfirm_Handler(t *testing.T) {
	confirmed := false
	stub := &stubOrderService{
		confirm: func(_ context.Context, id int32) error {
			confirmed = true
			assert.Equal(t, int32(3), id)
			return nil
		},
		getOrder: func(context.Context, int32) (*domain.RentOrder, error) {
			return &domain.RentOrder{ID: 3, State: domain.OrderStateConfirmed}, nil
		},
	}

	rec := serve(stub, http.MethodPost, "/api/v1/orders/3/confirm", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, confirmed)
}

func TestGenerateInvoices_Handler(t *testing.T) {
	stub := &stubOrderService{
		generate: func(context.Context, int32) ([]domain.Invoice, error) {
			return []domain.Invoice{{Name: "Invoice 1/2"}, {Name: "Invoice 2/2"}}, nil
		},
	}

	rec := serve(stub, http.MethodPost, "/api/v1/orders/3/invoices", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var invoices []domain.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invoices))
	assert.Len(t, invoices, 2)
}

func TestListInvoicePeriods_Handler(t *testing.T) {
	rec := serve(&stubOrderService{}, http.MethodGet, "/api/v1/invoice-periods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var labels map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Contains(t, labels, "once")
	assert.Contains(t, labels, "monthly")
}
