package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rentorder-backend/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.RentOrder) error
	GetByID(ctx context.Context, id int32) (*domain.RentOrder, error)
	GetByRef(ctx context.Context, ref string) (*domain.RentOrder, error)
	Update(ctx context.Context, order *domain.RentOrder) error
	UpdateState(ctx context.Context, id int32, state domain.OrderState) error
	ListByState(ctx context.Context, state domain.OrderState) ([]domain.RentOrder, error)

	// Lines are created and removed only while the order is draft; the
	// service layer enforces that.
	AddLine(ctx context.Context, line *domain.RentOrderLine) error
	UpdateLine(ctx context.Context, line *domain.RentOrderLine) error
	DeleteLine(ctx context.Context, lineID int32) error
}

type InvoiceRepository interface {
	// Create persists the invoice header and its lines in one transaction.
	// When an invoice for the same order and date already exists, nothing
	// is inserted and Create returns (false, nil); this is what makes
	// invoice generation idempotent under re-runs.
	Create(ctx context.Context, invoice *domain.Invoice) (created bool, err error)
	ListByOrderRef(ctx context.Context, ref string) ([]domain.Invoice, error)
	ExistsForDate(ctx context.Context, ref string, date time.Time) (bool, error)
	UpdateState(ctx context.Context, id uuid.UUID, state domain.InvoiceState) error
	DeleteDraftsByOrderRef(ctx context.Context, ref string) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int32) (map[int32]*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}
