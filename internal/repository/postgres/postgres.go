package postgres

import (
	"database/sql"

	"rentorder-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.OrderRepository
	repository.InvoiceRepository
	repository.ProductRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		OrderRepository:   NewOrderRepository(db),
		InvoiceRepository: NewInvoiceRepository(db),
		ProductRepository: NewProductRepository(db),
	}
}
