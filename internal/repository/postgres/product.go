package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, stock_type, can_be_rent, sale_ok, rent_price, rent_price_unit, standard_price, list_price, income_account, category_income_account, qty_available, taxes`

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	taxes, err := json.Marshal(p.Taxes)
	if err != nil {
		return err
	}
	query := `INSERT INTO products (name, stock_type, can_be_rent, sale_ok, rent_price, rent_price_unit, standard_price, list_price, income_account, category_income_account, qty_available, taxes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.Name, p.StockType, p.CanBeRent, p.SaleOK,
		p.RentPrice, p.RentPriceUnit, p.StandardPrice, p.ListPrice,
		p.IncomeAccount, p.CategoryIncomeAccount, p.QtyAvailable, taxes).Scan(&p.ID)
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	p := &domain.Product{}
	var taxes []byte
	err := row.Scan(&p.ID, &p.Name, &p.StockType, &p.CanBeRent, &p.SaleOK, &p.RentPrice,
		&p.RentPriceUnit, &p.StandardPrice, &p.ListPrice, &p.IncomeAccount,
		&p.CategoryIncomeAccount, &p.QtyAvailable, &taxes)
	if err != nil {
		return nil, err
	}
	if len(taxes) > 0 {
		if err := json.Unmarshal(taxes, &p.Taxes); err != nil {
			return nil, fmt.Errorf("decoding taxes of product %d: %w", p.ID, err)
		}
	}
	return p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int32) (map[int32]*domain.Product, error) {
	if len(ids) == 0 {
		return map[int32]*domain.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[int32]*domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
