package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.RentOrder) error {
	query := `INSERT INTO rent_orders (ref, customer_id, state, date_created, date_begin, duration, duration_unit, discount, invoice_period, fiscal_position, description, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		o.Ref, o.CustomerID, o.State, o.DateCreated, o.DateBegin, o.Duration, o.DurationUnit,
		o.Discount, o.InvoicePeriod, o.FiscalPosition, o.Description, o.Notes, now, now,
	).Scan(&o.ID)
}

const orderColumns = `id, ref, customer_id, state, date_created, date_begin, duration, duration_unit, discount, invoice_period, fiscal_position, description, notes, created_on, updated_on`

func (r *orderRepository) scanOrder(row interface{ Scan(...interface{}) error }) (*domain.RentOrder, error) {
	o := &domain.RentOrder{}
	err := row.Scan(&o.ID, &o.Ref, &o.CustomerID, &o.State, &o.DateCreated, &o.DateBegin,
		&o.Duration, &o.DurationUnit, &o.Discount, &o.InvoicePeriod, &o.FiscalPosition,
		&o.Description, &o.Notes, &o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.RentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rent_orders WHERE id = $1`
	o, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByRef(ctx context.Context, ref string) (*domain.RentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rent_orders WHERE ref = $1`
	o, err := r.scanOrder(r.db.QueryRowContext(ctx, query, ref))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *domain.RentOrder) error {
	query := `UPDATE rent_orders SET customer_id=$1, date_begin=$2, duration=$3, duration_unit=$4, discount=$5, invoice_period=$6, fiscal_position=$7, description=$8, notes=$9, updated_on=$10 WHERE id=$11`
	_, err := r.db.ExecContext(ctx, query, o.CustomerID, o.DateBegin, o.Duration, o.DurationUnit,
		o.Discount, o.InvoicePeriod, o.FiscalPosition, o.Description, o.Notes, time.Now(), o.ID)
	return err
}

func (r *orderRepository) UpdateState(ctx context.Context, id int32, state domain.OrderState) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rent_orders SET state=$1, updated_on=$2 WHERE id=$3`, state, time.Now(), id)
	return err
}

func (r *orderRepository) ListByState(ctx context.Context, state domain.OrderState) ([]domain.RentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM rent_orders WHERE state = $1 ORDER BY date_created DESC, ref DESC`
	rows, err := r.db.QueryContext(ctx, query, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.RentOrder
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, o *domain.RentOrder) error {
	query := `SELECT id, order_id, product_id, description, product_type, quantity, unit_price, price_unit, discount, taxes, notes
	          FROM rent_order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Lines = nil
	for rows.Next() {
		var line domain.RentOrderLine
		var taxes []byte
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Description,
			&line.ProductType, &line.Quantity, &line.UnitPrice, &line.PriceUnit,
			&line.Discount, &taxes, &line.Notes); err != nil {
			return err
		}
		if len(taxes) > 0 {
			if err := json.Unmarshal(taxes, &line.Taxes); err != nil {
				return fmt.Errorf("decoding taxes of line %d: %w", line.ID, err)
			}
		}
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

func (r *orderRepository) AddLine(ctx context.Context, line *domain.RentOrderLine) error {
	taxes, err := json.Marshal(line.Taxes)
	if err != nil {
		return err
	}
	query := `INSERT INTO rent_order_lines (order_id, product_id, description, product_type, quantity, unit_price, price_unit, discount, taxes, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRowContext(ctx, query, line.OrderID, line.ProductID, line.Description,
		line.ProductType, line.Quantity, line.UnitPrice, line.PriceUnit, line.Discount,
		taxes, line.Notes).Scan(&line.ID)
}

func (r *orderRepository) UpdateLine(ctx context.Context, line *domain.RentOrderLine) error {
	taxes, err := json.Marshal(line.Taxes)
	if err != nil {
		return err
	}
	query := `UPDATE rent_order_lines SET description=$1, quantity=$2, unit_price=$3, price_unit=$4, discount=$5, taxes=$6, notes=$7 WHERE id=$8`
	_, err = r.db.ExecContext(ctx, query, line.Description, line.Quantity, line.UnitPrice,
		line.PriceUnit, line.Discount, taxes, line.Notes, line.ID)
	return err
}

func (r *orderRepository) DeleteLine(ctx context.Context, lineID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rent_order_lines WHERE id = $1`, lineID)
	return err
}
