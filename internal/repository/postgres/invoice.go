package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/repository"
)

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the header and lines in one transaction. The unique index
// on (order_ref, invoice_date) makes re-runs of invoice generation skip
// dates that already have an invoice instead of duplicating them.
func (r *invoiceRepository) Create(ctx context.Context, inv *domain.Invoice) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `INSERT INTO invoices (id, order_ref, name, state, invoice_date, period_begin, period_end, sequence, count, customer_id, comment, amount_untaxed, amount_tax, amount_total, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	          ON CONFLICT (order_ref, invoice_date) DO NOTHING RETURNING id`
	var id uuid.UUID
	err = tx.QueryRowContext(ctx, query,
		inv.ID, inv.OrderRef, inv.Name, inv.State, inv.Date, inv.PeriodBegin, inv.PeriodEnd,
		inv.Sequence, inv.Count, inv.CustomerID, inv.Comment,
		inv.AmountUntaxed, inv.AmountTax, inv.AmountTotal, time.Now(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// An invoice already exists for this order and date.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		taxes, err := json.Marshal(line.Taxes)
		if err != nil {
			return false, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO invoice_lines (id, invoice_id, product_id, description, account, unit_price, quantity, discount, taxes, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			line.ID, inv.ID, line.ProductID, line.Description, line.Account,
			line.UnitPrice, line.Quantity, line.Discount, taxes, line.Notes)
		if err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *invoiceRepository) ListByOrderRef(ctx context.Context, ref string) ([]domain.Invoice, error) {
	query := `SELECT id, order_ref, name, state, invoice_date, period_begin, period_end, sequence, count, customer_id, comment, amount_untaxed, amount_tax, amount_total, created_on
	          FROM invoices WHERE order_ref = $1 ORDER BY invoice_date`
	rows, err := r.db.QueryContext(ctx, query, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.OrderRef, &inv.Name, &inv.State, &inv.Date,
			&inv.PeriodBegin, &inv.PeriodEnd, &inv.Sequence, &inv.Count, &inv.CustomerID,
			&inv.Comment, &inv.AmountUntaxed, &inv.AmountTax, &inv.AmountTotal, &inv.CreatedOn); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range invoices {
		if err := r.loadLines(ctx, &invoices[i]); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *invoiceRepository) loadLines(ctx context.Context, inv *domain.Invoice) error {
	query := `SELECT id, invoice_id, product_id, description, account, unit_price, quantity, discount, taxes, notes
	          FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.InvoiceLine
		var taxes []byte
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ProductID, &line.Description,
			&line.Account, &line.UnitPrice, &line.Quantity, &line.Discount, &taxes, &line.Notes); err != nil {
			return err
		}
		if len(taxes) > 0 {
			if err := json.Unmarshal(taxes, &line.Taxes); err != nil {
				return fmt.Errorf("decoding taxes of invoice line %s: %w", line.ID, err)
			}
		}
		inv.Lines = append(inv.Lines, line)
	}
	return rows.Err()
}

func (r *invoiceRepository) ExistsForDate(ctx context.Context, ref string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE order_ref = $1 AND invoice_date = $2)`,
		ref, date).Scan(&exists)
	return exists, err
}

func (r *invoiceRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.InvoiceState) error {
	_, err := r.db.ExecContext(ctx, `UPDATE invoices SET state=$1 WHERE id=$2`, state, id)
	return err
}

func (r *invoiceRepository) DeleteDraftsByOrderRef(ctx context.Context, ref string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM invoice_lines WHERE invoice_id IN (SELECT id FROM invoices WHERE order_ref = $1 AND state = $2)`,
		ref, domain.InvoiceStateDraft)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM invoices WHERE order_ref = $1 AND state = $2`, ref, domain.InvoiceStateDraft)
	if err != nil {
		return err
	}
	return tx.Commit()
}
