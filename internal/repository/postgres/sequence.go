package postgres

import (
	"context"
	"database/sql"

	"rentorder-backend/internal/sequence"
)

// refSequence hands out order references backed by a database sequence, so
// references stay unique across processes.
type refSequence struct {
	db     *sql.DB
	prefix string
	width  int
}

func NewRefSequence(db *sql.DB, prefix string, width int) sequence.Generator {
	return &refSequence{db: db, prefix: prefix, width: width}
}

func (s *refSequence) Next(ctx context.Context) (string, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('rent_order_ref_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return sequence.Format(s.prefix, s.width, n), nil
}
