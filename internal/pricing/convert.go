package pricing

import (
	"fmt"

	"rentorder-backend/internal/domain"
)

// The conversion factors between duration units are fixed by convention, not
// derived from calendar arithmetic: a month is 30 days, a year is 365 days
// and 12 months. The pairs are therefore not mutually consistent (30*12 !=
// 365); callers that need calendar-accurate date boundaries use time.AddDate
// instead of this table.
//
// factors[from][to] converts a price per from-unit into a price per to-unit:
// 1/day becomes 30/month.
var factors = map[domain.DurationUnit]map[domain.DurationUnit]float64{
	domain.UnitDay: {
		domain.UnitDay:   1,
		domain.UnitMonth: 30,
		domain.UnitYear:  365,
	},
	domain.UnitMonth: {
		domain.UnitDay:   1.0 / 30,
		domain.UnitMonth: 1,
		domain.UnitYear:  12,
	},
	domain.UnitYear: {
		domain.UnitDay:   1.0 / 365,
		domain.UnitMonth: 1.0 / 12,
		domain.UnitYear:  1,
	},
}

// UnknownDurationUnitError indicates a unit outside the fixed table. It is a
// data-integrity problem upstream and must never be caught and defaulted.
type UnknownDurationUnitError struct {
	Unit domain.DurationUnit
}

func (e *UnknownDurationUnitError) Error() string {
	return fmt.Sprintf("unknown duration unit %q", e.Unit)
}

// Convert expresses a per-unit price in another duration unit. A price of
// 1/day converts to 30/month and 365/year.
func Convert(amount float64, from, to domain.DurationUnit) (float64, error) {
	row, ok := factors[from]
	if !ok {
		return 0, &UnknownDurationUnitError{Unit: from}
	}
	factor, ok := row[to]
	if !ok {
		return 0, &UnknownDurationUnitError{Unit: to}
	}
	return amount * factor, nil
}

// ConvertDuration expresses a duration quantity in another unit. It is the
// inverse direction of Convert over the same table: 1 year is 12 months,
// 2 months are 60 days.
func ConvertDuration(amount float64, from, to domain.DurationUnit) (float64, error) {
	return Convert(amount, to, from)
}
