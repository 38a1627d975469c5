package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentorder-backend/internal/domain"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		from   domain.DurationUnit
		to     domain.DurationUnit
		want   float64
	}{
		{"day to month", 100, domain.UnitDay, domain.UnitMonth, 3000},
		{"day to year", 1, domain.UnitDay, domain.UnitYear, 365},
		{"month to year", 1, domain.UnitMonth, domain.UnitYear, 12},
		{"month to day", 30, domain.UnitMonth, domain.UnitDay, 1},
		{"year to day", 365, domain.UnitYear, domain.UnitDay, 1},
		{"year to month", 12, domain.UnitYear, domain.UnitMonth, 1},
		{"identity day", 7, domain.UnitDay, domain.UnitDay, 7},
		{"identity month", 7, domain.UnitMonth, domain.UnitMonth, 7},
		{"identity year", 7, domain.UnitYear, domain.UnitYear, 7},
		{"zero amount", 0, domain.UnitDay, domain.UnitYear, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to)
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvert_UnknownUnit(t *testing.T) {
	_, err := Convert(1, "week", domain.UnitDay)
	var unitErr *UnknownDurationUnitError
	assert.True(t, errors.As(err, &unitErr))
	assert.Equal(t, domain.DurationUnit("week"), unitErr.Unit)

	_, err = Convert(1, domain.UnitDay, "hour")
	assert.True(t, errors.As(err, &unitErr))
	assert.Equal(t, domain.DurationUnit("hour"), unitErr.Unit)
}

// The factors are conventions, not calendar facts, so day->month->year does
// not round-trip with day->year. The table values themselves are the
// contract.
func TestConvert_FactorsAreNotMutuallyConsistent(t *testing.T) {
	viaMonth, err := Convert(1, domain.UnitDay, domain.UnitMonth)
	assert.NoError(t, err)
	viaMonth, err = Convert(viaMonth, domain.UnitMonth, domain.UnitYear)
	assert.NoError(t, err)

	direct, err := Convert(1, domain.UnitDay, domain.UnitYear)
	assert.NoError(t, err)

	assert.Equal(t, 360.0, viaMonth)
	assert.Equal(t, 365.0, direct)
}

func TestConvertDuration(t *testing.T) {
	// Duration conversion runs the table in the opposite direction of
	// price conversion: one year of rental is twelve months.
	got, err := ConvertDuration(1, domain.UnitYear, domain.UnitMonth)
	assert.NoError(t, err)
	assert.Equal(t, 12.0, got)

	got, err = ConvertDuration(2, domain.UnitMonth, domain.UnitDay)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, got)

	got, err = ConvertDuration(30, domain.UnitDay, domain.UnitMonth)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, got)
}
