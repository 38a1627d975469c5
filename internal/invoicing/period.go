package invoicing

import (
	"fmt"
	"math"
	"time"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/pricing"
)

// Descriptor describes one invoice to emit: its date, the rental period it
// covers, its position in the sequence and the divisor spreading the
// whole-duration price across the sequence. Descriptors are transient; they
// are produced by a period strategy and consumed immediately by Materialize.
type Descriptor struct {
	Date        time.Time
	PeriodBegin time.Time
	PeriodEnd   time.Time
	Sequence    int
	Count       int
	PriceFactor float64
}

// GenerateFunc produces the invoice descriptors for an order snapshot.
// Strategies are pure functions; they never touch persistence.
type GenerateFunc func(order *domain.RentOrder) ([]Descriptor, error)

// InvalidInvoicePeriodError reports a cadence whose preconditions the order
// violates, or a period name no strategy is registered under. It is fatal
// for that order's generation pass.
type InvalidInvoicePeriodError struct {
	Period string
	Reason string
}

func (e *InvalidInvoicePeriodError) Error() string {
	return fmt.Sprintf("invoice period %q: %s", e.Period, e.Reason)
}

type periodEntry struct {
	label    string
	generate GenerateFunc
}

// periods is populated during package initialization and read-only
// afterwards, so lookups need no locking.
var periods = map[string]periodEntry{}

// Register adds a named invoice period strategy. Registration happens once
// at startup; registering the same name twice is a programming error.
func Register(name, label string, fn GenerateFunc) {
	if _, exists := periods[name]; exists {
		panic(fmt.Sprintf("invoicing: period %q registered twice", name))
	}
	periods[name] = periodEntry{label: label, generate: fn}
}

// Strategy resolves a period name. An unregistered name is an error, never
// a silent fallback to another cadence.
func Strategy(name string) (GenerateFunc, error) {
	entry, ok := periods[name]
	if !ok {
		return nil, &InvalidInvoicePeriodError{Period: name, Reason: "no such invoice period is registered"}
	}
	return entry.generate, nil
}

// Registered reports whether a period name resolves to a strategy.
func Registered(name string) bool {
	_, ok := periods[name]
	return ok
}

// Labels returns the registered period names and their human-readable
// labels.
func Labels() map[string]string {
	out := make(map[string]string, len(periods))
	for name, entry := range periods {
		out[name] = entry.label
	}
	return out
}

// Schedule runs the order's invoice period strategy.
func Schedule(order *domain.RentOrder) ([]Descriptor, error) {
	fn, err := Strategy(order.InvoicePeriod)
	if err != nil {
		return nil, err
	}
	return fn(order)
}

func init() {
	Register("once", "Once, at the beginning of the rental", oncePeriod)
	Register("monthly", "Every month", monthlyPeriod)
}

// oncePeriod emits a single invoice spanning the whole order.
func oncePeriod(order *domain.RentOrder) ([]Descriptor, error) {
	return []Descriptor{{
		Date:        order.DateBegin,
		PeriodBegin: order.DateBegin,
		PeriodEnd:   order.DateEnd(),
		Sequence:    1,
		Count:       1,
		PriceFactor: 1.0,
	}}, nil
}

// monthlyPeriod emits one invoice per calendar month of the rental. The
// line's duration price covers the whole order, so year-unit orders divide
// it by the number of monthly periods; month-unit orders already carry a
// per-period price.
func monthlyPeriod(order *domain.RentOrder) ([]Descriptor, error) {
	if order.DurationUnit != domain.UnitMonth && order.DurationUnit != domain.UnitYear {
		return nil, &InvalidInvoicePeriodError{
			Period: "monthly",
			Reason: fmt.Sprintf("requires a month or year duration, order uses %q", order.DurationUnit),
		}
	}

	months, err := pricing.ConvertDuration(float64(order.Duration), order.DurationUnit, domain.UnitMonth)
	if err != nil {
		return nil, err
	}
	n := int(math.Round(months))
	if n < 2 {
		return nil, &InvalidInvoicePeriodError{
			Period: "monthly",
			Reason: fmt.Sprintf("order spans %d month(s), use the \"once\" period instead", n),
		}
	}

	factor := 1.0
	if order.DurationUnit == domain.UnitYear {
		factor = 12 * float64(order.Duration)
	}

	descriptors := make([]Descriptor, 0, n)
	begin := order.DateBegin
	for i := 1; i <= n; i++ {
		end := begin.AddDate(0, 1, 0).AddDate(0, 0, -1)
		descriptors = append(descriptors, Descriptor{
			Date:        begin,
			PeriodBegin: begin,
			PeriodEnd:   end,
			Sequence:    i,
			Count:       n,
			PriceFactor: factor,
		})
		begin = begin.AddDate(0, 1, 0)
	}
	return descriptors, nil
}
