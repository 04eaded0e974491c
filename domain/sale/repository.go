package sale

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the persistence contract for the Sale aggregate. Create and
// Update are distinct operations: Update must fail with
// ErrConcurrentModification when the stored version no longer matches the
// aggregate's, and both must call IncrementVersionForSave on success.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	FindByID(ctx context.Context, id string) (*Sale, error)
	FindBySaleNumber(ctx context.Context, saleNumber string) (*Sale, error)
	FindAll(ctx context.Context, page, size int) ([]*Sale, error)
	FindFiltered(ctx context.Context, f Filters, page, size int) ([]*Sale, error)
	CountFiltered(ctx context.Context, f Filters) (int64, error)
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// Filters narrows sale listings. Zero values mean "no constraint".
// Customer and Branch match as case-insensitive substrings; date bounds are
// widened to whole days so a caller passing 2026-09-01 for both bounds gets
// every sale on that day.
type Filters struct {
	Customer       string
	Branch         string
	Status         string
	MinDate        *time.Time
	MaxDate        *time.Time
	MinTotalAmount *decimal.Decimal
	MaxTotalAmount *decimal.Decimal
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f.Customer == "" && f.Branch == "" && f.Status == "" &&
		f.MinDate == nil && f.MaxDate == nil &&
		f.MinTotalAmount == nil && f.MaxTotalAmount == nil
}

// DateLowerBound returns the inclusive lower bound, snapped to the start of
// the day in UTC, or nil.
func (f Filters) DateLowerBound() *time.Time {
	if f.MinDate == nil {
		return nil
	}
	t := startOfDayUTC(*f.MinDate)
	return &t
}

// DateUpperBound returns the exclusive upper bound, the start of the day
// after MaxDate in UTC, or nil. Compare with < (or Before).
func (f Filters) DateUpperBound() *time.Time {
	if f.MaxDate == nil {
		return nil
	}
	t := startOfDayUTC(*f.MaxDate).AddDate(0, 0, 1)
	return &t
}

func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Matches reports whether the sale satisfies every set filter. It is the
// reference semantics for FindFiltered; SQL-backed repositories translate
// the same conditions into WHERE clauses.
func (f Filters) Matches(s *Sale) bool {
	if f.Customer != "" && !strings.Contains(strings.ToLower(s.Customer()), strings.ToLower(f.Customer)) {
		return false
	}
	if f.Branch != "" && !strings.Contains(strings.ToLower(s.Branch()), strings.ToLower(f.Branch)) {
		return false
	}
	if f.Status != "" && string(s.Status()) != f.Status {
		return false
	}
	if lb := f.DateLowerBound(); lb != nil && s.SaleDate().Before(*lb) {
		return false
	}
	if ub := f.DateUpperBound(); ub != nil && !s.SaleDate().Before(*ub) {
		return false
	}
	if f.MinTotalAmount != nil && s.TotalAmount().LessThan(*f.MinTotalAmount) {
		return false
	}
	if f.MaxTotalAmount != nil && s.TotalAmount().GreaterThan(*f.MaxTotalAmount) {
		return false
	}
	return true
}
