package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/mcclellann/emiLedger/pkg/models"
)

// Classification is the status view of one installment on a given day.
// Every listing, statistic and export derives its buckets from it.
type Classification struct {
	Status   models.InstallmentStatus `json:"status"`
	Overdue  bool                     `json:"overdue"`
	DueToday bool                     `json:"dueToday"`
}

// Classify compares inst's due date with today at day granularity, in
// today's location.
func Classify(inst models.Installment, today time.Time) Classification {
	loc := today.Location()
	due := startOfDay(inst.DueDate, loc)
	day := startOfDay(today, loc)
	open := inst.Status != models.InstallmentPaid
	return Classification{
		Status:   inst.Status,
		Overdue:  open && due.Before(day),
		DueToday: open && due.Equal(day),
	}
}

// Filter selects a bucket of installments for list views.
type Filter string

const (
	FilterTotal    Filter = "total"
	FilterPaid     Filter = "paid"
	FilterPartial  Filter = "partial"
	FilterPending  Filter = "pending"
	FilterDueToday Filter = "due-today"
	FilterOverdue  Filter = "overdue"
)

// ParseFilter accepts the canonical names plus the "all" and "dueToday"
// spellings older clients send. Empty means total.
func ParseFilter(s string) (Filter, error) {
	switch strings.TrimSpace(s) {
	case "", "total", "all":
		return FilterTotal, nil
	case "paid":
		return FilterPaid, nil
	case "partial":
		return FilterPartial, nil
	case "pending":
		return FilterPending, nil
	case "due-today", "dueToday":
		return FilterDueToday, nil
	case "overdue":
		return FilterOverdue, nil
	}
	return "", fmt.Errorf("%w: unknown filter %q", ErrValidation, s)
}

// Matches reports whether the classified installment belongs to bucket f.
// Pending covers PENDING and PARTIAL installments that are not yet overdue,
// so pending and overdue never overlap.
func (c Classification) Matches(f Filter) bool {
	switch f {
	case FilterTotal:
		return true
	case FilterPaid:
		return c.Status == models.InstallmentPaid
	case FilterPartial:
		return c.Status == models.InstallmentPartial
	case FilterPending:
		return c.Status != models.InstallmentPaid && !c.Overdue
	case FilterDueToday:
		return c.DueToday
	case FilterOverdue:
		return c.Overdue
	}
	return false
}
