package ledger

import (
	"time"

	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// startOfDay returns midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// GenerateSchedule builds months installments of amount each. Installment i
// is due firstDue advanced by i calendar months; day-of-month overflow rolls
// into the next month the way time.AddDate does. Due dates are stored at
// midnight in firstDue's location. months <= 0 yields an empty schedule.
func GenerateSchedule(amount decimal.Decimal, months int, firstDue time.Time) []models.Installment {
	if months <= 0 {
		return []models.Installment{}
	}
	base := startOfDay(firstDue, firstDue.Location())
	emis := make([]models.Installment, months)
	for i := range emis {
		emis[i] = models.Installment{
			Seq:        i,
			Amount:     amount,
			PaidAmount: decimal.Zero,
			Penalty:    decimal.Zero,
			DueDate:    base.AddDate(0, i, 0),
			Status:     models.InstallmentPending,
			Payments:   []models.Payment{},
		}
	}
	return emis
}
