package ledger

import (
	"fmt"
	"time"

	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// Allocation is the outcome of spreading one payment over a schedule.
type Allocation struct {
	Applied    decimal.Decimal `json:"appliedAmount"`
	Unadjusted decimal.Decimal `json:"unadjustedAmount"`
	Touched    []int           `json:"touchedSeqs"` // Seqs that received part of the payment, in order
}

// AllocatePayment applies amount to emis starting at position start, in
// ascending order, skipping PAID installments, until the amount runs out or
// the schedule ends. Each installment takes at most its remaining scheduled
// amount; penalties are not part of that cap. Whatever cannot be placed is
// returned as Unadjusted and left for the caller to refund or credit.
//
// emis is modified in place. A start beyond the schedule is a no-op.
func AllocatePayment(emis []models.Installment, start int, amount decimal.Decimal, at time.Time) (Allocation, error) {
	if !amount.IsPositive() {
		return Allocation{}, fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidAmount, amount)
	}
	if start < 0 {
		start = 0
	}

	remaining := amount
	touched := []int{}
	for i := start; i < len(emis) && remaining.IsPositive(); i++ {
		inst := &emis[i]
		if inst.Status == models.InstallmentPaid {
			continue
		}
		capacity := inst.Remaining()
		if !capacity.IsPositive() {
			continue
		}
		applied := decimal.Min(capacity, remaining)

		paidAt := at
		inst.Payments = append(inst.Payments, models.Payment{Amount: applied, Date: at})
		inst.PaidAmount = inst.PaidAmount.Add(applied)
		inst.PaidDate = &paidAt
		remaining = remaining.Sub(applied)
		if inst.PaidAmount.GreaterThanOrEqual(inst.Amount) {
			inst.Status = models.InstallmentPaid
		} else {
			inst.Status = models.InstallmentPartial
		}
		touched = append(touched, inst.Seq)
	}

	return Allocation{
		Applied:    amount.Sub(remaining),
		Unadjusted: remaining,
		Touched:    touched,
	}, nil
}
