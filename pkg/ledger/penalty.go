package ledger

import (
	"fmt"

	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// AssessPenalty adds penalty to inst and returns the new total payable
// (amount + penalty - paidAmount). A PAID installment is reopened to PENDING.
// PaidAmount and Payments are never touched.
func AssessPenalty(inst *models.Installment, penalty decimal.Decimal) (decimal.Decimal, error) {
	if !penalty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: penalty must be positive, got %s", ErrInvalidAmount, penalty)
	}
	inst.Penalty = inst.Penalty.Add(penalty)
	if inst.Status == models.InstallmentPaid {
		inst.Status = models.InstallmentPending
	}
	return inst.Payable(), nil
}
