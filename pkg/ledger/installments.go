package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// PaymentResult reports how a payment was spread and the installments it touched.
type PaymentResult struct {
	CustomerID   uuid.UUID            `json:"customerId"`
	Allocation                        // appliedAmount, unadjustedAmount, touchedSeqs
	Installments []models.Installment `json:"installments"`
}

type PenaltyResult struct {
	CustomerID   uuid.UUID                `json:"customerId"`
	Seq          int                      `json:"seq"`
	PenaltyTotal decimal.Decimal          `json:"penaltyTotal"`
	TotalPayable decimal.Decimal          `json:"totalPayable"`
	Status       models.InstallmentStatus `json:"status"`
}

// RecordPayment spreads amount over the customer's schedule starting at the
// installment with the given seq. Any part that exceeds the open balance is
// returned as unadjusted rather than stored.
func (l *Ledger) RecordPayment(ctx context.Context, actor models.Principal, id uuid.UUID, seq int, amount decimal.Decimal) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment must be positive, got %s", ErrInvalidAmount, amount)
	}

	var res PaymentResult
	_, err := l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		if !canAccess(actor, c) {
			return false, fmt.Errorf("%w: customer %s", ErrForbidden, id)
		}
		idx := c.InstallmentIndex(seq)
		if idx < 0 {
			return false, installmentNotFound(id, seq)
		}
		alloc, err := AllocatePayment(c.EMIs, idx, amount, l.now())
		if err != nil {
			return false, err
		}
		res = PaymentResult{CustomerID: id, Allocation: alloc, Installments: touchedInstallments(c, alloc.Touched)}
		return len(alloc.Touched) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("payment recorded", "customer", id, "seq", seq,
		"applied", res.Applied.String(), "unadjusted", res.Unadjusted.String(), "touched", res.Touched)
	return &res, nil
}

// SettleInstallment pays off the remaining scheduled amount of one
// installment and nothing else.
func (l *Ledger) SettleInstallment(ctx context.Context, actor models.Principal, id uuid.UUID, seq int) (*PaymentResult, error) {
	var res PaymentResult
	_, err := l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		if !canAccess(actor, c) {
			return false, fmt.Errorf("%w: customer %s", ErrForbidden, id)
		}
		idx := c.InstallmentIndex(seq)
		if idx < 0 {
			return false, installmentNotFound(id, seq)
		}
		inst := &c.EMIs[idx]
		if inst.Status == models.InstallmentPaid {
			return false, fmt.Errorf("installment %d of customer %s: %w", seq, id, ErrAlreadyPaid)
		}
		remaining := inst.Remaining()
		if !remaining.IsPositive() {
			// Reopened by a penalty after the scheduled amount was already covered.
			at := l.now()
			inst.Status = models.InstallmentPaid
			inst.PaidDate = &at
			res = PaymentResult{
				CustomerID:   id,
				Allocation:   Allocation{Applied: decimal.Zero, Unadjusted: decimal.Zero, Touched: []int{seq}},
				Installments: []models.Installment{*inst},
			}
			return true, nil
		}
		alloc, err := AllocatePayment(c.EMIs[idx:idx+1], 0, remaining, l.now())
		if err != nil {
			return false, err
		}
		res = PaymentResult{CustomerID: id, Allocation: alloc, Installments: touchedInstallments(c, alloc.Touched)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("installment settled", "customer", id, "seq", seq, "applied", res.Applied.String())
	return &res, nil
}

// AddPenalty adds an overdue surcharge to one installment.
func (l *Ledger) AddPenalty(ctx context.Context, actor models.Principal, id uuid.UUID, seq int, penalty decimal.Decimal) (*PenaltyResult, error) {
	if !penalty.IsPositive() {
		return nil, fmt.Errorf("%w: penalty must be positive, got %s", ErrInvalidAmount, penalty)
	}

	var res PenaltyResult
	_, err := l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		if !canAccess(actor, c) {
			return false, fmt.Errorf("%w: customer %s", ErrForbidden, id)
		}
		idx := c.InstallmentIndex(seq)
		if idx < 0 {
			return false, installmentNotFound(id, seq)
		}
		inst := &c.EMIs[idx]
		payable, err := AssessPenalty(inst, penalty)
		if err != nil {
			return false, err
		}
		res = PenaltyResult{
			CustomerID:   id,
			Seq:          seq,
			PenaltyTotal: inst.Penalty,
			TotalPayable: payable,
			Status:       inst.Status,
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("penalty added", "customer", id, "seq", seq, "penalty", penalty.String(), "payable", res.TotalPayable.String())
	return &res, nil
}

// DeleteInstallment removes one installment. The remaining installments keep
// their seq, so references held by clients stay valid.
func (l *Ledger) DeleteInstallment(ctx context.Context, id uuid.UUID, seq int) error {
	_, err := l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		idx := c.InstallmentIndex(seq)
		if idx < 0 {
			return false, installmentNotFound(id, seq)
		}
		c.EMIs = append(c.EMIs[:idx], c.EMIs[idx+1:]...)
		return true, nil
	})
	if err != nil {
		return err
	}
	l.logger.Info("installment deleted", "customer", id, "seq", seq)
	return nil
}

func touchedInstallments(c *models.Customer, seqs []int) []models.Installment {
	out := make([]models.Installment, 0, len(seqs))
	for _, s := range seqs {
		if i := c.InstallmentIndex(s); i >= 0 {
			out = append(out, c.EMIs[i])
		}
	}
	return out
}
