package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

// InstallmentRow is one installment flattened together with its customer.
type InstallmentRow struct {
	CustomerID uuid.UUID                `json:"customerId"`
	Seq        int                      `json:"seq"`
	Name       string                   `json:"name"`
	Contact    string                   `json:"contact"`
	Model      string                   `json:"model"`
	Amount     decimal.Decimal          `json:"amount"`
	PaidAmount decimal.Decimal          `json:"paidAmount"`
	Penalty    decimal.Decimal          `json:"penalty"`
	Payable    decimal.Decimal          `json:"payable"`
	DueDate    time.Time                `json:"dueDate"`
	PaidDate   *time.Time               `json:"paidDate"`
	Status     models.InstallmentStatus `json:"status"`
	Overdue    bool                     `json:"overdue"`
	DueToday   bool                     `json:"dueToday"`
	Payments   []models.Payment         `json:"payments"`
}

// InstallmentRows flattens the installments of customers that match search
// and fall into bucket f, preserving customer order then schedule order.
func InstallmentRows(customers []*models.Customer, f Filter, search string, today time.Time) []InstallmentRow {
	rows := []InstallmentRow{}
	for _, c := range customers {
		if !MatchesSearch(c, search) {
			continue
		}
		for _, inst := range c.EMIs {
			cl := Classify(inst, today)
			if !cl.Matches(f) {
				continue
			}
			payments := inst.Payments
			if payments == nil {
				payments = []models.Payment{}
			}
			rows = append(rows, InstallmentRow{
				CustomerID: c.ID,
				Seq:        inst.Seq,
				Name:       c.Name,
				Contact:    c.Contact,
				Model:      c.Model,
				Amount:     inst.Amount,
				PaidAmount: inst.PaidAmount,
				Penalty:    inst.Penalty,
				Payable:    inst.Payable(),
				DueDate:    inst.DueDate,
				PaidDate:   inst.PaidDate,
				Status:     cl.Status,
				Overdue:    cl.Overdue,
				DueToday:   cl.DueToday,
				Payments:   payments,
			})
		}
	}
	return rows
}
