package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleUser:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPartial InstallmentStatus = "PARTIAL"
	InstallmentPaid    InstallmentStatus = "PAID"
)

// Principal identifies an authenticated caller, and the creator of a customer record.
type Principal struct {
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
}

// Payment is one append-only entry in an installment's payment history.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type Installment struct {
	Seq        int               `json:"seq"` // Stable ordinal assigned at schedule generation; never renumbered
	Amount     decimal.Decimal   `json:"amount"`
	PaidAmount decimal.Decimal   `json:"paidAmount"`
	Penalty    decimal.Decimal   `json:"penalty"`
	DueDate    time.Time         `json:"dueDate"`
	PaidDate   *time.Time        `json:"paidDate"` // Last payment touching this installment
	Status     InstallmentStatus `json:"status"`
	Payments   []Payment         `json:"payments"`
}

// Remaining is the unpaid part of the scheduled amount, penalties excluded.
func (i Installment) Remaining() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// Payable is what the customer still owes on this installment, penalties included.
func (i Installment) Payable() decimal.Decimal {
	return i.Amount.Add(i.Penalty).Sub(i.PaidAmount)
}

type Customer struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	FatherName      string          `json:"fatherName"`
	Address         string          `json:"address"`
	Contact         string          `json:"contact"`
	AlternateNumber string          `json:"alternateNumber"`
	Model           string          `json:"model"`
	IMEI            string          `json:"imei"`
	Supplier        string          `json:"supplier"`
	SupplierNumber  string          `json:"supplierNumber"`
	Price           decimal.Decimal `json:"price"`
	DownPayment     decimal.Decimal `json:"downPayment"`
	EMIAmount       decimal.Decimal `json:"emiAmount"`
	Status          ApprovalStatus  `json:"status"`
	CreatedBy       Principal       `json:"createdBy"`
	EMIs            []Installment   `json:"emis"`
	Version         int64           `json:"version"` // Optimistic lock counter, bumped on every update
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// InstallmentIndex returns the position of the installment with the given
// seq, or -1 if the customer has no such installment.
func (c *Customer) InstallmentIndex(seq int) int {
	for i := range c.EMIs {
		if c.EMIs[i].Seq == seq {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so a mutation can be computed without touching c.
func (c *Customer) Clone() *Customer {
	out := *c
	if c.EMIs != nil {
		out.EMIs = make([]Installment, len(c.EMIs))
		for i, inst := range c.EMIs {
			if inst.PaidDate != nil {
				d := *inst.PaidDate
				inst.PaidDate = &d
			}
			if inst.Payments != nil {
				inst.Payments = append([]Payment(nil), inst.Payments...)
			}
			out.EMIs[i] = inst
		}
	}
	return &out
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal returns the caller identity carried in tokens for this user.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}
