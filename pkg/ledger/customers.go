package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
	"github.com/shopspring/decimal"
)

// NewCustomer carries the registration form for a customer and their plan.
type NewCustomer struct {
	Name            string
	FatherName      string
	Address         string
	Contact         string
	AlternateNumber string
	Model           string
	IMEI            string
	Supplier        string
	SupplierNumber  string
	Price           decimal.Decimal
	DownPayment     decimal.Decimal
	EMIAmount       decimal.Decimal
	EMIMonths       int
	FirstEMIDate    time.Time
}

func (n *NewCustomer) normalize() {
	for _, s := range []*string{&n.Name, &n.FatherName, &n.Address, &n.Contact, &n.AlternateNumber,
		&n.Model, &n.IMEI, &n.Supplier, &n.SupplierNumber} {
		*s = strings.TrimSpace(*s)
	}
}

func (n NewCustomer) validate() error {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"name", n.Name},
		{"fatherName", n.FatherName},
		{"contact", n.Contact},
		{"model", n.Model},
		{"imei", n.IMEI},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if n.FirstEMIDate.IsZero() {
		missing = append(missing, "firstEmiDate")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if n.EMIMonths <= 0 {
		return fmt.Errorf("%w: emiMonths must be positive, got %d", ErrValidation, n.EMIMonths)
	}
	if !n.EMIAmount.IsPositive() {
		return fmt.Errorf("%w: emiAmount must be positive, got %s", ErrInvalidAmount, n.EMIAmount)
	}
	if n.Price.IsNegative() || n.DownPayment.IsNegative() {
		return fmt.Errorf("%w: price and downPayment cannot be negative", ErrInvalidAmount)
	}
	return nil
}

// CreateCustomer registers a customer and generates the EMI schedule.
// Records created by an admin are approved immediately; an agent's wait
// for approval.
func (l *Ledger) CreateCustomer(ctx context.Context, actor models.Principal, in NewCustomer) (*models.Customer, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleAgent {
		return nil, fmt.Errorf("%w: role %s cannot register customers", ErrForbidden, actor.Role)
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	y, m, d := in.FirstEMIDate.Date()
	firstDue := time.Date(y, m, d, 0, 0, 0, 0, l.loc)

	status := models.ApprovalPending
	if actor.Role == models.RoleAdmin {
		status = models.ApprovalApproved
	}

	now := l.now()
	c := &models.Customer{
		ID:              uuid.New(),
		Name:            in.Name,
		FatherName:      in.FatherName,
		Address:         in.Address,
		Contact:         in.Contact,
		AlternateNumber: in.AlternateNumber,
		Model:           in.Model,
		IMEI:            in.IMEI,
		Supplier:        in.Supplier,
		SupplierNumber:  in.SupplierNumber,
		Price:           in.Price,
		DownPayment:     in.DownPayment,
		EMIAmount:       in.EMIAmount,
		Status:          status,
		CreatedBy:       actor,
		EMIs:            GenerateSchedule(in.EMIAmount, in.EMIMonths, firstDue),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := l.storage.CreateCustomer(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: customer with imei %s already exists", ErrDuplicateIdentifier, c.IMEI)
		}
		return nil, fmt.Errorf("failed to store customer: %w", err)
	}
	l.logger.Info("customer created", "customer", c.ID, "imei", c.IMEI, "emis", len(c.EMIs), "status", c.Status, "by", actor.UserID)
	return c, nil
}

// GetCustomer retrieves a customer the actor is allowed to see.
func (l *Ledger) GetCustomer(ctx context.Context, actor models.Principal, id uuid.UUID) (*models.Customer, error) {
	c, err := l.storage.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, c) {
		return nil, fmt.Errorf("%w: customer %s", ErrForbidden, id)
	}
	return c, nil
}

// ListCustomers returns every customer for an admin and only their own for
// an agent, filtered by search, newest first.
func (l *Ledger) ListCustomers(ctx context.Context, actor models.Principal, search string) ([]*models.Customer, error) {
	var f store.CustomerFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleAgent:
		f.CreatorID = actor.UserID
	default:
		return nil, fmt.Errorf("%w: role %s cannot list customers", ErrForbidden, actor.Role)
	}
	all, err := l.storage.ListCustomers(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Customer, 0, len(all))
	for _, c := range all {
		if MatchesSearch(c, search) {
			out = append(out, c)
		}
	}
	return out, nil
}

// PendingRequests lists agent submissions awaiting approval, newest first.
func (l *Ledger) PendingRequests(ctx context.Context) ([]*models.Customer, error) {
	out, err := l.storage.ListCustomers(ctx, store.CustomerFilter{Status: models.ApprovalPending})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*models.Customer{}
	}
	return out, nil
}

// ApproveCustomer flips a pending record to APPROVED. Approving twice is a no-op.
func (l *Ledger) ApproveCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, err := l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		if c.Status == models.ApprovalApproved {
			return false, nil
		}
		c.Status = models.ApprovalApproved
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("customer approved", "customer", id)
	return c, nil
}

// CustomerUpdate holds the editable customer fields; nil leaves a field as is.
// The installment schedule is never edited through it.
type CustomerUpdate struct {
	Name            *string
	FatherName      *string
	Address         *string
	Contact         *string
	AlternateNumber *string
	Model           *string
	IMEI            *string
	Supplier        *string
	SupplierNumber  *string
	Price           *decimal.Decimal
	DownPayment     *decimal.Decimal
	EMIAmount       *decimal.Decimal
}

func (u CustomerUpdate) apply(c *models.Customer) error {
	required := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"name", u.Name, &c.Name},
		{"fatherName", u.FatherName, &c.FatherName},
		{"contact", u.Contact, &c.Contact},
		{"model", u.Model, &c.Model},
		{"imei", u.IMEI, &c.IMEI},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrValidation, f.name)
		}
		*f.dst = v
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{u.Address, &c.Address},
		{u.AlternateNumber, &c.AlternateNumber},
		{u.Supplier, &c.Supplier},
		{u.SupplierNumber, &c.SupplierNumber},
	} {
		if f.src != nil {
			*f.dst = strings.TrimSpace(*f.src)
		}
	}
	if u.Price != nil {
		if u.Price.IsNegative() {
			return fmt.Errorf("%w: price cannot be negative", ErrInvalidAmount)
		}
		c.Price = *u.Price
	}
	if u.DownPayment != nil {
		if u.DownPayment.IsNegative() {
			return fmt.Errorf("%w: downPayment cannot be negative", ErrInvalidAmount)
		}
		c.DownPayment = *u.DownPayment
	}
	if u.EMIAmount != nil {
		if !u.EMIAmount.IsPositive() {
			return fmt.Errorf("%w: emiAmount must be positive", ErrInvalidAmount)
		}
		c.EMIAmount = *u.EMIAmount
	}
	return nil
}

// UpdateCustomer edits identity, device and financing fields.
func (l *Ledger) UpdateCustomer(ctx context.Context, actor models.Principal, id uuid.UUID, u CustomerUpdate) (*models.Customer, error) {
	return l.mutate(ctx, id, func(c *models.Customer) (bool, error) {
		if !canAccess(actor, c) {
			return false, fmt.Errorf("%w: customer %s", ErrForbidden, id)
		}
		if err := u.apply(c); err != nil {
			return false, err
		}
		return true, nil
	})
}

// DeleteCustomer removes the customer and the whole schedule. It is terminal.
func (l *Ledger) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	unlock, err := l.locker.Lock(ctx, "customer:"+id.String())
	if err != nil {
		return fmt.Errorf("lock customer %s: %w", id, err)
	}
	defer unlock()

	if err := l.storage.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	l.logger.Info("customer deleted", "customer", id)
	return nil
}
