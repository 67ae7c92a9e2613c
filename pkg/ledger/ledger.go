package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/lock"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
)

// maxCommitAttempts bounds how often a mutation is re-applied after losing
// an optimistic version race against another process.
const maxCommitAttempts = 3

// Ledger handles the business logic for customers and their EMI schedules.
type Ledger struct {
	storage store.Storage
	locker  lock.Locker
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

type Option func(*Ledger)

// WithLocker replaces the default in-process per-customer lock.
func WithLocker(lk lock.Locker) Option {
	return func(l *Ledger) { l.locker = lk }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithLocation sets the shop's time zone; "today" and due dates are
// evaluated in it.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage: s,
		locker:  lock.NewMemory(),
		logger:  slog.Default(),
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today is midnight of the current day in the shop's time zone.
func (l *Ledger) Today() time.Time {
	return startOfDay(l.now(), l.loc)
}

// mutate runs fn against a fresh copy of the customer under the customer's
// lock and commits the copy once. fn reports whether it changed anything;
// unchanged copies are not written. On a version conflict the customer is
// re-read and fn re-applied.
func (l *Ledger) mutate(ctx context.Context, id uuid.UUID, fn func(c *models.Customer) (bool, error)) (*models.Customer, error) {
	unlock, err := l.locker.Lock(ctx, "customer:"+id.String())
	if err != nil {
		return nil, fmt.Errorf("lock customer %s: %w", id, err)
	}
	defer unlock()

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		current, err := l.storage.GetCustomer(ctx, id)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		changed, err := fn(next)
		if err != nil {
			return nil, err
		}
		if !changed {
			return current, nil
		}
		next.UpdatedAt = l.now()
		err = l.storage.UpdateCustomer(ctx, next)
		if errors.Is(err, store.ErrVersionConflict) {
			l.logger.Warn("customer update lost version race", "customer", id, "attempt", attempt)
			continue
		}
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateIdentifier, err)
			}
			return nil, fmt.Errorf("failed to update customer: %w", err)
		}
		return next, nil
	}
	return nil, fmt.Errorf("customer %s: %w", id, ErrConflict)
}

// canAccess reports whether actor may see or act on c. Agents are scoped to
// the customers they created.
func canAccess(actor models.Principal, c *models.Customer) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleAgent:
		return c.CreatedBy.UserID == actor.UserID
	}
	return false
}

func installmentNotFound(id uuid.UUID, seq int) error {
	return fmt.Errorf("installment %d of customer %s: %w", seq, id, ErrNotFound)
}
