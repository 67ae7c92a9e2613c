package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

// CustomerFilter narrows ListCustomers. Zero values match everything.
type CustomerFilter struct {
	Status      models.ApprovalStatus
	CreatorID   uuid.UUID
	CreatorRole models.Role
}

// Storage defines the interface for database operations on customers and users.
type Storage interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	// UpdateCustomer writes c only if the stored version still equals c.Version,
	// then increments c.Version. A stale version yields ErrVersionConflict.
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	// ListCustomers returns matching customers, newest first.
	ListCustomers(ctx context.Context, f CustomerFilter) ([]*models.Customer, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	// ListUsers returns users with the given role, or all users when role is empty.
	ListUsers(ctx context.Context, role models.Role) ([]*models.User, error)

	Health(ctx context.Context) error
	Close() error
}
