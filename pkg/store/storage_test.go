package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(imei string, creator models.Principal, status models.ApprovalStatus, created time.Time) *models.Customer {
	due := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	return &models.Customer{
		ID:          uuid.New(),
		Name:        "Meena",
		FatherName:  "Gopal",
		Contact:     "9000000001",
		Model:       "Redmi 13",
		IMEI:        imei,
		Price:       decimal.RequireFromString("12000.50"),
		DownPayment: decimal.RequireFromString("2000"),
		EMIAmount:   decimal.RequireFromString("1000.25"),
		Status:      status,
		CreatedBy:   creator,
		EMIs: []models.Installment{
			{Seq: 0, Amount: decimal.RequireFromString("1000.25"), PaidAmount: decimal.Zero, Penalty: decimal.Zero, DueDate: due, Status: models.InstallmentPending, Payments: []models.Payment{}},
			{Seq: 1, Amount: decimal.RequireFromString("1000.25"), PaidAmount: decimal.Zero, Penalty: decimal.Zero, DueDate: due.AddDate(0, 1, 0), Status: models.InstallmentPending, Payments: []models.Payment{}},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// runStorageSuite exercises the Storage contract against one backend.
func runStorageSuite(t *testing.T, s Storage) {
	ctx := context.Background()
	admin := models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}
	agent := models.Principal{UserID: uuid.New(), Role: models.RoleAgent}
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	t.Run("customer round trip", func(t *testing.T) {
		c := newTestCustomer("imei-1", admin, models.ApprovalApproved, base)
		require.NoError(t, s.CreateCustomer(ctx, c))

		got, err := s.GetCustomer(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.IMEI, got.IMEI)
		assert.True(t, got.Price.Equal(c.Price), "price %s", got.Price)
		assert.True(t, got.EMIAmount.Equal(c.EMIAmount))
		assert.Equal(t, admin, got.CreatedBy)
		require.Len(t, got.EMIs, 2)
		assert.Equal(t, 1, got.EMIs[1].Seq)
		assert.True(t, got.EMIs[1].DueDate.Equal(c.EMIs[1].DueDate))
		assert.Equal(t, int64(0), got.Version)
	})

	t.Run("duplicate imei", func(t *testing.T) {
		c := newTestCustomer("imei-dup", admin, models.ApprovalApproved, base)
		require.NoError(t, s.CreateCustomer(ctx, c))
		err := s.CreateCustomer(ctx, newTestCustomer("imei-dup", admin, models.ApprovalApproved, base))
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("versioned update", func(t *testing.T) {
		c := newTestCustomer("imei-2", admin, models.ApprovalApproved, base)
		require.NoError(t, s.CreateCustomer(ctx, c))

		first, err := s.GetCustomer(ctx, c.ID)
		require.NoError(t, err)
		stale, err := s.GetCustomer(ctx, c.ID)
		require.NoError(t, err)

		first.EMIs[0].PaidAmount = decimal.RequireFromString("1000.25")
		first.EMIs[0].Status = models.InstallmentPaid
		first.EMIs[0].Payments = append(first.EMIs[0].Payments, models.Payment{Amount: decimal.RequireFromString("1000.25"), Date: base})
		require.NoError(t, s.UpdateCustomer(ctx, first))
		assert.Equal(t, int64(1), first.Version)

		stale.Name = "Lost write"
		assert.ErrorIs(t, s.UpdateCustomer(ctx, stale), ErrVersionConflict)

		got, err := s.GetCustomer(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meena", got.Name)
		assert.Equal(t, models.InstallmentPaid, got.EMIs[0].Status)
		require.Len(t, got.EMIs[0].Payments, 1)

		missing := newTestCustomer("imei-ghost", admin, models.ApprovalApproved, base)
		assert.ErrorIs(t, s.UpdateCustomer(ctx, missing), ErrNotFound)
	})

	t.Run("list filters", func(t *testing.T) {
		older := newTestCustomer("imei-3", agent, models.ApprovalPending, base.Add(time.Hour))
		newer := newTestCustomer("imei-4", agent, models.ApprovalPending, base.Add(2*time.Hour))
		require.NoError(t, s.CreateCustomer(ctx, older))
		require.NoError(t, s.CreateCustomer(ctx, newer))

		pending, err := s.ListCustomers(ctx, CustomerFilter{Status: models.ApprovalPending})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, newer.ID, pending[0].ID, "newest first")

		mine, err := s.ListCustomers(ctx, CustomerFilter{CreatorID: agent.UserID, CreatorRole: models.RoleAgent})
		require.NoError(t, err)
		assert.Len(t, mine, 2)

		none, err := s.ListCustomers(ctx, CustomerFilter{CreatorID: uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("delete customer", func(t *testing.T) {
		c := newTestCustomer("imei-5", admin, models.ApprovalApproved, base)
		require.NoError(t, s.CreateCustomer(ctx, c))
		require.NoError(t, s.DeleteCustomer(ctx, c.ID))
		_, err := s.GetCustomer(ctx, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteCustomer(ctx, c.ID), ErrNotFound)
	})

	t.Run("users", func(t *testing.T) {
		u := &models.User{ID: uuid.New(), Name: "Kiran", Email: "Kiran@Example.com", PasswordHash: "hash", Role: models.RoleUser, CreatedAt: base}
		require.NoError(t, s.CreateUser(ctx, u))

		dup := &models.User{ID: uuid.New(), Name: "Other", Email: "kiran@example.com", PasswordHash: "hash", Role: models.RoleUser, CreatedAt: base}
		assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

		got, err := s.GetUserByEmail(ctx, "KIRAN@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		require.NoError(t, s.UpdateUserRole(ctx, u.ID, models.RoleAgent))
		agents, err := s.ListUsers(ctx, models.RoleAgent)
		require.NoError(t, err)
		require.Len(t, agents, 1)
		assert.Equal(t, u.ID, agents[0].ID)

		require.NoError(t, s.DeleteUser(ctx, u.ID))
		_, err = s.GetUser(ctx, u.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.UpdateUserRole(ctx, u.ID, models.RoleUser), ErrNotFound)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, s.Health(ctx))
	})
}
