package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore is a simple in-memory implementation of the Storage interface for testing.
// It copies customers in and out so callers never share memory with it, like a real database.
type MockStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*models.Customer
	users     map[uuid.UUID]*models.User
	updates   int
	// conflicts makes the next N UpdateCustomer calls fail with ErrVersionConflict.
	conflicts int
}

func NewMockStore() *MockStore {
	return &MockStore{
		customers: make(map[uuid.UUID]*models.Customer),
		users:     make(map[uuid.UUID]*models.User),
	}
}

func (m *MockStore) CreateCustomer(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.IMEI == c.IMEI {
			return fmt.Errorf("customer imei %s: %w", c.IMEI, store.ErrDuplicate)
		}
	}
	m.customers[c.ID] = c.Clone()
	return nil
}

func (m *MockStore) GetCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *MockStore) UpdateCustomer(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.customers[c.ID]
	if !ok {
		return fmt.Errorf("customer %s: %w", c.ID, store.ErrNotFound)
	}
	if m.conflicts > 0 {
		m.conflicts--
		existing.Version++
		return fmt.Errorf("customer %s: %w", c.ID, store.ErrVersionConflict)
	}
	if existing.Version != c.Version {
		return fmt.Errorf("customer %s: %w", c.ID, store.ErrVersionConflict)
	}
	for id, other := range m.customers {
		if id != c.ID && other.IMEI == c.IMEI {
			return fmt.Errorf("customer imei %s: %w", c.IMEI, store.ErrDuplicate)
		}
	}
	c.Version++
	m.customers[c.ID] = c.Clone()
	m.updates++
	return nil
}

func (m *MockStore) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, store.ErrNotFound)
	}
	delete(m.customers, id)
	return nil
}

func (m *MockStore) ListCustomers(_ context.Context, f store.CustomerFilter) ([]*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Customer{}
	for _, c := range m.customers {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.CreatorID != uuid.Nil && c.CreatedBy.UserID != f.CreatorID {
			continue
		}
		if f.CreatorRole != "" && c.CreatedBy.Role != f.CreatorRole {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("user email %s: %w", u.Email, store.ErrDuplicate)
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *MockStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
}

func (m *MockStore) UpdateUserRole(_ context.Context, id uuid.UUID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	u.Role = role
	return nil
}

func (m *MockStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, store.ErrNotFound)
	}
	delete(m.users, id)
	return nil
}

func (m *MockStore) ListUsers(_ context.Context, role models.Role) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.User{}
	for _, u := range m.users {
		if role == "" || u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockStore) Health(context.Context) error { return nil }

func (m *MockStore) Close() error {
	return nil
}

var (
	testNow = time.Date(2024, time.March, 15, 11, 30, 0, 0, time.UTC)
	admin   = models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}
)

func newTestLedger(s *MockStore) *Ledger {
	return NewLedger(s,
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sampleCustomer(imei string) NewCustomer {
	return NewCustomer{
		Name:         "Ravi Kumar",
		FatherName:   "Suresh Kumar",
		Address:      "12 Market Road",
		Contact:      "9876543210",
		Model:        "Galaxy A15",
		IMEI:         imei,
		Price:        d("15000"),
		DownPayment:  d("3000"),
		EMIAmount:    d("1000"),
		EMIMonths:    3,
		FirstEMIDate: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateCustomer(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)

	c, err := l.CreateCustomer(context.Background(), admin, sampleCustomer("111"))
	require.NoError(t, err)

	assert.Equal(t, models.ApprovalApproved, c.Status)
	assert.Equal(t, admin, c.CreatedBy)
	require.Len(t, c.EMIs, 3)
	assert.True(t, c.EMIs[0].DueDate.Equal(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, c.EMIs[2].DueDate.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)))

	stored, err := s.GetCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "111", stored.IMEI)
}

func TestCreateCustomer_AgentRecordIsPending(t *testing.T) {
	l := newTestLedger(NewMockStore())
	agent := models.Principal{UserID: uuid.New(), Role: models.RoleAgent}

	c, err := l.CreateCustomer(context.Background(), agent, sampleCustomer("222"))
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, c.Status)

	pending, err := l.PendingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ID, pending[0].ID)

	approved, err := l.ApproveCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Status)

	pending, err = l.PendingRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateCustomer_Rejections(t *testing.T) {
	l := newTestLedger(NewMockStore())
	ctx := context.Background()

	_, err := l.CreateCustomer(ctx, admin, sampleCustomer("333"))
	require.NoError(t, err)

	_, err = l.CreateCustomer(ctx, admin, sampleCustomer("333"))
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)

	user := models.Principal{UserID: uuid.New(), Role: models.RoleUser}
	_, err = l.CreateCustomer(ctx, user, sampleCustomer("444"))
	assert.ErrorIs(t, err, ErrForbidden)

	missing := sampleCustomer("555")
	missing.Name = "  "
	_, err = l.CreateCustomer(ctx, admin, missing)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "name")

	noMonths := sampleCustomer("666")
	noMonths.EMIMonths = 0
	_, err = l.CreateCustomer(ctx, admin, noMonths)
	assert.ErrorIs(t, err, ErrValidation)

	badAmount := sampleCustomer("777")
	badAmount.EMIAmount = d("-5")
	_, err = l.CreateCustomer(ctx, admin, badAmount)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordPayment(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("888"))
	require.NoError(t, err)

	res, err := l.RecordPayment(ctx, admin, c.ID, 0, d("1500"))
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(d("1500")))
	assert.True(t, res.Unadjusted.IsZero())
	assert.Equal(t, []int{0, 1}, res.Touched)

	stored, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPaid, stored.EMIs[0].Status)
	assert.Equal(t, models.InstallmentPartial, stored.EMIs[1].Status)
	assert.True(t, stored.EMIs[1].PaidAmount.Equal(d("500")))
	assert.Equal(t, models.InstallmentPending, stored.EMIs[2].Status)
	assert.Equal(t, int64(1), stored.Version)

	// Overpay the rest: 500 + 1000 open, 1000 left over.
	res, err = l.RecordPayment(ctx, admin, c.ID, 0, d("2500"))
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(d("1500")))
	assert.True(t, res.Unadjusted.Equal(d("1000")))
}

func TestRecordPayment_Errors(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("999"))
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, admin, c.ID, 0, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.RecordPayment(ctx, admin, c.ID, 7, d("100"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.RecordPayment(ctx, admin, uuid.New(), 0, d("100"))
	assert.ErrorIs(t, err, ErrNotFound)

	other := models.Principal{UserID: uuid.New(), Role: models.RoleAgent}
	_, err = l.RecordPayment(ctx, other, c.ID, 0, d("100"))
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Zero(t, s.updates, "failed operations must not write")
}

func TestRecordPayment_FullyPaidIsNoOp(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1010"))
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, admin, c.ID, 0, d("3000"))
	require.NoError(t, err)
	require.Equal(t, 1, s.updates)

	res, err := l.RecordPayment(ctx, admin, c.ID, 0, d("50"))
	require.NoError(t, err)
	assert.True(t, res.Applied.IsZero())
	assert.True(t, res.Unadjusted.Equal(d("50")))
	assert.NotNil(t, res.Touched)
	assert.Empty(t, res.Touched)
	assert.Equal(t, 1, s.updates)
}

func TestRecordPayment_RetriesOnVersionConflict(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1111"))
	require.NoError(t, err)

	s.conflicts = 2
	res, err := l.RecordPayment(ctx, admin, c.ID, 0, d("400"))
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(d("400")))

	stored, _ := s.GetCustomer(ctx, c.ID)
	assert.True(t, stored.EMIs[0].PaidAmount.Equal(d("400")))
	assert.Len(t, stored.EMIs[0].Payments, 1, "payment must be applied exactly once")

	s.conflicts = maxCommitAttempts
	_, err = l.RecordPayment(ctx, admin, c.ID, 0, d("100"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRecordPayment_ConcurrentPaymentsDoNotLoseUpdates(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	in := sampleCustomer("1212")
	in.EMIMonths = 10
	c, err := l.CreateCustomer(ctx, admin, in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RecordPayment(ctx, admin, c.ID, 0, d("250"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, inst := range stored.EMIs {
		total = total.Add(inst.PaidAmount)
	}
	assert.True(t, total.Equal(d("5000")), "got %s", total)
}

func TestSettleInstallment(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1313"))
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, admin, c.ID, 1, d("300"))
	require.NoError(t, err)

	res, err := l.SettleInstallment(ctx, admin, c.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Applied.Equal(d("700")))
	require.Len(t, res.Installments, 1)
	assert.Equal(t, models.InstallmentPaid, res.Installments[0].Status)

	stored, _ := s.GetCustomer(ctx, c.ID)
	assert.Equal(t, models.InstallmentPending, stored.EMIs[2].Status, "settling never spills into the next installment")

	_, err = l.SettleInstallment(ctx, admin, c.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestSettleInstallment_ClosesPenaltyReopened(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1315"))
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, admin, c.ID, 0, d("1000"))
	require.NoError(t, err)
	pen, err := l.AddPenalty(ctx, admin, c.ID, 0, d("200"))
	require.NoError(t, err)
	require.Equal(t, models.InstallmentPending, pen.Status)

	res, err := l.SettleInstallment(ctx, admin, c.ID, 0)
	require.NoError(t, err)
	assert.True(t, res.Applied.IsZero())
	assert.Equal(t, []int{0}, res.Touched)
	require.Len(t, res.Installments, 1)
	assert.Equal(t, models.InstallmentPaid, res.Installments[0].Status)

	stored, _ := s.GetCustomer(ctx, c.ID)
	inst := stored.EMIs[0]
	assert.Equal(t, models.InstallmentPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(d("1000")))
	assert.True(t, inst.Penalty.Equal(d("200")))
	require.NotNil(t, inst.PaidDate)
	assert.False(t, Classify(inst, l.Today()).Overdue)
	assert.Len(t, inst.Payments, 1, "closing records no new payment")
	assert.True(t, stored.EMIs[1].PaidAmount.IsZero())

	_, err = l.SettleInstallment(ctx, admin, c.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestAddPenalty(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1414"))
	require.NoError(t, err)
	_, err = l.RecordPayment(ctx, admin, c.ID, 0, d("1000"))
	require.NoError(t, err)

	res, err := l.AddPenalty(ctx, admin, c.ID, 0, d("200"))
	require.NoError(t, err)
	assert.True(t, res.PenaltyTotal.Equal(d("200")))
	assert.True(t, res.TotalPayable.Equal(d("200")))
	assert.Equal(t, models.InstallmentPending, res.Status)

	_, err = l.AddPenalty(ctx, admin, c.ID, 0, d("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.AddPenalty(ctx, admin, c.ID, 42, d("10"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteInstallment_KeepsSeqStable(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	c, err := l.CreateCustomer(ctx, admin, sampleCustomer("1515"))
	require.NoError(t, err)

	require.NoError(t, l.DeleteInstallment(ctx, c.ID, 0))

	stored, _ := s.GetCustomer(ctx, c.ID)
	require.Len(t, stored.EMIs, 2)
	assert.Equal(t, 1, stored.EMIs[0].Seq)

	// seq 2 still addresses the third installment of the original schedule.
	res, err := l.RecordPayment(ctx, admin, c.ID, 2, d("100"))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Touched)

	assert.ErrorIs(t, l.DeleteInstallment(ctx, c.ID, 0), ErrNotFound)
}

func TestUpdateAndDeleteCustomer(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()
	a, err := l.CreateCustomer(ctx, admin, sampleCustomer("1616"))
	require.NoError(t, err)
	b, err := l.CreateCustomer(ctx, admin, sampleCustomer("1717"))
	require.NoError(t, err)

	name := "Ravi K."
	updated, err := l.UpdateCustomer(ctx, admin, a.ID, CustomerUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K.", updated.Name)
	assert.Len(t, updated.EMIs, 3)

	imei := "1717"
	_, err = l.UpdateCustomer(ctx, admin, a.ID, CustomerUpdate{IMEI: &imei})
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)

	empty := ""
	_, err = l.UpdateCustomer(ctx, admin, a.ID, CustomerUpdate{Contact: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, l.DeleteCustomer(ctx, b.ID))
	_, err = l.GetCustomer(ctx, admin, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, l.DeleteCustomer(ctx, b.ID), ErrNotFound)
}

func TestListCustomers_AgentScope(t *testing.T) {
	l := newTestLedger(NewMockStore())
	ctx := context.Background()
	agent := models.Principal{UserID: uuid.New(), Role: models.RoleAgent}

	mine, err := l.CreateCustomer(ctx, agent, sampleCustomer("1818"))
	require.NoError(t, err)
	theirs, err := l.CreateCustomer(ctx, admin, sampleCustomer("1919"))
	require.NoError(t, err)

	list, err := l.ListCustomers(ctx, agent, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = l.GetCustomer(ctx, agent, theirs.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err = l.ListCustomers(ctx, admin, "RAVI")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = l.ListCustomers(ctx, models.Principal{UserID: uuid.New(), Role: models.RoleUser}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStatisticsAndListing_OnlyApproved(t *testing.T) {
	l := newTestLedger(NewMockStore())
	ctx := context.Background()
	agent := models.Principal{UserID: uuid.New(), Role: models.RoleAgent}

	approved, err := l.CreateCustomer(ctx, admin, sampleCustomer("2020"))
	require.NoError(t, err)
	_, err = l.CreateCustomer(ctx, agent, sampleCustomer("2121"))
	require.NoError(t, err)

	_, err = l.RecordPayment(ctx, admin, approved.ID, 0, d("1500"))
	require.NoError(t, err)

	st, err := l.Statistics(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalCustomers)
	assert.Equal(t, 3, st.TotalEMIs)
	assert.True(t, st.TotalSales.Equal(d("15000")))
	assert.True(t, st.TotalCashReceived.Equal(d("4500")))
	assert.True(t, st.PendingCash.Equal(d("1500")))

	// testNow is 2024-03-15: Feb 10 (partial) and Mar 10 (pending) are overdue.
	assert.Equal(t, 2, st.OverdueEMIs)

	rows, err := l.ListInstallments(ctx, FilterOverdue, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, approved.ID, rows[0].CustomerID)
	assert.Equal(t, 1, rows[0].Seq)

	rows, err = l.ListInstallments(ctx, FilterTotal, "nobody")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAgents(t *testing.T) {
	s := NewMockStore()
	l := newTestLedger(s)
	ctx := context.Background()

	agentUser := &models.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: models.RoleAgent, CreatedAt: testNow}
	idle := &models.User{ID: uuid.New(), Name: "Bala", Email: "bala@example.com", Role: models.RoleAgent, CreatedAt: testNow.Add(time.Minute)}
	require.NoError(t, s.CreateUser(ctx, agentUser))
	require.NoError(t, s.CreateUser(ctx, idle))

	c, err := l.CreateCustomer(ctx, agentUser.Principal(), sampleCustomer("2222"))
	require.NoError(t, err)
	_, err = l.RecordPayment(ctx, agentUser.Principal(), c.ID, 0, d("400"))
	require.NoError(t, err)

	summaries, err := l.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Asha", summaries[0].AgentName)
	assert.Equal(t, 1, summaries[0].TotalCustomers)
	assert.True(t, summaries[0].TotalSales.Equal(d("3000")))
	assert.True(t, summaries[0].PendingCash.Equal(d("2600")))
	assert.Equal(t, 0, summaries[1].TotalCustomers)

	detail, err := l.Agent(ctx, agentUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.TotalEMIs)
	require.Len(t, detail.Customers, 1)

	_, err = l.Agent(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
