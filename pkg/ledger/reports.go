package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
)

func (l *Ledger) approvedCustomers(ctx context.Context) ([]*models.Customer, error) {
	customers, err := l.storage.ListCustomers(ctx, store.CustomerFilter{Status: models.ApprovalApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list approved customers: %w", err)
	}
	return customers, nil
}

// ListInstallments flattens the installments of approved customers that fall
// into bucket f and match search.
func (l *Ledger) ListInstallments(ctx context.Context, f Filter, search string) ([]InstallmentRow, error) {
	customers, err := l.approvedCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return InstallmentRows(customers, f, search, l.Today()), nil
}

// Statistics computes the dashboard aggregates over approved customers
// matching search. Every call is a full scan.
func (l *Ledger) Statistics(ctx context.Context, search string) (*Statistics, error) {
	customers, err := l.approvedCustomers(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*models.Customer, 0, len(customers))
	for _, c := range customers {
		if MatchesSearch(c, search) {
			matched = append(matched, c)
		}
	}
	st := ComputeStatistics(matched, l.Today())
	return &st, nil
}

// Agents summarizes the book of every agent.
func (l *Ledger) Agents(ctx context.Context) ([]AgentSummary, error) {
	agents, err := l.storage.ListUsers(ctx, models.RoleAgent)
	if err != nil {
		return nil, err
	}
	customers, err := l.storage.ListCustomers(ctx, store.CustomerFilter{CreatorRole: models.RoleAgent})
	if err != nil {
		return nil, err
	}
	return SummarizeAgents(agents, customers), nil
}

// Agent returns one agent's summary together with their customers.
func (l *Ledger) Agent(ctx context.Context, agentID uuid.UUID) (*AgentDetail, error) {
	agent, err := l.storage.GetUser(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Role != models.RoleAgent {
		return nil, fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
	}
	customers, err := l.storage.ListCustomers(ctx, store.CustomerFilter{CreatorID: agentID, CreatorRole: models.RoleAgent})
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return &AgentDetail{
		AgentSummary: SummarizeAgents([]*models.User{agent}, customers)[0],
		Customers:    customers,
	}, nil
}
