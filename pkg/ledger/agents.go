package ledger

import (
	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

type AgentSummary struct {
	AgentID        uuid.UUID       `json:"agentId"`
	AgentName      string          `json:"agentName"`
	Email          string          `json:"email"`
	TotalCustomers int             `json:"totalCustomers"`
	TotalSales     decimal.Decimal `json:"totalSales"` // Sum of scheduled EMI amounts
	PendingCash    decimal.Decimal `json:"pendingCash"`
	TotalEMIs      int             `json:"totalEmis"`
}

type AgentDetail struct {
	AgentSummary
	Customers []*models.Customer `json:"customers"`
}

// SummarizeAgents groups agent-created customers under their agent. Every
// agent gets an entry, even with no customers; customers whose creator is
// not in agents are ignored.
func SummarizeAgents(agents []*models.User, customers []*models.Customer) []AgentSummary {
	index := make(map[uuid.UUID]int, len(agents))
	out := make([]AgentSummary, len(agents))
	for i, a := range agents {
		index[a.ID] = i
		out[i] = AgentSummary{
			AgentID:     a.ID,
			AgentName:   a.Name,
			Email:       a.Email,
			TotalSales:  decimal.Zero,
			PendingCash: decimal.Zero,
		}
	}
	for _, c := range customers {
		if c.CreatedBy.Role != models.RoleAgent {
			continue
		}
		i, ok := index[c.CreatedBy.UserID]
		if !ok {
			continue
		}
		s := &out[i]
		s.TotalCustomers++
		for _, inst := range c.EMIs {
			s.TotalEMIs++
			s.TotalSales = s.TotalSales.Add(inst.Amount)
			s.PendingCash = s.PendingCash.Add(inst.Remaining())
		}
	}
	return out
}
