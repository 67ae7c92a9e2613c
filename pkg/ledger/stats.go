package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/shopspring/decimal"
)

const (
	topDefaultersLimit = 5
	monthKeyLayout     = "Jan 2006"
)

type Defaulter struct {
	CustomerID    uuid.UUID       `json:"customerId"`
	Name          string          `json:"name"`
	Contact       string          `json:"contact"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
}

// MonthlyPoint is one chronologically ordered entry of the monthly maps.
type MonthlyPoint struct {
	Month string          `json:"month"`
	Sales decimal.Decimal `json:"sales"`
	Cash  decimal.Decimal `json:"cash"`
}

type Statistics struct {
	TotalCustomers    int             `json:"totalCustomers"`
	TotalSales        decimal.Decimal `json:"totalSales"`
	TotalCashReceived decimal.Decimal `json:"totalCashReceived"`
	PendingCash       decimal.Decimal `json:"pendingCash"`

	TotalEMIs   int `json:"totalEmis"`
	PaidEMIs    int `json:"paidEmis"`
	PartialEMIs int `json:"partialEmis"`
	PendingEMIs int `json:"pendingEmis"`
	DueToday    int `json:"dueToday"`
	OverdueEMIs int `json:"overdueEmis"`

	MonthlySales  map[string]decimal.Decimal `json:"monthlySales"`
	MonthlyCash   map[string]decimal.Decimal `json:"monthlyCash"`
	MonthlySeries []MonthlyPoint             `json:"monthlySeries"`

	TopDefaulters []Defaulter `json:"topDefaulters"`
}

// MatchesSearch reports whether q is a case-insensitive substring of the
// customer's name or contact. An empty query matches everyone.
func MatchesSearch(c *models.Customer, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Contact), q)
}

// ComputeStatistics aggregates customers in one pass over every installment.
// The caller decides the population; the ledger passes APPROVED customers.
// TotalSales is the sum of customer prices. TotalCashReceived is down
// payments plus every installment's paid amount. Month keys come from due
// dates, formatted in today's location.
func ComputeStatistics(customers []*models.Customer, today time.Time) Statistics {
	loc := today.Location()
	st := Statistics{
		TotalCustomers:    len(customers),
		TotalSales:        decimal.Zero,
		TotalCashReceived: decimal.Zero,
		PendingCash:       decimal.Zero,
		MonthlySales:      map[string]decimal.Decimal{},
		MonthlyCash:       map[string]decimal.Decimal{},
	}
	monthStart := map[string]time.Time{}
	var owing []Defaulter

	for _, c := range customers {
		st.TotalSales = st.TotalSales.Add(c.Price)
		st.TotalCashReceived = st.TotalCashReceived.Add(c.DownPayment)
		customerPending := decimal.Zero

		for _, inst := range c.EMIs {
			cl := Classify(inst, today)
			st.TotalEMIs++
			switch {
			case cl.Matches(FilterPaid):
				st.PaidEMIs++
			case cl.Matches(FilterPartial):
				st.PartialEMIs++
			}
			if cl.Matches(FilterPending) {
				st.PendingEMIs++
			}
			if cl.Matches(FilterDueToday) {
				st.DueToday++
			}
			if cl.Matches(FilterOverdue) {
				st.OverdueEMIs++
			}

			remaining := inst.Remaining()
			st.TotalCashReceived = st.TotalCashReceived.Add(inst.PaidAmount)
			st.PendingCash = st.PendingCash.Add(remaining)
			customerPending = customerPending.Add(remaining)

			due := inst.DueDate.In(loc)
			key := due.Format(monthKeyLayout)
			if _, ok := monthStart[key]; !ok {
				monthStart[key] = time.Date(due.Year(), due.Month(), 1, 0, 0, 0, 0, loc)
			}
			st.MonthlySales[key] = st.MonthlySales[key].Add(inst.Amount)
			st.MonthlyCash[key] = st.MonthlyCash[key].Add(inst.PaidAmount)
		}

		if customerPending.IsPositive() {
			owing = append(owing, Defaulter{
				CustomerID:    c.ID,
				Name:          c.Name,
				Contact:       c.Contact,
				PendingAmount: customerPending,
			})
		}
	}

	st.MonthlySeries = monthlySeries(st.MonthlySales, st.MonthlyCash, monthStart)
	st.TopDefaulters = TopDefaulters(owing, topDefaultersLimit)
	return st
}

// TopDefaulters drops anyone with nothing pending, sorts by pending amount
// descending (name breaks ties) and keeps at most limit entries.
func TopDefaulters(candidates []Defaulter, limit int) []Defaulter {
	out := make([]Defaulter, 0, len(candidates))
	for _, d := range candidates {
		if d.PendingAmount.IsPositive() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].PendingAmount.Cmp(out[j].PendingAmount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func monthlySeries(sales, cash map[string]decimal.Decimal, starts map[string]time.Time) []MonthlyPoint {
	keys := make([]string, 0, len(sales))
	for k := range sales {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return starts[keys[i]].Before(starts[keys[j]]) })

	series := make([]MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		series = append(series, MonthlyPoint{Month: k, Sales: sales[k], Cash: cash[k]})
	}
	return series
}
