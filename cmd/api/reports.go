package main

import (
	"fmt"
	"net/http"

	"github.com/mcclellann/emiLedger/pkg/ledger"
	"github.com/mcclellann/emiLedger/pkg/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) installmentRows(r *http.Request) (ledger.Filter, []ledger.InstallmentRow, error) {
	q := r.URL.Query()
	f, err := ledger.ParseFilter(q.Get("type"))
	if err != nil {
		return "", nil, err
	}
	rows, err := s.ledger.ListInstallments(r.Context(), f, q.Get("search"))
	return f, rows, err
}

func (s *Server) listInstallmentsHandler(w http.ResponseWriter, r *http.Request) {
	_, rows, err := s.installmentRows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) exportInstallmentsHandler(w http.ResponseWriter, r *http.Request) {
	f, rows, err := s.installmentRows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := report.InstallmentsXLSX(rows)
	if err != nil {
		s.fail(w, r, fmt.Errorf("render export: %w", err))
		return
	}
	name := fmt.Sprintf("emis-%s-%s.xlsx", f, s.ledger.Today().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	st, err := s.ledger.Statistics(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) listAgentsHandler(w http.ResponseWriter, r *http.Request) {
	agents, err := s.ledger.Agents(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) getAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "agentId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	detail, err := s.ledger.Agent(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
