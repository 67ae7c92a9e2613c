package main

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/ledger"
	"github.com/shopspring/decimal"
)

type createCustomerRequest struct {
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
	EMIMonths       int             `json:"emiMonths"`
	FirstEMIDate    civilDate       `json:"firstEmiDate"`
}

func (s *Server) createCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.ledger.CreateCustomer(r.Context(), principal(r), ledger.NewCustomer{
		Name:            req.Name,
		FatherName:      req.FatherName,
		Address:         req.Address,
		Contact:         req.Contact,
		AlternateNumber: req.AlternateNumber,
		Model:           req.Model,
		IMEI:            req.IMEI,
		Supplier:        req.Supplier,
		SupplierNumber:  req.SupplierNumber,
		Price:           req.Price,
		DownPayment:     req.DownPayment,
		EMIAmount:       req.EMIAmount,
		EMIMonths:       req.EMIMonths,
		FirstEMIDate:    req.FirstEMIDate.Time,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listCustomersHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := s.ledger.ListCustomers(r.Context(), principal(r), r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) getCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.ledger.GetCustomer(r.Context(), principal(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type updateCustomerRequest struct {
	Name            *string          `json:"name"`
	FatherName      *string          `json:"fatherName"`
	Address         *string          `json:"address"`
	Contact         *string          `json:"contact"`
	AlternateNumber *string          `json:"alternateNumber"`
	Model           *string          `json:"model"`
	IMEI            *string          `json:"imei"`
	Supplier        *string          `json:"supplier"`
	SupplierNumber  *string          `json:"supplierNumber"`
	Price           *decimal.Decimal `json:"price"`
	DownPayment     *decimal.Decimal `json:"downPayment"`
	EMIAmount       *decimal.Decimal `json:"emiAmount"`
}

func (s *Server) updateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req updateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.ledger.UpdateCustomer(r.Context(), principal(r), id, ledger.CustomerUpdate(req))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.ledger.DeleteCustomer(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := s.ledger.PendingRequests(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) approveCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.ledger.ApproveCustomer(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type paymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type penaltyRequest struct {
	Penalty decimal.Decimal `json:"penalty"`
}

// installmentTarget parses the {id} and {seq} path variables.
func installmentTarget(r *http.Request) (id uuid.UUID, seq int, err error) {
	id, err = pathID(r, "id")
	if err != nil {
		return id, 0, err
	}
	seq, err = pathSeq(r)
	return id, seq, err
}

func (s *Server) recordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, seq, err := installmentTarget(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.ledger.RecordPayment(r.Context(), principal(r), id, seq, req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObservePayment(res.Applied, res.Unadjusted)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) settleInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, seq, err := installmentTarget(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.ledger.SettleInstallment(r.Context(), principal(r), id, seq)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObservePayment(res.Applied, res.Unadjusted)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) addPenaltyHandler(w http.ResponseWriter, r *http.Request) {
	id, seq, err := installmentTarget(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req penaltyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.ledger.AddPenalty(r.Context(), principal(r), id, seq, req.Penalty)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.Penalties.Inc()
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteInstallmentHandler(w http.ResponseWriter, r *http.Request) {
	id, seq, err := installmentTarget(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.ledger.DeleteInstallment(r.Context(), id, seq); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
