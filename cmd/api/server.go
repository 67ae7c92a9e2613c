package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/mcclellann/emiLedger/pkg/auth"
	"github.com/mcclellann/emiLedger/pkg/config"
	"github.com/mcclellann/emiLedger/pkg/ledger"
	"github.com/mcclellann/emiLedger/pkg/metrics"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
)

// Server holds the ledger instance and everything the handlers share.
type Server struct {
	cfg     config.Config
	ledger  *ledger.Ledger
	auth    auth.Service
	storage store.Storage // Keep a reference to the storage to close it
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewServer(cfg config.Config, s store.Storage, logger *slog.Logger, opts ...ledger.Option) *Server {
	base := []ledger.Option{ledger.WithLogger(logger), ledger.WithLocation(cfg.Location)}
	return &Server{
		cfg:     cfg,
		ledger:  ledger.NewLedger(s, append(base, opts...)...),
		auth:    auth.Service{Users: s, Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL, Logger: logger},
		storage: s,
		metrics: metrics.New(),
		logger:  logger,
	}
}

// Routes builds the router and wraps it in the middleware chain.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.instrument)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", s.signupHandler).Methods("POST")
	api.HandleFunc("/auth/login", s.loginHandler).Methods("POST")

	admin := requireRole(models.RoleAdmin)
	staff := requireRole(models.RoleAdmin, models.RoleAgent)

	p := api.NewRoute().Subrouter()
	p.Use(s.authenticate)

	p.HandleFunc("/customers", staff(s.listCustomersHandler)).Methods("GET")
	p.HandleFunc("/customers", staff(s.createCustomerHandler)).Methods("POST")
	p.HandleFunc("/customers/requests", admin(s.pendingRequestsHandler)).Methods("GET")
	p.HandleFunc("/customers/{id}", staff(s.getCustomerHandler)).Methods("GET")
	p.HandleFunc("/customers/{id}", staff(s.updateCustomerHandler)).Methods("PUT")
	p.HandleFunc("/customers/{id}", admin(s.deleteCustomerHandler)).Methods("DELETE")
	p.HandleFunc("/customers/{id}/approve", admin(s.approveCustomerHandler)).Methods("PUT")
	p.HandleFunc("/customers/{id}/pending", admin(s.approveCustomerHandler)).Methods("PUT")
	p.HandleFunc("/customers/{id}/emi/{seq}", staff(s.settleInstallmentHandler)).Methods("PUT")
	p.HandleFunc("/customers/{id}/emi/{seq}", admin(s.deleteInstallmentHandler)).Methods("DELETE")
	p.HandleFunc("/customers/{id}/emi/{seq}/pay", staff(s.recordPaymentHandler)).Methods("PUT")
	p.HandleFunc("/customers/{id}/emi/{seq}/penalty", staff(s.addPenaltyHandler)).Methods("PUT")

	p.HandleFunc("/emi-stats", admin(s.listInstallmentsHandler)).Methods("GET")
	p.HandleFunc("/emi-list", admin(s.listInstallmentsHandler)).Methods("GET")
	p.HandleFunc("/emi-stats/export", admin(s.exportInstallmentsHandler)).Methods("GET")
	p.HandleFunc("/dashboard", admin(s.dashboardHandler)).Methods("GET")
	p.HandleFunc("/agents", admin(s.listAgentsHandler)).Methods("GET")
	p.HandleFunc("/agents/{agentId}", admin(s.getAgentHandler)).Methods("GET")

	p.HandleFunc("/users", admin(s.listUsersHandler)).Methods("GET")
	p.HandleFunc("/users/{id}", admin(s.deleteUserHandler)).Methods("DELETE")
	p.HandleFunc("/changerole", admin(s.changeRoleHandler)).Methods("PATCH")

	limiter := newIPRateLimiter(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow)

	var h http.Handler = router
	h = limiter.middleware(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
	h = middleware.Recoverer(h)
	h = s.accessLog(h)
	h = middleware.RealIP(h)
	h = middleware.RequestID(h)
	return h
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.storage.Health(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
