// Package api provides the HTTP server for finreport.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/buildinfo"
	"github.com/cleared-dev/finreport/internal/journal"
	"github.com/cleared-dev/finreport/internal/scope"
	"github.com/cleared-dev/finreport/internal/statements"
	"github.com/cleared-dev/finreport/internal/store"
)

// CallerHeader carries the authenticated caller id set by the upstream
// identity provider.
const CallerHeader = "X-Caller-ID"

// Server is the finreport HTTP API server.
type Server struct {
	db             *store.DB
	scope          *scope.Service
	resolver       *scope.Resolver
	accounts       *accounts.Service
	seeder         *accounts.Seeder
	poster         *journal.Poster
	engine         *statements.Engine
	logger         *zap.Logger
	reportCfg      statements.Config
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Services built by the server share it.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReportConfig sets the statement settings.
func WithReportConfig(cfg statements.Config) Option {
	return func(s *Server) { s.reportCfg = cfg }
}

// WithRequestTimeout bounds each request. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// NewServer creates a new API server over db.
func NewServer(db *store.DB, opts ...Option) *Server {
	s := &Server{
		db:             db,
		logger:         zap.NewNop(),
		reportCfg:      statements.DefaultConfig(),
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scope = scope.NewService(db, scope.WithLogger(s.logger))
	s.resolver = scope.NewResolver(db)
	s.accounts = accounts.NewService(db, accounts.WithLogger(s.logger))
	s.seeder = accounts.NewSeeder(db, accounts.WithSeedLogger(s.logger))
	s.poster = journal.NewPoster(db, journal.WithLogger(s.logger))
	s.engine = statements.NewEngine(db, statements.WithConfig(s.reportCfg), statements.WithLogger(s.logger))
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.requestTimeout > 0 {
		r.Use(middleware.Timeout(s.requestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireCaller)

		r.Get("/accounts", s.handleListOwnedAccounts)

		r.Route("/entities", func(r chi.Router) {
			r.Post("/", s.handleCreateEntity)
			r.Get("/", s.handleListEntities)

			r.Route("/{entityID}", func(r chi.Router) {
				r.Get("/", s.handleGetEntity)
				r.Put("/", s.handleUpdateEntity)
				r.Delete("/", s.handleDeleteEntity)
				r.Get("/stats", s.handleEntityStats)

				r.Route("/ledgers", func(r chi.Router) {
					r.Post("/", s.handleCreateLedger)
					r.Get("/", s.handleListLedgers)

					r.Route("/{ledger}", func(r chi.Router) {
						r.Get("/", s.handleGetLedger)
						r.Put("/", s.handleUpdateLedger)
						r.Delete("/", s.handleDeleteLedger)

						r.Group(func(r chi.Router) {
							r.Use(s.resolveLedger)
							s.ledgerRoutes(r)
						})
					})
				})
			})
		})
	})

	return r
}

// ledgerRoutes mounts the routes that operate on one resolved ledger.
func (s *Server) ledgerRoutes(r chi.Router) {
	r.Get("/stats", s.handleLedgerStats)
	r.Post("/chart-of-accounts", s.handleSeedChart)

	r.Get("/accounts", s.handleListAccounts)
	r.Post("/accounts", s.handleCreateAccount)
	r.Get("/balances", s.handleBalances)
	r.Get("/accounts/{accountID}", s.handleGetAccount)
	r.Put("/accounts/{accountID}", s.handleUpdateAccount)
	r.Delete("/accounts/{accountID}", s.handleDeleteAccount)

	r.Get("/transactions", s.handleListTransactions)
	r.Post("/transactions", s.handlePostTransaction)
	r.Get("/transactions/summary", s.handleTransactionSummary)
	r.Get("/transactions/{txID}", s.handleGetTransaction)
	r.Patch("/transactions/{txID}", s.handleUpdateTransaction)
	r.Delete("/transactions/{txID}", s.handleReverseTransaction)

	r.Get("/balance-sheet", s.handleBalanceSheet)
	r.Get("/income-statement", s.handleIncomeStatement)
	r.Get("/cash-flow-statement", s.handleCashFlow)
	r.Get("/trial-balance", s.handleTrialBalance)
	r.Get("/general-ledger", s.handleGeneralLedger)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}
