// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fatura/internal/auth"
	"fatura/internal/cache"
	"fatura/internal/log"
	"fatura/internal/middleware/ratelimit"
	"fatura/internal/middleware/security"
	"fatura/internal/middleware/trace"
	"fatura/internal/services"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Ledger       *services.LedgerService
	Installments *services.InstallmentService
	Invoices     *services.InvoiceService
	Summary      *services.SummaryService
	Auth         auth.Authenticator
	Tokens       *auth.JWTManager

	// Ready is pinged by /readyz. Nil means always ready.
	Ready Pinger
	// Caches is stopped on shutdown when set.
	Caches *cache.Manager
	// Logger defaults to the process default logger.
	Logger *log.Logger

	RateLimit ratelimit.Config
}

// Server is the API server: an http.Server plus the middleware state that
// must be released on shutdown.
type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	metrics  *httpMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.FromContext(context.Background())
	}
	if deps.RateLimit.RequestsPerMinute <= 0 {
		deps.RateLimit = ratelimit.DefaultConfig()
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		deps:     deps,
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		detector: security.NewDetector(),
		metrics:  newHTTPMetrics(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.routes(mux)

	s.Handler = chain(mux,
		s.tracer.Middleware,
		log.Middleware(deps.Logger.WithComponent(log.ComponentHTTP)),
		log.RequestIDMiddleware(trace.RequestID),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited),
		s.detector.Middleware,
		s.metrics.Middleware,
	)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	authed := requireAuth(s.deps.Tokens)
	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	api("GET /api/accounts", s.handleListAccounts)
	api("POST /api/accounts", s.handleCreateAccount)
	api("GET /api/accounts/{id}", s.handleGetAccount)
	api("PATCH /api/accounts/{id}", s.handlePatchAccount)
	api("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	api("GET /api/transactions", s.handleListTransactions)
	api("POST /api/transactions", s.handleCreateTransaction)
	api("GET /api/transactions/{id}", s.handleGetTransaction)
	api("PATCH /api/transactions/{id}", s.handlePatchTransaction)
	api("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api("GET /api/bills", s.handleListBills)
	api("POST /api/bills", s.handleCreateBill)
	api("GET /api/bills/{id}", s.handleGetBill)
	api("PATCH /api/bills/{id}", s.handlePatchBill)
	api("DELETE /api/bills/{id}", s.handleDeleteBill)

	api("GET /api/categories", s.handleListCategories)
	api("POST /api/categories", s.handleCreateCategory)
	api("GET /api/categories/{id}", s.handleGetCategory)
	api("PATCH /api/categories/{id}", s.handlePatchCategory)
	api("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api("GET /api/invoices", s.handleListInvoices)
	api("POST /api/invoices/recompute", s.handleRecomputeInvoice)

	api("POST /api/installments/preview", s.handlePreviewInstallments)
	api("POST /api/installments", s.handleCreateInstallments)
	api("GET /api/installments/{group}", s.handleInstallmentGroup)

	api("GET /api/billing/invoice-month", s.handleInvoiceMonth)
	api("GET /api/summary/monthly", s.handleMonthlySummary)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		"component", log.ComponentRateLimit,
		"client_ip", s.detector.ExtractClientIP(r),
		"method", r.Method,
		"path", r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "Rate limit exceeded. Please try again later."})
}

// Shutdown gracefully shuts down the server and its background cleanups.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		if s.deps.Caches != nil {
			s.deps.Caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)

		m := s.tracer.GetMetrics()
		s.deps.Logger.Info("HTTP server stopped",
			"total_requests", m.TotalRequests,
			"avg_response_us", m.AverageResponseTime,
			"rate_limited", s.limiter.Rejected(),
			"suspicious", s.detector.Suspicious())
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "storage unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
