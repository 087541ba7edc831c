// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"askliberia/internal/common/config"
	"askliberia/internal/common/database"
	"askliberia/internal/common/logger"
	"askliberia/internal/common/observability"
	"askliberia/internal/knowledge"
	"askliberia/internal/services/admin"
	"askliberia/internal/services/auth"
)

// Server is the HTTP gateway: SSE streaming for search and chat, a one-shot
// speech endpoint, and JSON endpoints for the admin console, developer
// portal, donations and accounts.
type Server struct {
	config    config.ServerConfig
	logger    logger.Logger
	knowledge *knowledge.Service
	admin     *admin.Service
	auth      *auth.Service
	store     *database.RedisClient
	obs       *observability.Observability

	mu    sync.Mutex
	gates map[string]*knowledge.Gate

	httpServer *http.Server
}

func New(cfg config.ServerConfig, know *knowledge.Service, adminSvc *admin.Service, authSvc *auth.Service, store *database.RedisClient, log logger.Logger) *Server {
	return &Server{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
		knowledge: know,
		admin:     adminSvc,
		auth:      authSvc,
		store:     store,
		gates:     make(map[string]*knowledge.Gate),
	}
}

// WithObservability attaches the otel instrumentation. Optional; handlers
// skip recording when absent.
func (s *Server) WithObservability(obs *observability.Observability) *Server {
	s.obs = obs
	return s
}

// recordRun emits the otel run counter and duration for one streaming run.
func (s *Server) recordRun(ctx context.Context, surface, outcome string, elapsed time.Duration) {
	if s.obs == nil {
		return
	}
	s.obs.RecordRun(ctx, surface, outcome)
	s.obs.RecordRunDuration(ctx, elapsed, surface)
}

// gate returns the generation gate for one UI surface, creating it on first
// use. Each surface supersedes only its own earlier runs.
func (s *Server) gate(surface string) *knowledge.Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[surface]
	if !ok {
		g = &knowledge.Gate{}
		s.gates[surface] = g
	}
	return g
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Streaming surfaces
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/speech", s.handleSpeech)

	// Accounts
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/google", s.handleGoogleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleAuthLogout)
	mux.HandleFunc("GET /api/auth/me", s.handleCurrentUser)

	// Public portal surfaces
	mux.HandleFunc("GET /api/sponsored", s.handleSponsoredList)
	mux.HandleFunc("POST /api/requests", s.handleSubmitAPIRequest)
	mux.HandleFunc("POST /api/donations", s.handleLogDonation)

	// Admin console
	mux.HandleFunc("POST /api/admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /api/admin/logout", s.handleAdminLogout)
	mux.HandleFunc("GET /api/admin/logs", s.requireAdmin(s.handleAdminLogs))
	mux.HandleFunc("GET /api/admin/stats", s.requireAdmin(s.handleAdminStats))
	mux.HandleFunc("GET /api/admin/users", s.requireAdmin(s.handleAdminUsers))
	mux.HandleFunc("GET /api/admin/requests", s.requireAdmin(s.handleAdminRequests))
	mux.HandleFunc("POST /api/admin/requests/decide", s.requireAdmin(s.handleDecideAPIRequest))
	mux.HandleFunc("GET /api/admin/donations", s.requireAdmin(s.handleAdminDonations))
	mux.HandleFunc("POST /api/admin/sponsored", s.requireAdmin(s.handleAddSponsored))
	mux.HandleFunc("DELETE /api/admin/sponsored/{id}", s.requireAdmin(s.handleDeleteSponsored))

	// Operational
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start runs the listener until ListenAndServe returns.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        s.config.Address,
		Handler:     s.Handler(),
		ReadTimeout: time.Duration(s.config.ReadTimeout) * time.Millisecond,
		// WriteTimeout stays at the configured value; zero keeps SSE
		// streams open indefinitely.
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Millisecond,
	}
	s.logger.Info("http server listening", map[string]interface{}{"address": s.config.Address})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
