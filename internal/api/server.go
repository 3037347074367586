// Package api exposes the escrow service over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fundlock/escrowd/internal/config"
	"github.com/fundlock/escrowd/internal/httputil"
	"github.com/fundlock/escrowd/internal/logging"
	"github.com/fundlock/escrowd/internal/metrics"
	"github.com/fundlock/escrowd/internal/middleware"
	"github.com/fundlock/escrowd/services/crowdfund"
)

const donateRoute = "/api/v1/campaigns/{id}/donate"

// Server wires the escrow engine to HTTP handlers.
type Server struct {
	svc     *crowdfund.Service
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewServer creates the API server.
func NewServer(svc *crowdfund.Service, logger *logging.Logger, m *metrics.Metrics) *Server {
	return &Server{svc: svc, logger: logger, metrics: m}
}

// Router assembles the full route table and middleware chain.
func (s *Server) Router(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Unknown operations and methods are rejected unconditionally, like an
	// unrecognized method selector.
	r.NotFoundHandler = http.HandlerFunc(s.handleUnknownOperation)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleUnknownOperation)

	auth := middleware.NewAuthMiddleware([]byte(cfg.JWTSecret), s.logger, []string{
		"/healthz",
		"/metrics",
	})
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, s.logger)
	cors := middleware.NewCORSMiddleware(cfg.AllowedOrigins)

	r.Use(middleware.LoggingMiddleware(s.logger))
	r.Use(middleware.MetricsMiddleware(crowdfund.ServiceID, s.metrics))
	r.Use(cors.Handler)
	r.Use(auth.Handler)
	r.Use(rateLimiter.Handler)
	r.Use(middleware.ValueMiddleware(donateRoute))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/campaigns", s.handleCreateCampaign).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns", s.handleListCampaigns).Methods(http.MethodGet)
	v1.HandleFunc("/campaigns/{id}", s.handleGetCampaign).Methods(http.MethodGet)
	v1.HandleFunc("/campaigns/{id}/donate", s.handleDonate).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/finalize", s.handleFinalize).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/pause", s.handlePause).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/resume", s.handleResume).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/force-fail", s.handleForceFail).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/refund", s.handleClaimRefund).Methods(http.MethodPost)
	v1.HandleFunc("/campaigns/{id}/verified", s.handleIsRecipientVerified).Methods(http.MethodGet)
	v1.HandleFunc("/campaigns/{id}/contributions/{contributor}", s.handleGetContribution).Methods(http.MethodGet)
	v1.HandleFunc("/recipients/{address}/verified", s.handleSetVerifiedRecipient).Methods(http.MethodPut)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/events/stream", s.handleEventStream).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	return r
}

func (s *Server) handleUnknownOperation(w http.ResponseWriter, r *http.Request) {
	httputil.WriteErrorResponse(w, r, http.StatusBadRequest,
		string(crowdfund.CodeOperationNotSupported), "operation not supported", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
}
