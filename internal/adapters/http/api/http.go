// Package api declares HTTP contracts and route registration helpers for
// serve mode.
package api

import (
	"context"
	"net/http"

	"github.com/okian/pipeaudit/internal/app"
	"github.com/okian/pipeaudit/internal/domain/model"
)

// Auditor is the dependency the handlers need: run one audit over raw rows
// already read from the request.
type Auditor interface {
	Run(ctx context.Context, dealRows, activityRows []model.RawRecord) (*app.Report, error)
}

// Server wires HTTP routes for the audit API.
type Server struct {
	healthHandler *HealthHandler
	auditHandler  *AuditHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(auditor Auditor) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		auditHandler:  NewAuditHandler(auditor),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/audit", MetricsMiddleware(s.auditHandler.HandlePostAudit, "audit"))
}
