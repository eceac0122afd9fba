// Package leads provides the lead intake bounded context module.
package leads

import (
	"scanner_backend/internal/adapters/storage"
	"scanner_backend/internal/delivery"
	apphttp "scanner_backend/internal/http"
	"scanner_backend/internal/leads/handler"
	"scanner_backend/internal/leads/repository"
	"scanner_backend/internal/leads/service"
	"scanner_backend/internal/scheduler"
	"scanner_backend/platform/logger"
	"scanner_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the lead intake bounded context implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// Deps carries the infrastructure the module needs from the composition root.
type Deps struct {
	Pool         *pgxpool.Pool
	Storage      storage.StorageService
	Dispatcher   scheduler.Dispatcher
	Orchestrator *delivery.Orchestrator
	Analyzer     service.Analyzer
	Bucket       string
	Validator    *validator.Validator
	Logger       *logger.Logger
}

// NewModule creates and wires the leads module.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)
	svc := service.New(repo, deps.Storage, deps.Dispatcher, deps.Orchestrator, deps.Analyzer, deps.Bucket, deps.Logger)

	return &Module{
		handler:    handler.New(svc, deps.Validator),
		service:    svc,
		repository: repo,
	}
}

func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the leads endpoints under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1, ctx.SubmitRateLimiter)
}

// Repository exposes the lead store for other composition-root consumers.
func (m *Module) Repository() *repository.Repository { return m.repository }

// Service exposes the intake service.
func (m *Module) Service() *service.Service { return m.service }
