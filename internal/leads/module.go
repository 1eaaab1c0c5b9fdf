// Package leads provides the lead import bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"leadhub_backend/internal/events"
	apphttp "leadhub_backend/internal/http"
	"leadhub_backend/internal/leads/handler"
	"leadhub_backend/internal/leads/importer"
	"leadhub_backend/internal/leads/repository"
	"leadhub_backend/platform/config"
	"leadhub_backend/platform/httpkit"
	"leadhub_backend/platform/logger"
	"leadhub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// importRoles are allowed to run lead imports.
var importRoles = []string{"ADMIN", "ACQ_REP", "DISPO"}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	importer *importer.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	// Create shared repository
	repo := repository.New(pool)

	ledger := importer.NewLedger(repo, log)
	svc := importer.NewService(repo, ledger, eventBus, log)

	// Log finished imports so every run is visible even without the ledger.
	eventBus.Subscribe(events.LeadsImported{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadsImported)
		if !ok {
			return nil
		}

		log.Info("lead import finished",
			"mode", e.Mode,
			"created", e.CreatedCount,
			"duplicates", e.DuplicateCount,
			"errors", e.ErrorCount,
			"createdBy", e.CreatedBy,
		)
		return nil
	}))

	h := handler.New(svc, cfg, val)

	return &Module{
		handler:  h,
		importer: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ImportService returns the import service for external use.
func (m *Module) ImportService() *importer.Service {
	return m.importer
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication plus an import-capable role.
	leadsGroup := ctx.Protected.Group("/leads")
	leadsGroup.Use(httpkit.RequireAnyRole(importRoles...))
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
