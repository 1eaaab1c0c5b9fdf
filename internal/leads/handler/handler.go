// Package handler exposes the lead import engine over HTTP.
package handler

import (
	"strconv"

	"leadhub_backend/internal/leads/importer"
	"leadhub_backend/internal/leads/transport"
	"leadhub_backend/platform/apperr"
	"leadhub_backend/platform/config"
	"leadhub_backend/platform/httpkit"
	"leadhub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the import endpoints.
type Handler struct {
	svc *importer.Service
	cfg config.ImportConfig
	val *validator.Validator
}

// New creates the leads import handler.
func New(svc *importer.Service, cfg config.ImportConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

// RegisterRoutes mounts the import routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.importLeads)
	rg.POST("/import/dry-run", h.dryRunImport)
	rg.POST("/import/commit", h.commitImport)
	rg.GET("/import/runs", h.listImportRuns)
	rg.GET("/:leadId/events", h.listLeadEvents)
}

// importLeads is the legacy single-pass commit endpoint. It does not return
// a ledger importId.
func (h *Handler) importLeads(c *gin.Context) {
	req, identity, ok := h.bindImportRequest(c)
	if !ok {
		return
	}

	outcome, err := h.svc.ImportLeads(c.Request.Context(), req.Rows, identity.UserID(), h.buildOptions(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, outcome)
}

// dryRunImport previews an import without persisting leads.
func (h *Handler) dryRunImport(c *gin.Context) {
	req, identity, ok := h.bindImportRequest(c)
	if !ok {
		return
	}

	userID := identity.UserID()
	outcome, err := h.svc.DryRunImport(c.Request.Context(), req.Rows, &userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, outcome)
}

// commitImport runs a full commit and returns the ledger importId.
func (h *Handler) commitImport(c *gin.Context) {
	req, identity, ok := h.bindImportRequest(c)
	if !ok {
		return
	}

	outcome, err := h.svc.CommitImport(c.Request.Context(), req.Rows, identity.UserID(), h.buildOptions(req))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, outcome)
}

// listImportRuns returns the import-run audit history, newest first.
func (h *Handler) listImportRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			httpkit.HandleError(c, apperr.Validation("limit must be between 1 and 500"))
			return
		}
		limit = parsed
	}

	runs, err := h.svc.ImportRuns(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ImportRunResponse, len(runs))
	for i, run := range runs {
		items[i] = transport.ToImportRunResponse(run)
	}

	httpkit.OK(c, transport.ImportRunsResponse{Items: items})
}

// listLeadEvents returns a lead's timeline, oldest first.
func (h *Handler) listLeadEvents(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid lead id"))
		return
	}

	events, err := h.svc.LeadEvents(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.LeadEventResponse, len(events))
	for i, event := range events {
		items[i] = transport.ToLeadEventResponse(event)
	}

	httpkit.OK(c, transport.LeadEventsResponse{Items: items})
}

func (h *Handler) bindImportRequest(c *gin.Context) (transport.ImportLeadsRequest, httpkit.Identity, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return transport.ImportLeadsRequest{}, nil, false
	}

	var req transport.ImportLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return transport.ImportLeadsRequest{}, nil, false
	}

	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return transport.ImportLeadsRequest{}, nil, false
	}

	return req, identity, true
}

func (h *Handler) buildOptions(req transport.ImportLeadsRequest) importer.Options {
	opts := importer.Options{
		CreateNoteEvents: h.cfg.GetImportCreateNoteEvents(),
		DefaultSource:    h.cfg.GetImportDefaultSource(),
		Preset:           req.Preset,
	}

	if req.CreateNoteEvents != nil {
		opts.CreateNoteEvents = *req.CreateNoteEvents
	}
	if req.DefaultSource != "" {
		opts.DefaultSource = req.DefaultSource
	}

	return opts
}
