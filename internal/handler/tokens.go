package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tradiehq/portal-server-go/internal/audit"
	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/mailer"
	"github.com/tradiehq/portal-server-go/internal/middleware"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/service"
)

// LinkMailer sends the shareable link to the customer when requested.
type LinkMailer interface {
	Enabled() bool
	SendPortalLink(ctx context.Context, params mailer.PortalLinkParams) error
}

// TokenAdminHandler serves the authenticated business-side token management
// routes: issue, revoke, and the audit trail.
type TokenAdminHandler struct {
	tokens     *service.TokenService
	accessLogs *service.AccessLogService
	mailer     LinkMailer
}

func NewTokenAdminHandler(
	tokens *service.TokenService,
	accessLogs *service.AccessLogService,
	linkMailer LinkMailer,
) *TokenAdminHandler {
	return &TokenAdminHandler{
		tokens:     tokens,
		accessLogs: accessLogs,
		mailer:     linkMailer,
	}
}

func (h *TokenAdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Issue)
	r.Delete("/{tokenID}", h.Revoke)
	r.Get("/{tokenID}/access-logs", h.AccessLogs)

	return r
}

func (h *TokenAdminHandler) Issue(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r.Context())
	if org == nil {
		writeError(w, apperrors.Unauthorized("Not authenticated"))
		return
	}

	var req struct {
		ResourceType string `json:"resource_type"`
		ResourceID   string `json:"resource_id"`
		SendEmail    bool   `json:"send_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.ResourceID == "" {
		writeError(w, apperrors.MissingRequired("resource_id"))
		return
	}

	result, err := h.tokens.Issue(r.Context(), service.IssueParams{
		TokenType:  model.TokenType(req.ResourceType),
		ResourceID: req.ResourceID,
		OrgID:      org.ID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	eventType := audit.EventTokenIssued
	if result.Reused {
		eventType = audit.EventTokenReused
	}
	audit.LogFromRequest(r, audit.Event{
		Type:    eventType,
		TokenID: result.Token.ID,
		OrgID:   org.ID,
	})

	emailSent := false
	if req.SendEmail {
		emailSent = h.sendLink(r.Context(), result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      result.Token.Token,
		"portal_url": result.PortalURL,
		"expires_at": result.Token.ExpiresAt.Format(time.RFC3339),
		"reused":     result.Reused,
		"email_sent": emailSent,
	})
}

func (h *TokenAdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r.Context())
	if org == nil {
		writeError(w, apperrors.Unauthorized("Not authenticated"))
		return
	}

	tokenID := chi.URLParam(r, "tokenID")
	if err := h.tokens.Revoke(r.Context(), tokenID, org.ID); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventTokenRevoked,
		TokenID: tokenID,
		OrgID:   org.ID,
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TokenAdminHandler) AccessLogs(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrganization(r.Context())
	if org == nil {
		writeError(w, apperrors.Unauthorized("Not authenticated"))
		return
	}

	tokenID := chi.URLParam(r, "tokenID")

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := parseIntParam(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := parseIntParam(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	logs, total, err := h.accessLogs.List(r.Context(), tokenID, org.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []model.PortalAccessLog{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":    logs,
		"total":   total,
		"hasMore": offset+len(logs) < total,
	})
}

// sendLink emails the portal link when the customer has an address on file.
// Failures are logged and reported in the response, never surfaced as errors.
func (h *TokenAdminHandler) sendLink(ctx context.Context, result *service.IssueResult) bool {
	if !h.mailer.Enabled() {
		return false
	}
	if result.CustomerEmail == nil || *result.CustomerEmail == "" {
		return false
	}

	kind := "quote"
	if result.Token.TokenType == model.TokenTypeInvoice {
		kind = "invoice"
	}

	err := h.mailer.SendPortalLink(ctx, mailer.PortalLinkParams{
		To:           *result.CustomerEmail,
		OrgName:      result.OrgName,
		ResourceKind: kind,
		ResourceRef:  result.ResourceRef,
		PortalURL:    result.PortalURL,
	})
	if err != nil {
		log.Warn().Err(err).Str("tokenId", result.Token.ID).Msg("failed to email portal link")
		return false
	}
	return true
}
