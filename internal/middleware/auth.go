package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tradiehq/portal-server-go/internal/audit"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/repository"
	"github.com/tradiehq/portal-server-go/internal/util"
)

type contextKey string

const OrganizationContextKey contextKey = "organization"

func GetOrganization(ctx context.Context) *model.Organization {
	if org, ok := ctx.Value(OrganizationContextKey).(*model.Organization); ok {
		return org
	}
	return nil
}

// APIKeyMiddleware authenticates the business-side token management routes.
// The portal routes stay unauthenticated; the bearer token in the path is
// their entire auth model.
type APIKeyMiddleware struct {
	orgRepo repository.OrganizationRepository
}

func NewAPIKeyMiddleware(orgRepo repository.OrganizationRepository) *APIKeyMiddleware {
	return &APIKeyMiddleware{orgRepo: orgRepo}
}

func (m *APIKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing API key",
			})
			return
		}

		keyHash := util.HashAPIKey(key)
		org, err := m.orgRepo.FindByAPIKeyHash(r.Context(), keyHash)
		if err != nil {
			log.Error().Err(err).Msg("api key middleware: database error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		if org == nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid API key",
			})
			return
		}

		ctx := context.WithValue(r.Context(), OrganizationContextKey, org)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
