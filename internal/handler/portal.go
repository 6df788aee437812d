package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tradiehq/portal-server-go/internal/audit"
	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/httputil"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/service"
)

// PortalHandler serves the unauthenticated customer-facing portal API. Every
// route takes the bearer token from the URL path; there are no sessions.
type PortalHandler struct {
	tokens     *service.TokenService
	quotes     *service.QuotePortalService
	invoices   *service.InvoicePortalService
	accessLogs *service.AccessLogService
	tightLimit func(http.Handler) http.Handler
}

func NewPortalHandler(
	tokens *service.TokenService,
	quotes *service.QuotePortalService,
	invoices *service.InvoicePortalService,
	accessLogs *service.AccessLogService,
	tightLimit func(http.Handler) http.Handler,
) *PortalHandler {
	return &PortalHandler{
		tokens:     tokens,
		quotes:     quotes,
		invoices:   invoices,
		accessLogs: accessLogs,
		tightLimit: tightLimit,
	}
}

func (h *PortalHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/validate/{token}", h.Validate)
	r.Get("/quotes/{token}", h.ViewQuote)
	r.Post("/quotes/{token}/accept", h.AcceptQuote)
	r.Post("/quotes/{token}/decline", h.DeclineQuote)
	r.Get("/invoices/{token}", h.ViewInvoice)

	// The most abusable routes get the tight per-IP limit.
	r.Group(func(r chi.Router) {
		r.Use(h.tightLimit)
		r.Get("/invoices/{token}/pdf", h.InvoicePDF)
		r.Post("/invoice-pay/{token}", h.InitiatePayment)
	})

	return r
}

func (h *PortalHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	info, err := h.tokens.Describe(r.Context(), token)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}

	h.accessLogs.Record(info.Token.ID, audit.ClientIP(r), r.UserAgent(), model.ActionValidate)

	resp := map[string]any{
		"valid":      true,
		"tokenType":  info.Token.TokenType,
		"resourceId": info.Token.ResourceID,
		"expiresAt":  info.Token.ExpiresAt.Format(time.RFC3339),
	}
	if info.Organization != nil {
		resp["organization"] = map[string]any{
			"id":          info.Organization.ID,
			"name":        info.Organization.Name,
			"tradingName": info.Organization.TradingName,
		}
	}
	if info.Customer != nil {
		resp["customer"] = map[string]any{
			"id":   info.Customer.ID,
			"name": info.Customer.Name,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PortalHandler) ViewQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.quotes.View(r.Context(), token, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PortalHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	quote, err := h.quotes.Accept(r.Context(), token, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"status":     quote.Status,
		"acceptedAt": formatTime(quote.AcceptedAt),
	})
}

func (h *PortalHandler) DeclineQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req struct {
		Reason *string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	quote, err := h.quotes.Decline(r.Context(), token, req.Reason, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"status":     quote.Status,
		"declinedAt": formatTime(quote.DeclinedAt),
	})
}

func (h *PortalHandler) ViewInvoice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.invoices.View(r.Context(), token, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PortalHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.invoices.PDFSnapshot(r.Context(), token, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PortalHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	intent, err := h.invoices.InitiatePayment(r.Context(), token, audit.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":   intent.SessionID,
		"checkoutUrl": intent.CheckoutURL,
	})
}

// writeInvalid renders validation failures in the shape the portal UI expects
// ({valid:false, ...}) while keeping the per-kind status codes.
func (h *PortalHandler) writeInvalid(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}
	writeJSON(w, httputil.StatusFromCode(appErr.Code), map[string]any{
		"valid": false,
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}
