package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tradiehq/portal-server-go/internal/config"
)

type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, from string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: config.EmailRequestTimeout,
		},
	}
}

// Enabled reports whether an API key was configured. Callers skip sending
// (rather than erroring) when email delivery is not set up.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type PortalLinkParams struct {
	To           string
	OrgName      string
	ResourceKind string // "quote" or "invoice"
	ResourceRef  string // human-readable number, e.g. Q-1042
	PortalURL    string
}

// SendPortalLink emails a shareable portal link to the customer.
func (c *Client) SendPortalLink(ctx context.Context, params PortalLinkParams) error {
	subject := fmt.Sprintf("%s has shared %s %s with you", params.OrgName, params.ResourceKind, params.ResourceRef)
	text := fmt.Sprintf(
		"%s has shared %s %s with you.\n\nView it here: %s\n\nThis link is private; please do not forward it.",
		params.OrgName, params.ResourceKind, params.ResourceRef, params.PortalURL,
	)

	payload, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{params.To},
		"subject": subject,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}
