// Package payment talks to the checkout gateway used to collect order
// payments. The gateway follows the usual OAuth2 client-credentials flow:
// exchange the client id/secret for a short lived access token, then create
// a checkout session for the order amount and redirect the customer to the
// returned approval URL.
package payment

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/pkg/http"
)

// Session is a checkout session created at the gateway. The customer is sent
// to PayURL and comes back to the frontend verify page with success=true|false.
type Session struct {
	ID     string
	PayURL string
}

// Gateway creates checkout sessions for orders.
type Gateway interface {
	CreateSession(ctx context.Context, orderID string, amount float64) (*Session, error)
}

type gateway struct {
	baseURL      string
	clientID     string
	clientSecret string
	frontendURL  string
	timeout      time.Duration
}

// New builds a Gateway from the application config.
func New(cfg config.Config) Gateway {
	return &gateway{
		baseURL:      strings.TrimRight(cfg.PaymentBaseURL, "/"),
		clientID:     cfg.PaymentClientID,
		clientSecret: cfg.PaymentClientSecret,
		frontendURL:  strings.TrimRight(cfg.FrontendURL, "/"),
		timeout:      30 * time.Second,
	}
}

func (g *gateway) accessToken(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(g.clientID + ":" + g.clientSecret))

	form := url.Values{"grant_type": {"client_credentials"}}
	resp, err := http.Post(g.baseURL+"/v1/oauth2/token").
		WithContext(ctx).
		Header("Authorization", "Basic "+basic).
		Header("Content-Type", "application/x-www-form-urlencoded").
		Body(form.Encode()).
		Timeout(g.timeout).
		Send()
	if err != nil {
		return "", fmt.Errorf("payment: token request: %w", err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("payment: token request failed with status %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("payment: decode token: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("payment: gateway returned empty access token")
	}
	return out.AccessToken, nil
}

type sessionLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type sessionResult struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Links  []sessionLink `json:"links"`
}

// CreateSession opens a checkout session for the given order. The return and
// cancel URLs point at the frontend verify page so the webhook handler can
// settle the order either way.
func (g *gateway) CreateSession(ctx context.Context, orderID string, amount float64) (*Session, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": orderID,
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         fmt.Sprintf("%.2f", amount),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": fmt.Sprintf("%s/verify?success=true&orderId=%s", g.frontendURL, orderID),
			"cancel_url": fmt.Sprintf("%s/verify?success=false&orderId=%s", g.frontendURL, orderID),
		},
	}

	// Session creation is not idempotent, so never retry it.
	resp, err := http.Post(g.baseURL+"/v2/checkout/orders").
		WithContext(ctx).
		Bearer(token).
		Body(payload).
		Timeout(g.timeout).
		Retry(1, 0).
		Send()
	if err != nil {
		return nil, fmt.Errorf("payment: create session: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("payment: create session failed with status %d: %s", resp.StatusCode, resp.Text())
	}

	var result sessionResult
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("payment: decode session: %w", err)
	}

	s := &Session{ID: result.ID, PayURL: approveURL(result.Links)}
	if s.PayURL == "" {
		return nil, fmt.Errorf("payment: session %s has no approval link", result.ID)
	}
	return s, nil
}

func approveURL(links []sessionLink) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}
