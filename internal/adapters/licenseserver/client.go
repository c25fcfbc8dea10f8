package licenseserver

// Package licenseserver implements the ports.LicenseServer contract over
// HTTP against the remote identity/license service.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aionixone/portal-api/internal/ports"
)

// Config captures how to reach the license server.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Client is an HTTP client for the license server's portal API. Responses are
// read fully and returned as-is; the caller decides how to relay them.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

var _ ports.LicenseServer = (*Client)(nil)

// NewClient builds a license server client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("license server base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse license server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("license server url %q must be absolute", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: base, client: hc}, nil
}

// RequestCode forwards the one-time code request for the given email.
func (c *Client) RequestCode(ctx context.Context, email string) (*ports.RemoteResponse, error) {
	return c.postJSON(ctx, "/api/portal/auth/request-code", map[string]string{"email": email})
}

// VerifyCode exchanges the emailed code for a token and user record.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (*ports.RemoteResponse, error) {
	return c.postJSON(ctx, "/api/portal/auth/verify-code", map[string]string{"email": email, "code": code})
}

// Me fetches the user record for the bearer token.
func (c *Client) Me(ctx context.Context, token string) (*ports.RemoteResponse, error) {
	return c.get(ctx, "/api/portal/me", token)
}

// Licenses lists the licenses visible to the bearer token.
func (c *Client) Licenses(ctx context.Context, token string) (*ports.RemoteResponse, error) {
	return c.get(ctx, "/api/portal/licenses", token)
}

// LicenseKey fetches the key material for a license.
func (c *Client) LicenseKey(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error) {
	return c.get(ctx, "/api/portal/licenses/"+url.PathEscape(licenseID)+"/key", token)
}

// LicenseDownload fetches the raw license file body.
func (c *Client) LicenseDownload(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error) {
	return c.get(ctx, "/api/portal/licenses/"+url.PathEscape(licenseID)+"/download", token)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*ports.RemoteResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create license server request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path, token string) (*ports.RemoteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create license server request: %w", err)
	}
	// Cookie value is opaque; attach it verbatim.
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req)
}

// endpoint joins the base URL with an already-escaped request path.
func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.baseURL.String(), "/") + path
}

func (c *Client) do(req *http.Request) (*ports.RemoteResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("license server request failed: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, errors.Join(
				fmt.Errorf("read license server response: %w", readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return nil, fmt.Errorf("read license server response: %w", readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return nil, fmt.Errorf("close response body: %w", err)
	}

	return &ports.RemoteResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
