package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	apperrors "github.com/aionixone/portal-api/internal/errors"
	"github.com/aionixone/portal-api/internal/observability/statsd"
	"github.com/aionixone/portal-api/internal/ports"
)

// PortalServiceOptions groups dependencies for PortalService.
type PortalServiceOptions struct {
	LicenseServer ports.LicenseServer
	Metrics       statsd.Sink
	Logger        *slog.Logger
}

// PortalService orchestrates portal flows against the remote license server.
// It validates inputs before any outbound call, converts transport failures
// into internal errors whose detail stays server-side, and leaves remote
// non-success responses untouched so handlers can relay them verbatim.
type PortalService struct {
	remote  ports.LicenseServer
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewPortalService constructs a new PortalService.
func NewPortalService(opts PortalServiceOptions) *PortalService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PortalService{
		remote:  opts.LicenseServer,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// VerifyOutcome is the result of a code verification attempt. Remote is
// always set; Token and User are populated only on remote success. The token
// must only ever travel onward inside the session cookie.
type VerifyOutcome struct {
	Remote *ports.RemoteResponse
	Token  string
	User   json.RawMessage
}

// RequestCode forwards a one-time code request to the license server.
func (s *PortalService) RequestCode(ctx context.Context, email string) (*ports.RemoteResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}

	resp, err := s.remote.RequestCode(ctx, email)
	if err != nil {
		return nil, s.transportFailure(ctx, "request one-time code", err)
	}

	s.count("auth.code_requested", remoteTags(resp))
	return resp, nil
}

// VerifyCode exchanges a one-time code for a session token. On remote success
// the `{token, user}` payload is parsed; a success response without a usable
// token is treated as unparseable, the same as a transport failure.
func (s *PortalService) VerifyCode(ctx context.Context, email, code string) (*VerifyOutcome, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.ValidationField("email", "email is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.ValidationField("code", "code is required")
	}

	resp, err := s.remote.VerifyCode(ctx, email, code)
	if err != nil {
		return nil, s.transportFailure(ctx, "verify one-time code", err)
	}

	if !resp.OK() {
		s.count("auth.verify", mergeTags(remoteTags(resp), "result", "rejected"))
		return &VerifyOutcome{Remote: resp}, nil
	}

	var payload struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, s.transportFailure(ctx, "decode verify response", err)
	}
	if payload.Token == "" {
		return nil, s.transportFailure(ctx, "decode verify response", apperrors.Internal("verify response missing token"))
	}

	s.count("auth.verify", mergeTags(remoteTags(resp), "result", "success"))
	return &VerifyOutcome{
		Remote: resp,
		Token:  payload.Token,
		User:   payload.User,
	}, nil
}

// CurrentUser fetches the user record for the bearer token.
func (s *PortalService) CurrentUser(ctx context.Context, token string) (*ports.RemoteResponse, error) {
	resp, err := s.remote.Me(ctx, token)
	if err != nil {
		return nil, s.transportFailure(ctx, "fetch current user", err)
	}
	return resp, nil
}

// Licenses lists the licenses visible to the bearer token.
func (s *PortalService) Licenses(ctx context.Context, token string) (*ports.RemoteResponse, error) {
	resp, err := s.remote.Licenses(ctx, token)
	if err != nil {
		return nil, s.transportFailure(ctx, "list licenses", err)
	}
	return resp, nil
}

// LicenseKey fetches key material for a license.
func (s *PortalService) LicenseKey(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error) {
	if strings.TrimSpace(licenseID) == "" {
		return nil, apperrors.ValidationField("id", "license id is required")
	}

	resp, err := s.remote.LicenseKey(ctx, token, licenseID)
	if err != nil {
		return nil, s.transportFailure(ctx, "fetch license key", err)
	}
	return resp, nil
}

// LicenseDownload fetches the raw license file body.
func (s *PortalService) LicenseDownload(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error) {
	if strings.TrimSpace(licenseID) == "" {
		return nil, apperrors.ValidationField("id", "license id is required")
	}

	resp, err := s.remote.LicenseDownload(ctx, token, licenseID)
	if err != nil {
		return nil, s.transportFailure(ctx, "download license", err)
	}
	return resp, nil
}

// SessionInvalidated records that a remote 401 forced a session back to
// anonymous. Cookie clearing itself happens at the handler layer.
func (s *PortalService) SessionInvalidated(reason string) {
	s.count("session.invalidated", map[string]string{"reason": reason})
}

func (s *PortalService) transportFailure(ctx context.Context, op string, err error) error {
	// Full detail stays server-side; clients get a generic failure.
	s.logger.ErrorContext(ctx, "license server call failed", "op", op, "error", err)
	s.count("remote.transport_failure", map[string]string{"op": strings.ReplaceAll(op, " ", "_")})
	return apperrors.Transport(err, "license server unavailable")
}

func (s *PortalService) count(name string, tags map[string]string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(name, 1, tags)
}

func remoteTags(resp *ports.RemoteResponse) map[string]string {
	if resp == nil {
		return nil
	}
	status := "error"
	if resp.OK() {
		status = "ok"
	}
	return map[string]string{"remote_status": status}
}

func mergeTags(tags map[string]string, key, value string) map[string]string {
	if tags == nil {
		tags = make(map[string]string, 1)
	}
	tags[key] = value
	return tags
}
