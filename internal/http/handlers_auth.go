package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/aionixone/portal-api/internal/errors"
	"github.com/aionixone/portal-api/internal/ports"
	"github.com/aionixone/portal-api/internal/service"
)

// PortalServiceInterface defines the interface for portal service operations.
type PortalServiceInterface interface {
	RequestCode(ctx context.Context, email string) (*ports.RemoteResponse, error)
	VerifyCode(ctx context.Context, email, code string) (*service.VerifyOutcome, error)
	CurrentUser(ctx context.Context, token string) (*ports.RemoteResponse, error)
	Licenses(ctx context.Context, token string) (*ports.RemoteResponse, error)
	LicenseKey(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error)
	LicenseDownload(ctx context.Context, token, licenseID string) (*ports.RemoteResponse, error)
	SessionInvalidated(reason string)
}

// PortalHandlers provides HTTP handlers for the customer portal surface.
type PortalHandlers struct {
	Svc    PortalServiceInterface
	Cookie CookieConfig
	Logger *slog.Logger
}

func (h *PortalHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SendCode handles the one-time code request endpoint.
// POST /api/auth/send-code.
func (h *PortalHandlers) SendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Svc.RequestCode(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !resp.OK() {
		// Remote rejection passes through untouched, no local translation.
		relayRemote(w, resp)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Verify handles the one-time code verification endpoint. On success it mints
// the session cookie and returns only the user record; the bearer token never
// appears in a response body.
// POST /api/auth/verify.
func (h *PortalHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	outcome, err := h.Svc.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !outcome.Remote.OK() {
		relayRemote(w, outcome.Remote)
		return
	}

	setSessionCookie(w, r, h.Cookie, outcome.Token)
	WriteJSON(w, http.StatusOK, map[string]json.RawMessage{"user": outcome.User})
}

// Me returns the authenticated user's record.
// GET /api/auth/me.
func (h *PortalHandlers) Me(w http.ResponseWriter, r *http.Request) {
	h.proxyAuthenticated(w, r, h.Svc.CurrentUser, relayRemote)
}

// Logout clears the session cookie. No remote call is made: token validity is
// owned by the license server and the cookie's absence is what ends the
// session locally.
// POST /api/auth/logout.
func (h *PortalHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r, h.Cookie)
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// fetchFunc fetches a remote resource on behalf of the bearer token.
type fetchFunc func(ctx context.Context, token string) (*ports.RemoteResponse, error)

// relayFunc renders a successful remote response to the client.
type relayFunc func(w http.ResponseWriter, resp *ports.RemoteResponse)

// proxyAuthenticated implements the uniform contract for the authenticated
// read endpoints: reject without an outbound call when the cookie is absent,
// clear the cookie on a remote 401, relay any other remote status verbatim.
func (h *PortalHandlers) proxyAuthenticated(w http.ResponseWriter, r *http.Request, fetch fetchFunc, relay relayFunc) {
	token := sessionToken(r)
	if token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "unauthorized",
			Err:     errors.New("authentication required"),
		})
		return
	}

	resp, err := fetch(r.Context(), token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The remote rejected the bearer credential; drop the stale cookie so
		// the next request starts from anonymous.
		clearSessionCookie(w, r, h.Cookie)
		h.Svc.SessionInvalidated("remote_rejected")
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "unauthorized",
			Err:     errors.New("session is no longer valid"),
		})
		return
	}

	relay(w, resp)
}

// relayRemote writes the remote status and body to the client unchanged.
func relayRemote(w http.ResponseWriter, resp *ports.RemoteResponse) {
	ct := resp.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// writeServiceError maps service-layer errors onto the error taxonomy.
// Transport and internal details never reach the client.
func (h *PortalHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_input", Err: err})
	case apperrors.ErrCodeUnauthorized:
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: err})
	default:
		h.logger().ErrorContext(r.Context(), "portal request failed",
			"path", r.URL.Path, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("internal server error"),
		})
	}
}
