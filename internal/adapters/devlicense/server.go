package devlicense

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aionixone/portal-api/internal/domain/portal"
	httpx "github.com/aionixone/portal-api/internal/http"
)

// Config controls the dev license server behavior.
type Config struct {
	// Organization used for seeded license records. Defaults to "Aionix Dev".
	Organization string
	// CodeTTL is how long an issued one-time code stays valid. Default 10m.
	CodeTTL time.Duration
	// SessionTTL is the bearer token lifetime. Default 24h.
	SessionTTL time.Duration
	// Codes and Sessions default to a shared in-memory store.
	Codes    CodeStore
	Sessions SessionStore
	Logger   *slog.Logger
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Server serves the /api/portal contract the session proxy consumes. Any
// email can log in; the one-time code is logged instead of emailed, and each
// verified user gets a deterministic set of seeded licenses.
type Server struct {
	codes    CodeStore
	sessions SessionStore

	organization string
	codeTTL      time.Duration
	sessionTTL   time.Duration

	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	licenses map[string][]portal.License // keyed by email
	keys     map[string]string           // license ID -> key material
}

// NewServer constructs a dev license server from Config.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	codes := cfg.Codes
	sessions := cfg.Sessions
	if codes == nil || sessions == nil {
		mem := NewMemoryStore()
		if codes == nil {
			codes = mem
		}
		if sessions == nil {
			sessions = mem
		}
	}

	org := strings.TrimSpace(cfg.Organization)
	if org == "" {
		org = "Aionix Dev"
	}
	codeTTL := cfg.CodeTTL
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = portal.SessionTTL
	}

	return &Server{
		codes:        codes,
		sessions:     sessions,
		organization: org,
		codeTTL:      codeTTL,
		sessionTTL:   sessionTTL,
		logger:       logger,
		now:          now,
		licenses:     make(map[string][]portal.License),
		keys:         make(map[string]string),
	}
}

// Handler returns the HTTP handler serving the portal API contract.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/portal/auth/request-code", http.HandlerFunc(s.requestCode))
	mux.Handle("POST /api/portal/auth/verify-code", http.HandlerFunc(s.verifyCode))
	mux.Handle("GET /api/portal/me", http.HandlerFunc(s.me))
	mux.Handle("GET /api/portal/licenses", http.HandlerFunc(s.listLicenses))
	mux.Handle("GET /api/portal/licenses/{id}/key", http.HandlerFunc(s.licenseKey))
	mux.Handle("GET /api/portal/licenses/{id}/download", http.HandlerFunc(s.downloadLicense))

	return mux
}

func (s *Server) requestCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_input",
			Err:     errors.New("email is required"),
		})
		return
	}

	code, err := sixDigitCode()
	if err != nil {
		s.internalError(w, r, "generate code", err)
		return
	}

	issued := IssuedCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if err := s.codes.SaveCode(r.Context(), issued); err != nil {
		s.internalError(w, r, "save code", err)
		return
	}

	// No mailer in dev mode; the code lands in the log instead.
	s.logger.InfoContext(r.Context(), "one-time code issued",
		"email", email, "code", code, "expires_at", issued.ExpiresAt)

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_input",
			Err:     errors.New("email and code are required"),
		})
		return
	}

	issued, err := s.codes.GetCode(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.rejectCode(w)
			return
		}
		s.internalError(w, r, "load code", err)
		return
	}
	if issued.Code != strings.TrimSpace(req.Code) || s.now().After(issued.ExpiresAt) {
		s.rejectCode(w)
		return
	}

	// Single use: the code is consumed whether or not session creation succeeds.
	if err := s.codes.DeleteCode(r.Context(), email); err != nil {
		s.internalError(w, r, "consume code", err)
		return
	}

	sess := Session{
		Token:     uuid.NewString(),
		Email:     email,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.SaveSession(r.Context(), sess); err != nil {
		s.internalError(w, r, "save session", err)
		return
	}

	s.ensureLicenses(email)

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token": sess.Token,
		"user":  s.userRecord(email),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.userRecord(sess.Email))
}

func (s *Server) listLicenses(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.licensesFor(sess.Email))
}

func (s *Server) licenseKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	lic, key, found := s.findLicense(sess.Email, r.PathValue("id"))
	if !found {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("license not found"),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"license_id": lic.ID,
		"key":        key,
	})
}

func (s *Server) downloadLicense(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	lic, key, found := s.findLicense(sess.Email, r.PathValue("id"))
	if !found {
		httpx.WriteError(w, httpx.ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("license not found"),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"id":           lic.ID,
		"organization": lic.Organization,
		"tier":         lic.Tier,
		"trn_limit":    lic.TRNLimit,
		"expires_at":   lic.ExpiresAt,
		"is_active":    lic.IsActive,
		"key":          key,
		"issued_at":    s.now().UTC(),
	})
}

// authenticate resolves the bearer token to a session, writing a 401 when the
// credential is missing, unknown, or expired.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		s.rejectToken(w)
		return Session{}, false
	}

	sess, err := s.sessions.GetSession(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.rejectToken(w)
			return Session{}, false
		}
		s.internalError(w, r, "load session", err)
		return Session{}, false
	}
	if s.now().After(sess.ExpiresAt) {
		s.rejectToken(w)
		return Session{}, false
	}

	return sess, true
}

func (s *Server) rejectCode(w http.ResponseWriter) {
	httpx.WriteError(w, httpx.ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "invalid_code",
		Err:     errors.New("code is invalid or expired"),
	})
}

func (s *Server) rejectToken(w http.ResponseWriter) {
	httpx.WriteError(w, httpx.ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "unauthorized",
		Err:     errors.New("invalid or expired token"),
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), "dev license server error", "op", op, "error", err)
	httpx.WriteError(w, httpx.ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: "internal_error",
		Err:     errors.New("internal server error"),
	})
}

func (s *Server) userRecord(email string) map[string]string {
	return map[string]string{
		"email": email,
		"name":  displayName(email),
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
