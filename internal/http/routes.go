package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Portal PortalServiceInterface
	Cookie CookieConfig
	Logger *slog.Logger // Logger for handler errors (optional)
}

// NewRouter creates and configures the portal HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	handlers := &PortalHandlers{
		Svc:    services.Portal,
		Cookie: services.Cookie,
		Logger: services.Logger,
	}

	mux.Handle("POST /api/auth/send-code", http.HandlerFunc(handlers.SendCode))
	mux.Handle("POST /api/auth/verify", http.HandlerFunc(handlers.Verify))
	mux.Handle("GET /api/auth/me", http.HandlerFunc(handlers.Me))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(handlers.Logout))

	mux.Handle("GET /api/licenses", http.HandlerFunc(handlers.ListLicenses))
	mux.Handle("GET /api/licenses/{id}/key", http.HandlerFunc(handlers.LicenseKey))
	mux.Handle("GET /api/licenses/{id}/download", http.HandlerFunc(handlers.DownloadLicense))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}
