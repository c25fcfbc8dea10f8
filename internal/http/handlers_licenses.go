package httpx

import (
	"context"
	"net/http"

	"github.com/aionixone/portal-api/internal/ports"
)

// ListLicenses returns the licenses visible to the session.
// GET /api/licenses.
func (h *PortalHandlers) ListLicenses(w http.ResponseWriter, r *http.Request) {
	h.proxyAuthenticated(w, r, h.Svc.Licenses, relayRemote)
}

// LicenseKey returns the key material for a license.
// GET /api/licenses/{id}/key.
func (h *PortalHandlers) LicenseKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.proxyAuthenticated(w, r, func(ctx context.Context, token string) (*ports.RemoteResponse, error) {
		return h.Svc.LicenseKey(ctx, token, id)
	}, relayRemote)
}

// DownloadLicense returns the raw license file. The remote body is relayed
// byte for byte; only the content type and disposition headers are rewritten
// so browsers save it as a file.
// GET /api/licenses/{id}/download.
func (h *PortalHandlers) DownloadLicense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.proxyAuthenticated(w, r, func(ctx context.Context, token string) (*ports.RemoteResponse, error) {
		return h.Svc.LicenseDownload(ctx, token, id)
	}, relayLicenseFile)
}

func relayLicenseFile(w http.ResponseWriter, resp *ports.RemoteResponse) {
	if !resp.OK() {
		relayRemote(w, resp)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="license.json"`)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
