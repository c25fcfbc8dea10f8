package ports

// Package ports defines interfaces (hexagonal ports) for the portal's
// outbound dependencies. Implementations live in internal/adapters;
// orchestration in internal/service.

import "context"

// RemoteResponse captures what the license server answered. Non-success
// statuses are data here, not errors: handlers relay them verbatim.
type RemoteResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the remote status is a 2xx success.
func (r *RemoteResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// LicenseServer is the outbound contract to the remote identity/license
// service. A returned error means the remote could not be reached or its
// response could not be read; everything else surfaces as a RemoteResponse.
type LicenseServer interface {
	// RequestCode asks the remote to email a one-time login code.
	RequestCode(ctx context.Context, email string) (*RemoteResponse, error)

	// VerifyCode exchanges an emailed code for a bearer token and user record.
	VerifyCode(ctx context.Context, email, code string) (*RemoteResponse, error)

	// Me fetches the user record for the bearer token.
	Me(ctx context.Context, token string) (*RemoteResponse, error)

	// Licenses lists the licenses visible to the bearer token.
	Licenses(ctx context.Context, token string) (*RemoteResponse, error)

	// LicenseKey fetches the signing key material for a license.
	LicenseKey(ctx context.Context, token, licenseID string) (*RemoteResponse, error)

	// LicenseDownload fetches the raw license file body.
	LicenseDownload(ctx context.Context, token, licenseID string) (*RemoteResponse, error)
}
