package portal

// Package portal contains domain-level types for the customer portal.
// It is pure and free of framework/adapter concerns.

import "time"

// SessionCookieName is the browser cookie carrying the opaque bearer token
// issued by the license server. The token is never parsed locally.
const SessionCookieName = "session"

// SessionTTL is the lifetime of a portal session and of its cookie.
const SessionTTL = 24 * time.Hour

// Tier represents a license entitlement tier.
// Keep string form for easy JSON pass-through and display.
type Tier string

const (
	TierCommunity  Tier = "community"
	TierPro        Tier = "pro"
	TierTeam       Tier = "team"
	TierEnterprise Tier = "enterprise"
)

// Valid reports whether the tier is one of the known entitlement tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCommunity, TierPro, TierTeam, TierEnterprise:
		return true
	}
	return false
}

// User is the authenticated principal as reported by the license server.
// Only the fields the portal displays are modeled; anything else the remote
// returns is relayed untouched at the transport layer.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// License describes a customer's entitlement record. The license server owns
// the record; this layer only reads and displays it.
type License struct {
	ID           string    `json:"id"`
	Organization string    `json:"organization"`
	Tier         Tier      `json:"tier"`
	// TRNLimit is nil when the tier default applies.
	TRNLimit  *int      `json:"trn_limit"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// Expired reports whether the license has passed its expiry at the given time.
func (l License) Expired(now time.Time) bool {
	return !l.ExpiresAt.IsZero() && now.After(l.ExpiresAt)
}
