package devlicense

import (
	"strings"

	"github.com/google/uuid"

	"github.com/aionixone/portal-api/internal/domain/portal"
)

// ensureLicenses seeds a fixed set of licenses for an email on first login.
// Subsequent logins see the same records for the lifetime of the process.
func (s *Server) ensureLicenses(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.licenses[email]; ok {
		return
	}

	now := s.now()
	teamLimit := 50

	seeded := []portal.License{
		{
			ID:           "lic-" + uuid.NewString(),
			Organization: s.organization,
			Tier:         portal.TierPro,
			TRNLimit:     nil, // tier default applies
			ExpiresAt:    now.AddDate(1, 0, 0),
			IsActive:     true,
		},
		{
			ID:           "lic-" + uuid.NewString(),
			Organization: s.organization,
			Tier:         portal.TierTeam,
			TRNLimit:     &teamLimit,
			ExpiresAt:    now.AddDate(0, 3, 0),
			IsActive:     true,
		},
		{
			ID:           "lic-" + uuid.NewString(),
			Organization: s.organization,
			Tier:         portal.TierCommunity,
			TRNLimit:     nil,
			ExpiresAt:    now.AddDate(-1, 0, 0),
			IsActive:     false,
		},
	}

	for _, lic := range seeded {
		s.keys[lic.ID] = licenseKeyMaterial()
	}
	s.licenses[email] = seeded
}

// licensesFor returns the seeded licenses for an email. A user who somehow
// authenticated without being seeded sees an empty list, not an error.
func (s *Server) licensesFor(email string) []portal.License {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := s.licenses[email]
	out := make([]portal.License, len(seeded))
	copy(out, seeded)
	return out
}

// findLicense looks up a license by ID among the email's seeded records.
func (s *Server) findLicense(email, id string) (portal.License, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, lic := range s.licenses[email] {
		if lic.ID == id {
			return lic, s.keys[lic.ID], true
		}
	}
	return portal.License{}, "", false
}

func licenseKeyMaterial() string {
	return "AOX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
