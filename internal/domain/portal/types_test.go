package portal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierValid(t *testing.T) {
	for _, tier := range []Tier{TierCommunity, TierPro, TierTeam, TierEnterprise} {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, Tier("platinum").Valid())
	assert.False(t, Tier("").Valid())
}

func TestLicenseExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, License{ExpiresAt: now.AddDate(1, 0, 0)}.Expired(now))
	assert.True(t, License{ExpiresAt: now.AddDate(-1, 0, 0)}.Expired(now))
	assert.False(t, License{}.Expired(now), "zero expiry means no expiry")
}
