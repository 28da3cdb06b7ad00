package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// An abandoned redirect checkout leaves an incomplete subscription row
// behind. The active lookup must not match it, or it would shadow the
// synthetic free subscription and block the user from retrying until the
// provider expires the row.
func TestActiveSubscriptionLookupStatusSet(t *testing.T) {
	for _, status := range []string{"'trialing'", "'active'", "'past_due'"} {
		assert.Contains(t, getActiveSubscriptionForUser, status)
	}
	for _, status := range []string{"'incomplete'", "'canceled'", "'unpaid'"} {
		assert.NotContains(t, getActiveSubscriptionForUser, status)
	}
}
