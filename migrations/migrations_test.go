package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every seeded paid plan needs a price mapping for each provider, or
// checkout on a deployment using that provider fails with a configuration
// error against the shipped catalog.
func TestSeededPaidPlansMapEveryProvider(t *testing.T) {
	data, err := MigrationsFS.ReadFile("00004_seed_plans.sql")
	require.NoError(t, err)
	seed := string(data)

	paidPlans := 2 // plan_premium, plan_legacy
	for _, provider := range []string{`"stripe"`, `"payu"`} {
		assert.Equal(t, paidPlans, strings.Count(seed, provider),
			"each paid plan must carry a %s price id", provider)
	}
}
