package estimate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateNeutralFactors(t *testing.T) {
	got, err := DefaultPricing().Estimate(Input{Tier: "optimization", Integrations: 1, Complexity: "moderate", Timeline: "standard"})
	require.NoError(t, err)
	assert.Equal(t, Result{
		Total:     2300,
		RangeMin:  1955,
		RangeMax:  2645,
		Breakdown: Breakdown{Base: 2000, Integrations: 300},
	}, got)
}

func TestEstimateSurchargesAndAddons(t *testing.T) {
	got, err := DefaultPricing().Estimate(Input{
		Tier: "quick", Integrations: 2, Complexity: "complex", Timeline: "urgent",
		Training: true, Support: true,
	})
	require.NoError(t, err)

	// base 1100, complexity +440, timeline +770, addons 900
	assert.Equal(t, int64(3210), got.Total)
	assert.Equal(t, Breakdown{Base: 500, Integrations: 600, Complexity: 440, Timeline: 770, Addons: 900}, got.Breakdown)
}

func TestEstimateDiscounts(t *testing.T) {
	got, err := DefaultPricing().Estimate(Input{Tier: "quick", Complexity: "simple", Timeline: "flexible", Training: true})
	require.NoError(t, err)

	// base 500, complexity -100, timeline -40, addons 500
	assert.Equal(t, int64(860), got.Total)
	assert.Equal(t, int64(731), got.RangeMin)
	assert.Equal(t, int64(989), got.RangeMax)
	assert.Equal(t, int64(-100), got.Breakdown.Complexity)
	assert.Equal(t, int64(-40), got.Breakdown.Timeline)
}

func TestEstimateRejectsUnknownValues(t *testing.T) {
	p := DefaultPricing()
	cases := map[string]Input{
		"tier":         {Tier: "platinum", Complexity: "simple", Timeline: "standard"},
		"complexity":   {Tier: "quick", Complexity: "insane", Timeline: "standard"},
		"timeline":     {Tier: "quick", Complexity: "simple", Timeline: "yesterday"},
		"integrations": {Tier: "quick", Complexity: "simple", Timeline: "standard", Integrations: -1},
	}
	for field, in := range cases {
		_, err := p.Estimate(in)
		var ie *InputError
		require.True(t, errors.As(err, &ie), field)
		assert.Equal(t, field, ie.Field)
	}
}

func TestLoadPricingOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
tiers:
  quick: 750
  enterprise: 12000
integration: 250
`), 0o644))

	p, err := LoadPricing(path)
	require.NoError(t, err)
	assert.Equal(t, 750.0, p.Tiers["quick"])
	assert.Equal(t, 12000.0, p.Tiers["enterprise"])
	assert.Equal(t, 2000.0, p.Tiers["optimization"])
	assert.Equal(t, 250.0, p.Integration)
	assert.Equal(t, 500.0, p.Training)
}

func TestLoadPricingEmptyPathAndErrors(t *testing.T) {
	p, err := LoadPricing("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPricing(), p)

	_, err = LoadPricing(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("support: -5\n"), 0o644))
	_, err = LoadPricing(bad)
	require.Error(t, err)
}
