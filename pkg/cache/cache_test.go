package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finstmt/fsg/internal/testutil"
	"github.com/finstmt/fsg/pkg/report"
)

func testCache(t *testing.T) (*Cache, *testutil.Redis) {
	t.Helper()

	r := testutil.NewRedis(t)
	cfg := &Config{Enabled: true, Address: r.Addr(), Prefix: "fsg", TTL: time.Minute}
	return New(r.Client, cfg), r
}

func sampleRendered() *report.Rendered {
	return &report.Rendered{
		RunID:    "run-1",
		ReportID: "income",
		Title:    "Income Statement",
		Years:    []int{2024, 2025},
		Rows: []report.RenderedRow{
			{Position: 1, Kind: report.RowVariable, Label: "Revenue", Values: map[int]float64{2024: 1500, 2025: 2000}},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Enabled: true}
	assert.ErrorIs(t, cfg.Validate(), ErrAddressRequired)

	cfg.Address = "localhost:6379"
	assert.NoError(t, cfg.Validate())

	disabled := &Config{}
	assert.NoError(t, disabled.Validate())
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	key := c.Key("income", "fp123", "ltm12")

	missed, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missed)

	require.NoError(t, c.Set(ctx, key, sampleRendered()))

	hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "income", hit.ReportID)
	assert.Equal(t, map[int]float64{2024: 1500, 2025: 2000}, hit.Rows[0].Values)
}

func TestCacheKeyIsScoped(t *testing.T) {
	c, _ := testCache(t)

	assert.Equal(t, "fsg:rendered:income:fp123:ltm12", c.Key("income", "fp123", "ltm12"))
	assert.NotEqual(t, c.Key("income", "a", "w"), c.Key("income", "b", "w"))
}

func TestCacheTTLExpiry(t *testing.T) {
	c, r := testCache(t)
	ctx := context.Background()
	key := c.Key("income", "fp123", "annual")

	require.NoError(t, c.Set(ctx, key, sampleRendered()))

	// miniredis advances TTLs manually.
	r.Server.FastForward(2 * time.Minute)

	expired, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()
	key := c.Key("income", "fp123", "annual")

	require.NoError(t, c.Set(ctx, key, sampleRendered()))
	require.NoError(t, c.Invalidate(ctx, key))

	gone, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
