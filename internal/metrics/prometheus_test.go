package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.LoginSucceeded(true)
	c.LoginSucceeded(false)
	c.LoginFailed()
	c.StatusPolled(PollLive, 7)
	c.StatusPolled(PollFallback, 0)
	c.PurchaseCreated()
	c.AdminCommandLogged()

	assert.InDelta(t, 2, testutil.ToFloat64(c.LoginSuccessTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.UserRegisteredTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.LoginFailureTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.StatusPollsTotal.WithLabelValues(PollLive)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.StatusPollsTotal.WithLabelValues(PollFallback)), 0)
	// Fallback polls leave the last live player count in place.
	assert.InDelta(t, 7, testutil.ToFloat64(c.PlayersOnlineGauge), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.PurchasesTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.AdminCommandsTotal), 0)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.LoginSucceeded(true)
		c.LoginFailed()
		c.StatusPolled(PollLive, 1)
		c.PurchaseCreated()
		c.AdminCommandLogged()
	})
}

func TestNewRegistry_HasRuntimeCollectors(t *testing.T) {
	families, err := NewRegistry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}
