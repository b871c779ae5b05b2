package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleep = orig })
	return &waits
}

func throttleConfig(mutate func(*config.Config)) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DelayMin = 2 * time.Second
	cfg.DelayMax = 2 * time.Second
	cfg.BatchSize = 3
	cfg.BatchPause = time.Minute
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func TestThrottle_Wait_PausesAtBatchBoundary(t *testing.T) {
	waits := stubSleep(t)
	th := NewThrottle(throttleConfig(nil), logging.NewNop())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, th.Wait(ctx))
	}

	// Six per-message delays plus a batch pause after the 3rd and 6th.
	require.Len(t, *waits, 8)
	assert.Equal(t, time.Minute, (*waits)[3])
	assert.Equal(t, time.Minute, (*waits)[7])
}

func TestThrottle_Wait_DelayWithinBounds(t *testing.T) {
	waits := stubSleep(t)
	th := NewThrottle(throttleConfig(func(cfg *config.Config) {
		cfg.DelayMin = time.Second
		cfg.DelayMax = 5 * time.Second
		cfg.BatchSize = 0
	}), logging.NewNop())

	for i := 0; i < 20; i++ {
		require.NoError(t, th.Wait(context.Background()))
	}
	for _, d := range *waits {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 5*time.Second)
	}
}

func TestThrottle_Wait_ZeroConfigDisablesWaiting(t *testing.T) {
	waits := stubSleep(t)
	th := NewThrottle(throttleConfig(func(cfg *config.Config) {
		cfg.DelayMin = 0
		cfg.DelayMax = 0
		cfg.BatchSize = 0
	}), logging.NewNop())

	require.NoError(t, th.Wait(context.Background()))
	assert.Empty(t, *waits)
}

func TestThrottle_Wait_HonorsCancellation(t *testing.T) {
	stubSleep(t)
	th := NewThrottle(throttleConfig(nil), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, th.Wait(ctx), context.Canceled)
}
