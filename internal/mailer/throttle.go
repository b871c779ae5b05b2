package mailer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
)

// sleep is a test seam; it waits for d or until ctx is done.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Throttle paces bulk delivery: a randomized delay between messages plus a
// longer pause after every full batch. Both exist to stay under the
// provider's sending thresholds; a zero batch size disables the batch pause
// and a zero delay range disables the per-message delay.
type Throttle struct {
	delayMin   time.Duration
	delayMax   time.Duration
	batchSize  int
	batchPause time.Duration

	sent int
	log  logging.Logger
}

func NewThrottle(cfg *config.Config, log logging.Logger) *Throttle {
	return &Throttle{
		delayMin:   cfg.DelayMin,
		delayMax:   cfg.DelayMax,
		batchSize:  cfg.BatchSize,
		batchPause: cfg.BatchPause,
		log:        log,
	}
}

// Wait is called after each delivered message. It blocks for the randomized
// inter-message delay and, when a batch boundary is reached, for the batch
// pause as well. Cancellation is honored mid-wait.
func (t *Throttle) Wait(ctx context.Context) error {
	t.sent++

	if d := t.nextDelay(); d > 0 {
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}

	if t.batchSize > 0 && t.sent%t.batchSize == 0 {
		t.log.Info(ctx, "batch boundary reached, pausing",
			"sent", t.sent, "pause", t.batchPause.String())
		if err := sleep(ctx, t.batchPause); err != nil {
			return err
		}
	}
	return nil
}

func (t *Throttle) nextDelay() time.Duration {
	if t.delayMax <= t.delayMin {
		return t.delayMin
	}
	return t.delayMin + rand.N(t.delayMax-t.delayMin)
}
