package issuer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/votekeeper/internal/audit"
	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/models"
	"github.com/dmitrijs2005/votekeeper/internal/roster"
)

// TargetAll addresses every voter on the roster.
const TargetAll = "ALL"

// Summary counts per-voter outcomes of a run.
type Summary struct {
	Issued  int // delivered, whether or not the final commit kept up
	Skipped int // aborted without side effects
	Failed  int // delivery failed after retries, pending entry kept
}

// rosterLoad is a test seam for the roster loader.
var rosterLoad = roster.Load

// Run drives a full issuance run against target, either a single email or
// TargetAll.
//
// The roster is validated up front and rejected whole on any malformed row.
// Voters are processed sequentially in a secure-shuffled order, so observed
// delivery order carries no information about roster order. Addressing a
// single voter is treated as an explicit resend request and implies reissue.
// After the loop the registry's one-shot tally trigger is written exactly
// once, provided the run had targets to process at all.
func (o *Orchestrator) Run(ctx context.Context, target string, reissue bool, throttle Throttler) (Summary, error) {
	var sum Summary

	voters, err := rosterLoad(o.cfg.RosterPath)
	if err != nil {
		if aerr := o.audit.Append(audit.LevelFatal, "", "", "roster rejected: "+err.Error()); aerr != nil {
			return sum, aerr
		}
		return sum, err
	}

	if target != TargetAll {
		voter, ok := findVoter(voters, target)
		if !ok {
			err := fmt.Errorf("%w: target %s not on roster", common.ErrInvalidRoster, target)
			if aerr := o.audit.Append(audit.LevelFatal, models.NormalizeEmail(target), "", err.Error()); aerr != nil {
				return sum, aerr
			}
			return sum, err
		}
		voters = []models.Voter{voter}
		reissue = true
	} else if err := roster.Shuffle(voters); err != nil {
		return sum, err
	}

	o.log.Info(ctx, "run starting", "voters", len(voters), "production", o.cfg.Production, "reissue", reissue)

	for i, voter := range voters {
		// Cancellation is honored only between voters, never inside the
		// per-voter sequence, so no atomic write is ever interrupted.
		if err := ctx.Err(); err != nil {
			if aerr := o.audit.Append(audit.LevelWarn, "", "", "run cancelled by operator"); aerr != nil {
				return sum, aerr
			}
			return sum, err
		}

		state, err := o.IssueOne(ctx, voter, reissue)
		switch {
		case err == nil && state == StateAborted:
			sum.Skipped++
			continue
		case err == nil:
			sum.Issued++
		case errors.Is(err, common.ErrDeliveryFailed):
			sum.Failed++
		default:
			return sum, err
		}

		if throttle != nil && o.cfg.Production && i < len(voters)-1 {
			if err := throttle.Wait(ctx); err != nil {
				return sum, err
			}
		}
	}

	if len(voters) > 0 {
		if err := o.registry.SetTrigger(ctx, now().Format(common.TimestampLayout)); err != nil {
			o.log.Error(ctx, "tally trigger write failed", "error", err)
			if aerr := o.audit.Append(audit.LevelError, "", "", "tally trigger write failed: "+err.Error()); aerr != nil {
				return sum, aerr
			}
		}
	}

	summary := fmt.Sprintf("run finished: %d issued, %d skipped, %d failed", sum.Issued, sum.Skipped, sum.Failed)
	o.log.Info(ctx, "run finished", "issued", sum.Issued, "skipped", sum.Skipped, "failed", sum.Failed)
	if aerr := o.audit.Append(audit.LevelInfo, "", "", summary); aerr != nil {
		return sum, aerr
	}
	return sum, nil
}

func findVoter(voters []models.Voter, email string) (models.Voter, bool) {
	email = models.NormalizeEmail(email)
	for _, v := range voters {
		if models.NormalizeEmail(v.Email) == email {
			return v, true
		}
	}
	return models.Voter{}, false
}
