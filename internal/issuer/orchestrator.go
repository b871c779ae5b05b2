// Package issuer sequences credential issuance for one voter and drives a
// roster of voters to completion.
//
// Issuance touches three independently failing resources: the local ledger,
// the remote registry and the mail transport. The ordering is fixed so that
// a crash at any point is recoverable: a pending ledger entry is durably
// written before anything risk-bearing happens, the registry is only touched
// after delivery is confirmed, and the final commit deactivates the voter's
// previous credential in the same atomic ledger write that activates the
// new one.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/audit"
	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/keys"
	"github.com/dmitrijs2005/votekeeper/internal/ledger"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
	"github.com/dmitrijs2005/votekeeper/internal/models"
	"github.com/dmitrijs2005/votekeeper/internal/registry"
)

// now is a test seam for ledger and registry timestamps.
var now = time.Now

// Notifier delivers a rendered credential message. Satisfied by
// mailer.Notifier.
type Notifier interface {
	Deliver(ctx context.Context, voter models.Voter, cred models.Credential) (bool, error)
}

// Throttler paces the roster driver between voters. Satisfied by
// mailer.Throttle.
type Throttler interface {
	Wait(ctx context.Context) error
}

// Orchestrator runs the issuance state machine.
type Orchestrator struct {
	cfg      *config.Config
	ledger   ledger.Repository
	registry registry.Registry
	deriver  *keys.Deriver
	notifier Notifier
	audit    *audit.Log
	log      logging.Logger
}

func NewOrchestrator(cfg *config.Config, repo ledger.Repository, reg registry.Registry,
	deriver *keys.Deriver, notifier Notifier, auditLog *audit.Log, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		ledger:   repo,
		registry: reg,
		deriver:  deriver,
		notifier: notifier,
		audit:    auditLog,
		log:      log,
	}
}

// IssueOne walks a single voter through the issuance state machine.
//
// The returned error is nil for terminal outcomes the run can continue past
// (committed, skipped, commit-write lag). A non-nil error wrapping
// common.ErrDeliveryFailed means this voter was skipped after retries; any
// other non-nil error is fatal to the whole run.
func (o *Orchestrator) IssueOne(ctx context.Context, voter models.Voter, reissue bool) (State, error) {
	email := models.NormalizeEmail(voter.Email)
	log := o.log.With("email", email)

	entries, err := o.ledger.Load()
	if err != nil {
		if aerr := o.audit.Append(audit.LevelFatal, email, "", "ledger unreadable: "+err.Error()); aerr != nil {
			return StateStart, aerr
		}
		return StateStart, err
	}

	if active := ledger.FindActive(entries, email); active != nil && !reissue {
		log.Info(ctx, "skipped, already processed", "generation", active.Generation)
		if aerr := o.audit.Append(audit.LevelInfo, email, active.PublicID, "skipped, already processed"); aerr != nil {
			return StateAborted, aerr
		}
		return StateAborted, nil
	}

	// A pending entry means an earlier run crashed or failed between the
	// ledger write and confirmed delivery. Deterministic derivation allows
	// retrying against the same generation; random derivation cannot
	// reproduce the keys, so minting a replacement needs an explicit ok.
	var entry *models.LedgerEntry
	if latest := ledger.FindLatest(entries, email); latest != nil && !latest.Delivered {
		if o.cfg.Deterministic {
			entry = latest
			log.Info(ctx, "resuming pending issuance", "generation", latest.Generation)
			if aerr := o.audit.Append(audit.LevelInfo, email, latest.PublicID, "resuming pending issuance"); aerr != nil {
				return StateStart, aerr
			}
		} else if !reissue {
			log.Warn(ctx, "pending undelivered entry found, not reissuing without explicit request")
			if aerr := o.audit.Append(audit.LevelWarn, email, latest.PublicID,
				"pending undelivered entry found, rerun with reissue to mint a fresh credential"); aerr != nil {
				return StateAborted, aerr
			}
			return StateAborted, nil
		}
	}

	cred, err := o.derive(email)
	if err != nil {
		if aerr := o.audit.Append(audit.LevelFatal, email, "", "key derivation failed: "+err.Error()); aerr != nil {
			return StateStart, aerr
		}
		return StateStart, err
	}

	if entry == nil {
		entries = append(entries, models.LedgerEntry{
			Timestamp:  now(),
			Email:      email,
			PublicID:   cred.PublicID,
			PublicKey:  cred.PublicKey,
			Generation: ledger.NextGeneration(entries, email),
			Active:     false,
			Delivered:  false,
			Production: o.cfg.Production,
		})
		entry = &entries[len(entries)-1]
	} else {
		// Deterministic resume: refresh the attempt timestamp, keep the
		// generation. The derived values match the recorded ones.
		entry.Timestamp = now()
		entry.PublicID = cred.PublicID
		entry.PublicKey = cred.PublicKey
	}
	state := StateKeysGenerated

	// The pending record must be durable before any risk-bearing action.
	// Without it a crash mid-send would leave an issuance no audit could
	// reconstruct.
	if err := o.ledger.SaveAll(entries); err != nil {
		if aerr := o.audit.Append(audit.LevelFatal, email, cred.PublicID, "pending ledger write failed: "+err.Error()); aerr != nil {
			return state, aerr
		}
		return state, fmt.Errorf("pending write for %s: %w", email, err)
	}
	state = StatePendingPersisted

	delivered, err := o.notifier.Deliver(ctx, voter, cred)
	if !delivered {
		if errors.Is(err, common.ErrAuthFailed) {
			log.Error(ctx, "smtp authentication failed, aborting run", "error", err)
			if aerr := o.audit.Append(audit.LevelFatal, email, cred.PublicID, "smtp authentication failed: "+err.Error()); aerr != nil {
				return state, aerr
			}
			return state, err
		}
		log.Error(ctx, "delivery failed, voter skipped", "error", err)
		if aerr := o.audit.Append(audit.LevelError, email, cred.PublicID,
			"delivery failed, pending entry kept for retry: "+err.Error()); aerr != nil {
			return state, aerr
		}
		return state, err
	}
	state = StateNotified

	// Registry sync happens only after confirmed delivery; a credential
	// that never reached its voter must not become active anywhere.
	synced, err := o.syncRegistry(ctx, log, email, entries, cred)
	if err != nil {
		return state, err
	}
	if synced {
		state = StateRegistrySynced
	}

	entry.Delivered = true
	if synced {
		for i := range entries {
			if models.NormalizeEmail(entries[i].Email) == email && &entries[i] != entry {
				entries[i].Active = false
			}
		}
		entry.Active = true
	}

	if err := o.ledger.SaveAll(entries); err != nil {
		// The email is out and the registry may already be updated. The
		// ledger lags until the next successful run; surfacing a fatal
		// error here would only obscure that the real-world side effects
		// happened.
		log.Error(ctx, "final commit write failed, ledger lags delivered state", "error", err)
		if aerr := o.audit.Append(audit.LevelError, email, cred.PublicID, "final commit write failed: "+err.Error()); aerr != nil {
			return state, aerr
		}
		return state, nil
	}
	state = StateCommitted

	outcome := "credential issued and delivered"
	if !o.cfg.Production {
		outcome = "simulation successful"
	}
	if !synced {
		outcome += " (registry not confirmed, manual reconciliation required)"
	}
	log.Info(ctx, outcome, "public_id", cred.PublicID, "generation", entry.Generation)
	if aerr := o.audit.Append(audit.LevelInfo, email, cred.PublicID, outcome); aerr != nil {
		return state, aerr
	}
	return state, nil
}

func (o *Orchestrator) derive(email string) (models.Credential, error) {
	if o.cfg.Deterministic {
		return o.deriver.Deterministic(email)
	}
	return o.deriver.Random()
}

// syncRegistry invalidates the voter's previous registry rows and appends
// the new credential as active. Registry failures are audited as high
// severity but never abort the run: the voter already holds the credential,
// so the only remedy is operator reconciliation, not a rollback. Only an
// audit write failure is returned as an error.
func (o *Orchestrator) syncRegistry(ctx context.Context, log logging.Logger, email string,
	entries []models.LedgerEntry, cred models.Credential) (bool, error) {

	if prior := ledger.FindActive(entries, email); prior != nil {
		if _, err := o.registry.Invalidate(ctx, prior.PublicID); err != nil {
			log.Error(ctx, "registry invalidation failed, voter delivered but not synced",
				"prior_public_id", prior.PublicID, "error", err)
			aerr := o.audit.Append(audit.LevelError, email, cred.PublicID,
				"registry invalidation failed, manual reconciliation required: "+err.Error())
			return false, aerr
		}
	}

	row := models.RegistryRow{
		PublicID:    cred.PublicID,
		PublicKey:   cred.PublicKey,
		Active:      true,
		Production:  o.cfg.Production,
		ActivatedAt: now().Format(common.TimestampLayout),
	}
	if err := o.registry.Append(ctx, row); err != nil {
		log.Error(ctx, "registry append failed, voter delivered but not synced",
			"public_id", cred.PublicID, "error", err)
		aerr := o.audit.Append(audit.LevelError, email, cred.PublicID,
			"registry append failed, manual reconciliation required: "+err.Error())
		return false, aerr
	}
	return true, nil
}
