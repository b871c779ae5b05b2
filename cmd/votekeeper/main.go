// votekeeper issues one-time voting credentials to a roster of voters,
// delivers them by email and keeps the shared key registry in sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/dmitrijs2005/votekeeper/internal/archive"
	"github.com/dmitrijs2005/votekeeper/internal/audit"
	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/issuer"
	"github.com/dmitrijs2005/votekeeper/internal/keys"
	"github.com/dmitrijs2005/votekeeper/internal/ledger"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
	"github.com/dmitrijs2005/votekeeper/internal/mailer"
	"github.com/dmitrijs2005/votekeeper/internal/registry"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a JSON configuration file",
	}
	productionFlag = &cli.BoolFlag{
		Name:  "production",
		Usage: "send real email (default is simulation: full workflow, no delivery)",
	}
	reissueFlag = &cli.BoolFlag{
		Name:  "reissue",
		Usage: "mint fresh credentials even for voters with an active one",
	}
	skipArchiveFlag = &cli.BoolFlag{
		Name:  "skip-archive",
		Usage: "skip the off-site snapshot after the run",
	}
)

func main() {
	app := &cli.App{
		Name:  "votekeeper",
		Usage: "issue and deliver one-time voting credentials",
		Commands: []*cli.Command{
			{
				Name:      "issue",
				Usage:     "issue credentials to one voter or the whole roster",
				ArgsUsage: "[email | ALL]",
				Flags:     []cli.Flag{configFlag, productionFlag, reissueFlag, skipArchiveFlag},
				Action:    runIssue,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runIssue(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cCtx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if cCtx.Bool(productionFlag.Name) {
		cfg.Production = true
	}
	reissue := cCtx.Bool(reissueFlag.Name)

	target := issuer.TargetAll
	if cCtx.Args().Present() {
		target = cCtx.Args().First()
	}

	log := logging.NewJSON(os.Stderr).With("run", uuid.NewString())
	auditLog := audit.NewLog(cfg.AuditLogPath, cfg.Production)

	if err := confirmRun(ctx, cfg, target, reissue); err != nil {
		return err
	}
	if cfg.Production && cfg.SMTPPassword == "" {
		pw, err := promptPassword(os.Stdout)
		if err != nil {
			return fmt.Errorf("smtp password: %w", err)
		}
		cfg.SMTPPassword = pw
	}

	mode := "SIMULATION"
	if cfg.Production {
		mode = "PRODUCTION"
	}
	if err := auditLog.Append(audit.LevelInfo, "", "", "run started in "+mode+" mode, target "+target); err != nil {
		return err
	}

	// Hash the critical inputs before touching anything, so the published
	// report reflects the exact files this run started from.
	files := cfg.CriticalFiles
	if len(files) == 0 {
		files = []string{cfg.RosterPath, cfg.LedgerPath, cfg.AuditLogPath}
	}
	report, err := audit.WriteHashReport(cfg.ReportDir, files)
	if err != nil {
		return fmt.Errorf("integrity report: %w", err)
	}
	for _, fh := range report.Files {
		hash := fh.Hash
		if hash == "" {
			hash = "(file not present)"
		}
		fmt.Printf("%-40s %s\n", fh.Path, hash)
	}
	fmt.Printf("%-40s %s\n", "META "+report.Path, report.MetaHash)

	deriver, err := keys.NewDeriver(cfg.MasterKey, cfg.ElectionSalt)
	if err != nil {
		return err
	}
	defer deriver.Wipe()

	reg, err := registry.NewSheetsRegistry(ctx, cfg, log)
	if err != nil {
		return err
	}

	renderer, err := mailer.NewRenderer(cfg)
	if err != nil {
		return err
	}
	notifier := mailer.NewNotifier(cfg, renderer, mailer.NewSMTPSender(cfg), os.Stdout, log)
	throttle := mailer.NewThrottle(cfg, log)

	orch := issuer.NewOrchestrator(cfg, ledger.NewCSVRepository(cfg.LedgerPath), reg,
		deriver, notifier, auditLog, log)

	started := time.Now()
	sum, runErr := orch.Run(ctx, target, reissue, throttle)
	duration := time.Since(started).Round(time.Second)

	if runErr == nil && !cCtx.Bool(skipArchiveFlag.Name) {
		uploader := archive.NewUploader(cfg, log)
		if uploader.Enabled() {
			if err := uploader.Snapshot(ctx, cfg.LedgerPath, cfg.AuditLogPath); err != nil {
				log.Warn(ctx, "off-site snapshot failed, local files remain authoritative", "error", err)
				if aerr := auditLog.Append(audit.LevelWarn, "", "", "off-site snapshot failed: "+err.Error()); aerr != nil {
					return aerr
				}
			}
		}
	}

	outcome := fmt.Sprintf("run ended after %s: %d issued, %d skipped, %d failed",
		duration, sum.Issued, sum.Skipped, sum.Failed)
	if runErr != nil {
		outcome += ", aborted: " + runErr.Error()
	}
	if err := auditLog.Append(audit.LevelInfo, "", "", outcome); err != nil {
		return err
	}
	fmt.Println(outcome)
	return runErr
}
