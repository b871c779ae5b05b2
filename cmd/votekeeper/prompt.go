package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/issuer"
)

// Test seams for terminal interaction.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdin        io.Reader = os.Stdin
)

// productionGrace is how long the operator has to abort a production run.
const productionGrace = 5 * time.Second

// confirmRun gives the operator a last chance to stop dangerous runs: a
// Ctrl+C window before production delivery and a typed confirmation before
// reissuing the whole roster. Both are skipped when stdin is not a terminal,
// so scripted runs are not blocked on input nobody will provide.
func confirmRun(ctx context.Context, cfg *config.Config, target string, reissue bool) error {
	if !isTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	if cfg.Production {
		fmt.Printf("PRODUCTION MODE: real email will be sent. Ctrl+C within %s to abort...\n", productionGrace)
		timer := time.NewTimer(productionGrace)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if reissue && target == issuer.TargetAll {
		fmt.Print("Reissue will rotate credentials for EVERY voter on the roster. Type YES to continue: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != "YES" {
			return fmt.Errorf("reissue not confirmed")
		}
	}
	return nil
}

// promptPassword reads the SMTP password without echo.
func promptPassword(w io.Writer) (string, error) {
	if !isTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no smtp password configured and stdin is not a terminal")
	}
	fmt.Fprint(w, "SMTP password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
