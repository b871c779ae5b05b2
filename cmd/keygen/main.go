// keygen derives the full credential set for a roster ahead of time, using
// the deterministic mode, and writes the distribution and audit files. It
// shares derivation with the issuance tool, so running either against the
// same roster, master key and salt yields the same credentials.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/filex"
	"github.com/dmitrijs2005/votekeeper/internal/keys"
	"github.com/dmitrijs2005/votekeeper/internal/models"
	"github.com/dmitrijs2005/votekeeper/internal/roster"
)

const utf8BOM = "\xef\xbb\xbf"

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a JSON configuration file",
	}
	rosterFlag = &cli.StringFlag{
		Name:  "roster",
		Usage: "roster file to derive from (defaults to the configured roster path)",
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Value: "out",
		Usage: "directory the generated files are written to",
	}
)

func main() {
	app := &cli.App{
		Name:   "keygen",
		Usage:  "pre-generate deterministic voting credentials for a roster",
		Flags:  []cli.Flag{configFlag, rosterFlag, outFlag},
		Action: runGenerate,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// issued pairs a voter with the credential derived for them.
type issued struct {
	voter models.Voter
	cred  models.Credential
}

func runGenerate(cCtx *cli.Context) error {
	cfg, err := config.Load(cCtx.String(configFlag.Name))
	if err != nil {
		return err
	}
	rosterPath := cfg.RosterPath
	if p := cCtx.String(rosterFlag.Name); p != "" {
		rosterPath = p
	}

	deriver, err := keys.NewDeriver(cfg.MasterKey, cfg.ElectionSalt)
	if err != nil {
		return err
	}
	defer deriver.Wipe()

	voters, err := roster.Load(rosterPath)
	if err != nil {
		return err
	}

	batch, err := deriveAll(deriver, voters)
	if err != nil {
		return err
	}

	outDir := cCtx.String(outFlag.Name)
	if err := writeOutputs(outDir, batch); err != nil {
		return err
	}
	fmt.Printf("%d credentials written to %s\n", len(batch), outDir)
	return nil
}

// deriveAll derives every voter's credential and rejects the batch on a
// public-id collision. Ids live in a space of only 900000 values; a clash
// is unlikely but would hand two voters the same identifier, so the salt
// must be changed and the batch rerun.
func deriveAll(deriver *keys.Deriver, voters []models.Voter) ([]issued, error) {
	batch := make([]issued, 0, len(voters))
	seen := make(map[string]string, len(voters))

	for _, v := range voters {
		cred, err := deriver.Deterministic(v.Email)
		if err != nil {
			return nil, fmt.Errorf("derive for %s: %w", v.Email, err)
		}
		if other, dup := seen[cred.PublicID]; dup {
			return nil, fmt.Errorf("public id collision between %s and %s: change the election salt and rerun", other, v.Email)
		}
		seen[cred.PublicID] = v.Email
		batch = append(batch, issued{voter: v, cred: cred})
	}
	return batch, nil
}

// writeOutputs produces the four distribution files:
//
//	mailer_input.csv     confidential, feeds the delivery run
//	eligible_voters.csv  public list of who may vote
//	valid_ids.csv        public list of issued identifiers, sorted
//	registry_import.csv  public keys for the registry sheet
func writeOutputs(dir string, batch []issued) error {
	if err := filex.EnsureDir(dir); err != nil {
		return err
	}

	mailerRows := [][]string{{"name", "email", "public_id", "private_key"}}
	eligibleRows := [][]string{{"name", "email"}}
	registryRows := [][]string{{"public_id", "public_key"}}
	ids := make([]string, 0, len(batch))

	for _, b := range batch {
		mailerRows = append(mailerRows, []string{b.voter.Name, b.voter.Email, b.cred.PublicID, b.cred.PrivateKey})
		eligibleRows = append(eligibleRows, []string{b.voter.Name, b.voter.Email})
		registryRows = append(registryRows, []string{b.cred.PublicID, b.cred.PublicKey})
		ids = append(ids, b.cred.PublicID)
	}

	// The sorted id list deliberately breaks the roster ordering, so the
	// public list cannot be lined up against the voter list.
	sort.Strings(ids)
	idRows := [][]string{{"public_id"}}
	for _, id := range ids {
		idRows = append(idRows, []string{id})
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{"mailer_input.csv", mailerRows},
		{"eligible_voters.csv", eligibleRows},
		{"valid_ids.csv", idRows},
		{"registry_import.csv", registryRows},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(dir, f.name), f.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	var b bytes.Buffer
	b.WriteString(utf8BOM)
	w := csv.NewWriter(&b)
	w.Comma = ';'
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := filex.WriteFileAtomic(path, b.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
