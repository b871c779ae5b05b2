// Package config loads runtime configuration for the votekeeper tools.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with the --config flag.
//  3. VOTEKEEPER_* environment variables (see the envconfig struct tags),
//     which override earlier values. Secrets normally arrive this way.
//
// CLI flags handled by the binaries (--production, --reissue and friends) are
// overlaid onto the resulting Config by the cmd layer, after Load returns.
//
// # JSON schema
//
// Interval fields accept either strings like "6s" or integer nanoseconds:
//
//	{
//	  "deterministic": false,
//	  "ledger_path": "data/keys_ledger.csv",
//	  "roster_path": "data/voters.csv",
//	  "spreadsheet_id": "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
//	  "smtp_host": "smtp.example.org",
//	  "delay_min": "6s",
//	  "delay_max": "12s",
//	  "batch_pause": "3m"
//	}
//
// Primary API
//
//   - type Config                    — the full settings struct
//   - func Load(path) (*Config, error) — defaults, then JSON, then environment
//   - func (*Config) LoadDefaults()  — simulation-safe defaults
package config
