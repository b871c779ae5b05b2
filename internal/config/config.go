package config

import "time"

// Config holds runtime settings for the votekeeper tools.
//
// Field groups:
//   - Run mode: Production (real sends) and Deterministic (derivation mode).
//   - Secrets: MasterKey for credential derivation, ElectionSalt for the
//     deterministic variant, SMTPPassword for the mail account.
//   - Local files: ledger, audit log, roster, integrity report directory.
//   - Registry: spreadsheet id, sheet name, trigger cell, service-account
//     credentials file and the write-quota limiter settings.
//   - Mail: submission endpoint, sender identity and message content.
//   - Pacing: inter-message delay bounds, batch size/pause, retry policy.
//   - Archive: optional S3-compatible off-site snapshot settings.
type Config struct {
	Production    bool `json:"production" envconfig:"PRODUCTION"`
	Deterministic bool `json:"deterministic" envconfig:"DETERMINISTIC"`

	MasterKey    string `json:"master_key" envconfig:"MASTER_KEY"`
	ElectionSalt string `json:"election_salt" envconfig:"ELECTION_SALT"`

	LedgerPath    string   `json:"ledger_path" envconfig:"LEDGER_PATH"`
	AuditLogPath  string   `json:"audit_log_path" envconfig:"AUDIT_LOG_PATH"`
	RosterPath    string   `json:"roster_path" envconfig:"ROSTER_PATH"`
	ReportDir     string   `json:"report_dir" envconfig:"REPORT_DIR"`
	CriticalFiles []string `json:"critical_files" envconfig:"CRITICAL_FILES"`

	SpreadsheetID        string  `json:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName            string  `json:"sheet_name" envconfig:"SHEET_NAME"`
	TriggerCell          string  `json:"trigger_cell" envconfig:"TRIGGER_CELL"`
	CredentialsFile      string  `json:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	RegistryWritesPerSec float64 `json:"registry_writes_per_sec" envconfig:"REGISTRY_WRITES_PER_SEC"`
	RegistryBurst        int     `json:"registry_burst" envconfig:"REGISTRY_BURST"`

	SMTPHost     string `json:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort     int    `json:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUser     string `json:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPassword string `json:"smtp_password" envconfig:"SMTP_PASSWORD"`
	SMTPStartTLS bool   `json:"smtp_starttls" envconfig:"SMTP_STARTTLS"`
	SenderName   string `json:"sender_name" envconfig:"SENDER_NAME"`
	SenderEmail  string `json:"sender_email" envconfig:"SENDER_EMAIL"`
	Subject      string `json:"subject" envconfig:"SUBJECT"`

	ElectionName   string `json:"election_name" envconfig:"ELECTION_NAME"`
	ElectionWindow string `json:"election_window" envconfig:"ELECTION_WINDOW"`
	FormURL        string `json:"form_url" envconfig:"FORM_URL"`
	FormIDEntry    string `json:"form_id_entry" envconfig:"FORM_ID_ENTRY"`
	FormKeyEntry   string `json:"form_key_entry" envconfig:"FORM_KEY_ENTRY"`

	DelayMin   time.Duration `json:"-" envconfig:"DELAY_MIN"`
	DelayMax   time.Duration `json:"-" envconfig:"DELAY_MAX"`
	BatchSize  int           `json:"batch_size" envconfig:"BATCH_SIZE"`
	BatchPause time.Duration `json:"-" envconfig:"BATCH_PAUSE"`
	MaxRetries int           `json:"max_retries" envconfig:"MAX_RETRIES"`
	RetryBase  time.Duration `json:"-" envconfig:"RETRY_BASE"`

	S3RootUser     string `json:"s3_root_user" envconfig:"S3_ROOT_USER"`
	S3RootPassword string `json:"s3_root_password" envconfig:"S3_ROOT_PASSWORD"`
	S3Bucket       string `json:"s3_bucket" envconfig:"S3_BUCKET"`
	S3Region       string `json:"s3_region" envconfig:"S3_REGION"`
	S3BaseEndpoint string `json:"s3_base_endpoint" envconfig:"S3_BASE_ENDPOINT"`
	S3Prefix       string `json:"s3_prefix" envconfig:"S3_PREFIX"`
}

// LoadDefaults populates Config with simulation-safe defaults.
// Secrets and service identifiers are intentionally left empty.
func (c *Config) LoadDefaults() {
	c.Production = false
	c.Deterministic = false

	c.LedgerPath = "data/keys_ledger.csv"
	c.AuditLogPath = "data/audit_log.csv"
	c.RosterPath = "data/voters.csv"
	c.ReportDir = "data"

	c.SheetName = "keys"
	c.TriggerCell = "H1"
	c.CredentialsFile = "credentials.json"
	c.RegistryWritesPerSec = 0.5
	c.RegistryBurst = 1

	c.SMTPPort = 465
	c.SenderName = "Election Committee"
	c.Subject = "Your voting credentials"

	c.DelayMin = 6 * time.Second
	c.DelayMax = 12 * time.Second
	c.BatchSize = 30
	c.BatchPause = 3 * time.Minute
	c.MaxRetries = 3
	c.RetryBase = 2 * time.Second

	c.S3Region = "us-east-1"
	c.S3Prefix = "votekeeper"
}

// Load builds a Config by applying defaults, then overlaying values from an
// optional JSON file (path may be empty) and finally from VOTEKEEPER_*
// environment variables. Later sources take precedence over earlier ones.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
