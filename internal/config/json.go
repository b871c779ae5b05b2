package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/votekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so interval fields can be given either as strings like "6s"
// or as integer nanoseconds. The DTO is seeded from the current Config before
// unmarshalling, so keys absent from the file keep their earlier values.
type JsonConfig struct {
	Production    bool `json:"production"`
	Deterministic bool `json:"deterministic"`

	MasterKey    string `json:"master_key"`
	ElectionSalt string `json:"election_salt"`

	LedgerPath    string   `json:"ledger_path"`
	AuditLogPath  string   `json:"audit_log_path"`
	RosterPath    string   `json:"roster_path"`
	ReportDir     string   `json:"report_dir"`
	CriticalFiles []string `json:"critical_files"`

	SpreadsheetID        string  `json:"spreadsheet_id"`
	SheetName            string  `json:"sheet_name"`
	TriggerCell          string  `json:"trigger_cell"`
	CredentialsFile      string  `json:"credentials_file"`
	RegistryWritesPerSec float64 `json:"registry_writes_per_sec"`
	RegistryBurst        int     `json:"registry_burst"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	SMTPStartTLS bool   `json:"smtp_starttls"`
	SenderName   string `json:"sender_name"`
	SenderEmail  string `json:"sender_email"`
	Subject      string `json:"subject"`

	ElectionName   string `json:"election_name"`
	ElectionWindow string `json:"election_window"`
	FormURL        string `json:"form_url"`
	FormIDEntry    string `json:"form_id_entry"`
	FormKeyEntry   string `json:"form_key_entry"`

	DelayMin   timex.Duration `json:"delay_min"`
	DelayMax   timex.Duration `json:"delay_max"`
	BatchSize  int            `json:"batch_size"`
	BatchPause timex.Duration `json:"batch_pause"`
	MaxRetries int            `json:"max_retries"`
	RetryBase  timex.Duration `json:"retry_base"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3Prefix       string `json:"s3_prefix"`
}

func newJSONConfig(cfg *Config) *JsonConfig {
	return &JsonConfig{
		Production:    cfg.Production,
		Deterministic: cfg.Deterministic,

		MasterKey:    cfg.MasterKey,
		ElectionSalt: cfg.ElectionSalt,

		LedgerPath:    cfg.LedgerPath,
		AuditLogPath:  cfg.AuditLogPath,
		RosterPath:    cfg.RosterPath,
		ReportDir:     cfg.ReportDir,
		CriticalFiles: cfg.CriticalFiles,

		SpreadsheetID:        cfg.SpreadsheetID,
		SheetName:            cfg.SheetName,
		TriggerCell:          cfg.TriggerCell,
		CredentialsFile:      cfg.CredentialsFile,
		RegistryWritesPerSec: cfg.RegistryWritesPerSec,
		RegistryBurst:        cfg.RegistryBurst,

		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
		SMTPStartTLS: cfg.SMTPStartTLS,
		SenderName:   cfg.SenderName,
		SenderEmail:  cfg.SenderEmail,
		Subject:      cfg.Subject,

		ElectionName:   cfg.ElectionName,
		ElectionWindow: cfg.ElectionWindow,
		FormURL:        cfg.FormURL,
		FormIDEntry:    cfg.FormIDEntry,
		FormKeyEntry:   cfg.FormKeyEntry,

		DelayMin:   timex.Duration{Duration: cfg.DelayMin},
		DelayMax:   timex.Duration{Duration: cfg.DelayMax},
		BatchSize:  cfg.BatchSize,
		BatchPause: timex.Duration{Duration: cfg.BatchPause},
		MaxRetries: cfg.MaxRetries,
		RetryBase:  timex.Duration{Duration: cfg.RetryBase},

		S3RootUser:     cfg.S3RootUser,
		S3RootPassword: cfg.S3RootPassword,
		S3Bucket:       cfg.S3Bucket,
		S3Region:       cfg.S3Region,
		S3BaseEndpoint: cfg.S3BaseEndpoint,
		S3Prefix:       cfg.S3Prefix,
	}
}

func (jc *JsonConfig) apply(cfg *Config) {
	cfg.Production = jc.Production
	cfg.Deterministic = jc.Deterministic

	cfg.MasterKey = jc.MasterKey
	cfg.ElectionSalt = jc.ElectionSalt

	cfg.LedgerPath = jc.LedgerPath
	cfg.AuditLogPath = jc.AuditLogPath
	cfg.RosterPath = jc.RosterPath
	cfg.ReportDir = jc.ReportDir
	cfg.CriticalFiles = jc.CriticalFiles

	cfg.SpreadsheetID = jc.SpreadsheetID
	cfg.SheetName = jc.SheetName
	cfg.TriggerCell = jc.TriggerCell
	cfg.CredentialsFile = jc.CredentialsFile
	cfg.RegistryWritesPerSec = jc.RegistryWritesPerSec
	cfg.RegistryBurst = jc.RegistryBurst

	cfg.SMTPHost = jc.SMTPHost
	cfg.SMTPPort = jc.SMTPPort
	cfg.SMTPUser = jc.SMTPUser
	cfg.SMTPPassword = jc.SMTPPassword
	cfg.SMTPStartTLS = jc.SMTPStartTLS
	cfg.SenderName = jc.SenderName
	cfg.SenderEmail = jc.SenderEmail
	cfg.Subject = jc.Subject

	cfg.ElectionName = jc.ElectionName
	cfg.ElectionWindow = jc.ElectionWindow
	cfg.FormURL = jc.FormURL
	cfg.FormIDEntry = jc.FormIDEntry
	cfg.FormKeyEntry = jc.FormKeyEntry

	cfg.DelayMin = time.Duration(jc.DelayMin.Duration)
	cfg.DelayMax = time.Duration(jc.DelayMax.Duration)
	cfg.BatchSize = jc.BatchSize
	cfg.BatchPause = time.Duration(jc.BatchPause.Duration)
	cfg.MaxRetries = jc.MaxRetries
	cfg.RetryBase = time.Duration(jc.RetryBase.Duration)

	cfg.S3RootUser = jc.S3RootUser
	cfg.S3RootPassword = jc.S3RootPassword
	cfg.S3Bucket = jc.S3Bucket
	cfg.S3Region = jc.S3Region
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	cfg.S3Prefix = jc.S3Prefix
}

// parseJSON overlays cfg with values from the JSON file at path. An empty
// path means no file is loaded. Keys missing from the file leave the current
// values untouched.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	jc := newJSONConfig(cfg)
	if err := json.Unmarshal(data, jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
