package registry

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/dmitrijs2005/votekeeper/internal/common"
	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/logging"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// newSheetsService is a test seam for the Google API client constructor.
var newSheetsService = func(ctx context.Context, credentialsFile string) (*sheets.Service, error) {
	return sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}

// SheetsRegistry implements Registry over a Google Sheets spreadsheet.
// Every write first takes a token from a rate limiter sized to the remote
// write quota, so bursts never trip the service's per-minute limits.
type SheetsRegistry struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	triggerCell   string
	limiter       *rate.Limiter
	log           logging.Logger
}

func NewSheetsRegistry(ctx context.Context, cfg *config.Config, log logging.Logger) (*SheetsRegistry, error) {
	svc, err := newSheetsService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRegistryUnavailable, err)
	}
	return &SheetsRegistry{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		triggerCell:   cfg.TriggerCell,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RegistryWritesPerSec), cfg.RegistryBurst),
		log:           log,
	}, nil
}

// dataRange addresses the six columns holding registry rows.
func (s *SheetsRegistry) dataRange() string {
	return s.sheetName + "!A:F"
}

func (s *SheetsRegistry) ListAll(ctx context.Context) ([]models.RegistryRow, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.dataRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", common.ErrRegistryUnavailable, err)
	}
	return parseRows(resp.Values), nil
}

func (s *SheetsRegistry) Append(ctx context.Context, row models.RegistryRow) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrRegistryUnavailable, err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{formatRow(row)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.dataRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: append: %w", common.ErrRegistryUnavailable, err)
	}

	s.log.Debug(ctx, "registry row appended", "public_id", row.PublicID)
	return nil
}

func (s *SheetsRegistry) Invalidate(ctx context.Context, publicID string) (bool, error) {
	rows, err := s.ListAll(ctx)
	if err != nil {
		return false, err
	}

	stamp := time.Now().Format(common.TimestampLayout)
	changed := false
	for _, row := range matchActive(rows, publicID) {
		if err := s.updateCell(ctx, fmt.Sprintf("%s!C%d", s.sheetName, row.Row), "FALSE"); err != nil {
			return changed, err
		}
		if err := s.updateCell(ctx, fmt.Sprintf("%s!F%d", s.sheetName, row.Row), stamp); err != nil {
			return changed, err
		}
		changed = true
		s.log.Debug(ctx, "registry row deactivated", "public_id", publicID, "row", row.Row)
	}
	return changed, nil
}

func (s *SheetsRegistry) SetTrigger(ctx context.Context, value string) error {
	return s.updateCell(ctx, fmt.Sprintf("%s!%s", s.sheetName, s.triggerCell), value)
}

func (s *SheetsRegistry) updateCell(ctx context.Context, cell, value string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrRegistryUnavailable, err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: update %s: %w", common.ErrRegistryUnavailable, cell, err)
	}
	return nil
}
