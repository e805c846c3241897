package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/milltrack/internal/config"
	"github.com/mamadbah2/milltrack/internal/domain/models"
)

// reportsRange is where synced monthly report rows land, one row per month:
// month label, batch count, meters, folds, top machine.
const reportsRange = "Reports!A:E"

// Repository defines the spreadsheet sync operations.
type Repository interface {
	AppendMonthlyReport(ctx context.Context, report models.MonthlyReport) error
}

// GoogleSheetRepository implements Repository using the official Google
// Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendMonthlyReport appends one summary row for the report's month.
func (r *GoogleSheetRepository) AppendMonthlyReport(ctx context.Context, report models.MonthlyReport) error {
	topMachine := any("")
	if report.TopMachine != nil {
		topMachine = *report.TopMachine
	}

	values := []interface{}{
		report.Month,
		report.TotalBatches,
		report.TotalMeter,
		report.TotalFTotal,
		topMachine,
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, reportsRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append report row for %s: %w", report.Month, err)
	}

	r.logger.Debug("report row appended to sheet", zap.String("month", report.Month))
	return nil
}
