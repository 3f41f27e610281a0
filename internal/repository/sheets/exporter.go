package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tomschnierer025/weedtracker/internal/config"
	"github.com/tomschnierer025/weedtracker/internal/domain/models"
)

const (
	jobsRange    = "Jobs!A:J"
	batchesRange = "Batches!A:G"
	dateLayout   = "2006-01-02"
)

// Exporter pushes job and batch rows into the operator's spreadsheet.
type Exporter interface {
	ExportJobs(ctx context.Context, jobs []models.Job) error
	ExportBatches(ctx context.Context, batches []models.Batch) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportJobs appends one row per job to the Jobs sheet.
func (e *GoogleSheetExporter) ExportJobs(ctx context.Context, jobs []models.Job) error {
	rows := make([][]interface{}, 0, len(jobs))
	for _, job := range jobs {
		var batchRefs []string
		for _, a := range job.Allocations {
			batchRefs = append(batchRefs, fmt.Sprintf("%s:%.1f", a.BatchID, a.AmountUsed))
		}
		rows = append(rows, []interface{}{
			job.ID,
			job.Name,
			string(job.Type),
			job.Date.Format(dateLayout),
			job.Weed,
			string(job.Status),
			strings.Join(batchRefs, ", "),
			job.Conditions.RoadName,
			job.Notes,
			job.Archived,
		})
	}
	return e.appendRows(ctx, jobsRange, rows)
}

// ExportBatches appends one row per batch to the Batches sheet.
func (e *GoogleSheetExporter) ExportBatches(ctx context.Context, batches []models.Batch) error {
	rows := make([][]interface{}, 0, len(batches))
	for _, batch := range batches {
		var usages []string
		for _, u := range batch.ChemicalUsages {
			usages = append(usages, fmt.Sprintf("%s %.2f%s/100L", u.ChemicalName, u.RatePer100L, u.Unit))
		}
		rows = append(rows, []interface{}{
			batch.ID,
			batch.CreatedDate.Format(dateLayout),
			batch.TotalMix,
			batch.Used,
			batch.Remaining,
			strings.Join(usages, ", "),
			len(batch.LinkedJobIDs),
		})
	}
	return e.appendRows(ctx, batchesRange, rows)
}

func (e *GoogleSheetExporter) appendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	e.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}
