// Package sheets exports summary snapshots to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"
	goption "google.golang.org/api/option"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

// Exporter writes the full summary table to one sheet, replacing the
// previous snapshot on every export.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewExporterFromEnv builds an exporter using service account credentials
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewExporterFromEnv(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Summary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Export writes a header row followed by one row per summary entry.
func (e *Exporter) Export(ctx context.Context, summary []core.SummaryRow) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	// Clear the previous snapshot so removed rows do not linger.
	clearRange := fmt.Sprintf("%s!A:E", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}

	values := summaryValues(summary)
	writeRange := fmt.Sprintf("%s!A1:E%d", e.sheetName, len(values))
	vr := &gsheet.ValueRange{Values: values}

	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Summary exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName,
		"rows", len(summary))
	return nil
}

// summaryValues converts summary rows to the sheet's cell layout, header
// included.
func summaryValues(summary []core.SummaryRow) [][]any {
	values := make([][]any, 0, len(summary)+1)
	values = append(values, []any{"ID", "Name", "Income", "Expense", "Balance"})
	for _, row := range summary {
		values = append(values, []any{row.CustomerID, row.Name, row.TotalIncome, row.TotalExpense, row.Balance})
	}
	return values
}
