// Package google mirrors trips and yearly totals into a Google Sheets
// spreadsheet via a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fleetprotax/internal/core"
	ports "fleetprotax/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tripsSheet    string
	summarySheet  string
}

// Ensure interface conformance
var (
	_ ports.TripWriter    = (*Client)(nil)
	_ ports.SummaryWriter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS. Optional sheet names:
// GOOGLE_SHEET_NAME (default "Trips"), GOOGLE_SUMMARY_SHEET_NAME
// (default "Summary").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	tripsSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if tripsSheet == "" {
		tripsSheet = "Trips"
	}
	summarySheet := strings.TrimSpace(os.Getenv("GOOGLE_SUMMARY_SHEET_NAME"))
	if summarySheet == "" {
		summarySheet = "Summary"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		tripsSheet:    tripsSheet,
		summarySheet:  summarySheet,
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

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendTrip writes one trip as a row at the end of the trips sheet and
// returns the A1 reference of the written row.
func (c *Client) AppendTrip(ctx context.Context, t core.Trip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate trip: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.tripsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.tripsSheet, err)
	}
	nextRow := len(resp.Values) + 1

	row := []interface{}{
		t.Date,
		t.EndDate,
		t.Destination,
		t.Purpose,
		t.MealAllowance.StringFixed(2),
		t.SumTransportAllowances.StringFixed(2),
		t.Total().StringFixed(2),
		string(t.ID),
	}
	writeRange := fmt.Sprintf("%s!A%d:H%d", c.tripsSheet, nextRow, nextRow)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append trip row: %w", err)
	}

	slog.InfoContext(ctx, "Trip mirrored to sheet",
		"row", nextRow,
		"trip_id", string(t.ID))
	return writeRange, nil
}

// WriteSummary writes the totals of one year into the summary sheet.
// Each year owns one row, keyed by year in column A.
func (c *Client) WriteSummary(ctx context.Context, s core.YearSummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.summarySheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get summary sheet for %s: %w", c.summarySheet, err)
	}

	row := len(resp.Values) + 1
	for i, cells := range resp.Values {
		if len(cells) > 0 && fmt.Sprint(cells[0]) == fmt.Sprint(s.Year) {
			row = i + 1
			break
		}
	}

	values := []interface{}{
		s.Year,
		s.MealAllowance.StringFixed(2),
		s.TransportCosts.StringFixed(2),
		s.Equipment.StringFixed(2),
		s.EmployerReimbursement.StringFixed(2),
		s.GrandTotal.StringFixed(2),
		s.Expenses.StringFixed(2),
		s.NetTotal.StringFixed(2),
	}
	writeRange := fmt.Sprintf("%s!A%d:H%d", c.summarySheet, row, row)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}
	return nil
}
