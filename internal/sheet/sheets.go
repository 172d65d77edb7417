package sheet

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// SheetsReader reads the schedule through the Google Sheets API.
type SheetsReader struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsReader builds a Sheets API client. With an API key the sheet must be
// shared as "anyone with the link"; without one, Application Default
// Credentials are used. Extra options (endpoint, HTTP client) are appended
// last; when any are given without an API key they must carry authentication
// themselves and the ADC lookup is skipped.
func NewSheetsReader(ctx context.Context, apiKey, spreadsheetID, readRange string, opts ...option.ClientOption) (*SheetsReader, error) {
	var base []option.ClientOption
	if apiKey != "" {
		base = append(base, option.WithAPIKey(apiKey))
	} else if len(opts) == 0 {
		creds, err := google.FindDefaultCredentials(ctx, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("sheet.NewSheetsReader: finding default credentials: %w", err)
		}
		base = append(base, option.WithCredentials(creds))
	}

	svc, err := sheets.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("sheet.NewSheetsReader: %w", err)
	}
	return &SheetsReader{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

// Rows implements Reader. Cells come back as formatted strings, the same text
// a person sees in the sheet.
func (r *SheetsReader) Rows(ctx context.Context) ([][]string, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheet.SheetsReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}
