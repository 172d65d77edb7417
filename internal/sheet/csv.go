package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// CSVReader reads a CSV export of the sheet, e.g. the "publish to web" link
// (…/pub?output=csv) or a downloaded file.
type CSVReader struct {
	location string
	client   *http.Client
}

// NewCSVReader constructs a CSVReader for a URL or file path.
// A nil client gets a default with a 10 second timeout.
func NewCSVReader(location string, client *http.Client) *CSVReader {
	return &CSVReader{location: location, client: httpClientOrDefault(client)}
}

// Rows implements Reader.
func (r *CSVReader) Rows(ctx context.Context) ([][]string, error) {
	body, err := open(ctx, r.client, r.location)
	if err != nil {
		return nil, fmt.Errorf("sheet.CSVReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}
	defer body.Close()

	cr := csv.NewReader(body)
	cr.FieldsPerRecord = -1 // exports trim trailing empty cells unevenly
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet.CSVReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}
	return rows, nil
}
