package sheet

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// XLSXReader reads an .xlsx export of the sheet (…/export?format=xlsx or a file).
// The worksheet is chosen by name, or the first one when the name is empty.
type XLSXReader struct {
	location  string
	worksheet string
	client    *http.Client
}

// NewXLSXReader constructs an XLSXReader. A nil client gets a default.
func NewXLSXReader(location, worksheet string, client *http.Client) *XLSXReader {
	return &XLSXReader{location: location, worksheet: worksheet, client: httpClientOrDefault(client)}
}

// Rows implements Reader.
func (r *XLSXReader) Rows(ctx context.Context) ([][]string, error) {
	body, err := open(ctx, r.client, r.location)
	if err != nil {
		return nil, fmt.Errorf("sheet.XLSXReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}
	defer body.Close()

	file, err := excelize.OpenReader(body)
	if err != nil {
		return nil, fmt.Errorf("sheet.XLSXReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}
	defer func() { _ = file.Close() }()

	name := r.worksheet
	if name == "" {
		name = file.GetSheetName(0)
	}
	if name == "" {
		return nil, fmt.Errorf("sheet.XLSXReader.Rows: %w: no worksheet found", domain.ErrScheduleSource)
	}

	rows, err := file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet.XLSXReader.Rows: %w: %w", domain.ErrScheduleSource, err)
	}
	return rows, nil
}
