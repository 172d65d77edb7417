// Package sheet reads the campaign schedule from the shared spreadsheet.
//
// The sheet is addressed by header name, never by column position, so columns
// can be reordered or added by the people editing it. A Reader returns raw
// cells (CSV export, XLSX export or the Sheets API) and Parse turns them into
// domain stops.
package sheet

import (
	"fmt"
	"strings"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// field identifies one logical column of the schedule.
type field int

const (
	fieldDate field = iota
	fieldTime
	fieldEnd
	fieldTitle
	fieldAddress
	fieldAttendance
	fieldConfirmedAt
	fieldLat
	fieldLng
	numFields
)

// headerAliases lists the accepted header names per field, after normalizeHeader.
// The Korean names are the ones used on the original sheet.
var headerAliases = [numFields][]string{
	fieldDate:        {"날짜", "일자", "date"},
	fieldTime:        {"시간", "시작시간", "시작", "time", "start", "start_time"},
	fieldEnd:         {"종료시간", "종료", "end", "end_time"},
	fieldTitle:       {"일정", "행사명", "제목", "내용", "title", "event", "name"},
	fieldAddress:     {"주소", "장소", "address", "location"},
	fieldAttendance:  {"참석여부", "attendance", "status"},
	fieldConfirmedAt: {"참석시간", "confirmed_at", "attended_at"},
	fieldLat:         {"위도", "lat", "latitude"},
	fieldLng:         {"경도", "lng", "lon", "longitude"},
}

var fieldNames = [numFields]string{
	"date", "time", "end_time", "title", "address", "attendance", "confirmed_at", "lat", "lng",
}

var requiredFields = []field{fieldDate, fieldTime, fieldTitle}

// Columns maps each field to its index in a row, -1 when the sheet lacks it.
type Columns [numFields]int

// ResolveColumns locates the schedule fields in a header row.
// The first matching header wins. Returns domain.ErrScheduleSource naming every
// missing required column.
func ResolveColumns(header []string) (Columns, error) {
	var cols Columns
	for f := range cols {
		cols[f] = -1
	}

	for i, h := range header {
		name := normalizeHeader(h)
		for f, aliases := range headerAliases {
			if cols[f] != -1 {
				continue
			}
			for _, a := range aliases {
				if name == a {
					cols[f] = i
					break
				}
			}
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if cols[f] == -1 {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: missing columns: %s", domain.ErrScheduleSource, strings.Join(missing, ", "))
	}
	return cols, nil
}

// normalizeHeader lowercases and trims a header cell, dropping a UTF-8 BOM
// that CSV exports prepend to the first cell.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// cell returns the trimmed value of field f in row, or "" when absent.
func (c Columns) cell(row []string, f field) string {
	idx := c[f]
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
