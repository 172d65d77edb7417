package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

var dateLayouts = []string{
	domain.DateLayout,
	"2006. 1. 2",
	"2006. 1. 2.",
	"2006.1.2",
	"2006/1/2",
	"1/2/2006",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3 PM",
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 3:04:05 PM",
	"2006. 1. 2 15:04:05",
	"2006. 1. 2 3:04:05 PM",
	"2006. 1. 2. 3:04:05 PM",
	"2006. 1. 2 3:04 PM",
	"2006/1/2 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
}

// Parse converts raw sheet rows into stops. rows[0] must be the header row.
// Times are interpreted in loc.
//
// Stop.ID is the 0-based position of the row after the header, so blank rows
// still consume an ID and IDs always match the sheet. Rows with a blank date
// are skipped. A non-blank row with an unparseable date or time fails the
// whole parse with domain.ErrScheduleSource; a half-read schedule is never
// returned. Attendance, confirmation time, end time and coordinates are
// best-effort and never fail the parse.
func Parse(rows [][]string, loc *time.Location) ([]domain.Stop, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet has no header row", domain.ErrScheduleSource)
	}
	cols, err := ResolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	stops := make([]domain.Stop, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rawDate := cols.cell(row, fieldDate)
		if rawDate == "" {
			continue
		}
		stop, err := parseRow(cols, row, i, rawDate, loc)
		if err != nil {
			// +2: one for the header, one because sheet rows are 1-based.
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrScheduleSource, i+2, err)
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

func parseRow(cols Columns, row []string, id int, rawDate string, loc *time.Location) (domain.Stop, error) {
	day, err := parseDate(rawDate, loc)
	if err != nil {
		return domain.Stop{}, err
	}
	clock, err := parseClock(cols.cell(row, fieldTime))
	if err != nil {
		return domain.Stop{}, err
	}

	stop := domain.Stop{
		ID:         id,
		Date:       day.Format(domain.DateLayout),
		Scheduled:  day.Add(clock),
		Title:      cols.cell(row, fieldTitle),
		Address:    cols.cell(row, fieldAddress),
		Attendance: domain.AttendanceFromSheet(cols.cell(row, fieldAttendance)),
		Coordinate: parseCoordinate(cols.cell(row, fieldLat), cols.cell(row, fieldLng)),
	}
	if end, err := parseClock(cols.cell(row, fieldEnd)); err == nil {
		t := day.Add(end)
		stop.End = &t
	}
	if ts, ok := parseTimestamp(cols.cell(row, fieldConfirmedAt), loc); ok {
		stop.ConfirmedAt = &ts
	}
	return stop.Normalize(), nil
}

// parseDate parses a date cell into midnight of that day in loc.
// Excel serial numbers (XLSX exports without formatting) are accepted.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 1 && serial < 200000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q", s)
}

// parseClock parses a time-of-day cell into an offset from midnight.
// Korean meridiem markers (오전/오후) are accepted in front of the time.
func parseClock(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("missing time")
	}
	norm := normalizeMeridiem(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			h, m, sec := t.Clock()
			return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
		}
	}
	return 0, fmt.Errorf("malformed time %q", s)
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	// JavaScript Date strings end in a zone name: "... GMT+0900 (Korean Standard Time)".
	if idx := strings.Index(s, " ("); idx > 0 {
		s = s[:idx]
	}
	norm := normalizeMeridiem(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, norm, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeMeridiem rewrites "오후 3:04" and "2026. 10. 17 오전 9:05:00" into
// the "3:04 PM" form the time package understands.
func normalizeMeridiem(s string) string {
	for marker, suffix := range map[string]string{"오전": "AM", "오후": "PM"} {
		if idx := strings.Index(s, marker); idx >= 0 {
			before := strings.TrimSpace(s[:idx])
			after := strings.TrimSpace(s[idx+len(marker):])
			if before == "" {
				return after + " " + suffix
			}
			return before + " " + after + " " + suffix
		}
	}
	return s
}

// parseCoordinate returns nil unless both cells hold a valid, non-zero position.
func parseCoordinate(rawLat, rawLng string) *domain.Coordinate {
	if rawLat == "" || rawLng == "" {
		return nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil
	}
	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() || (lat == 0 && lng == 0) {
		return nil
	}
	return &c
}
