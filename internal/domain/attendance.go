package domain

import (
	"fmt"
	"strings"
)

// Attendance is the visit state of a stop as recorded on the schedule sheet.
type Attendance int

const (
	// Pending is the default: not yet visited and not declined.
	Pending Attendance = iota
	// Confirmed means the traveller tapped "attended"; ConfirmedAt records when.
	Confirmed
	// Declined stops stay in the list but never take part in route geometry.
	Declined
)

// Sheet labels written by the status endpoint and read back from the sheet.
const (
	LabelPending   = "미체크"
	LabelConfirmed = "참석"
	LabelDeclined  = "불참"
)

// Label returns the value stored in the sheet's attendance column.
func (a Attendance) Label() string {
	switch a {
	case Confirmed:
		return LabelConfirmed
	case Declined:
		return LabelDeclined
	default:
		return LabelPending
	}
}

// String returns the lowercase English name used in the JSON API.
func (a Attendance) String() string {
	switch a {
	case Confirmed:
		return "confirmed"
	case Declined:
		return "declined"
	default:
		return "pending"
	}
}

// MarshalText implements encoding.TextMarshaler so Attendance encodes as its name.
func (a Attendance) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike AttendanceFromSheet
// it rejects unknown values, because it is used for user input.
func (a *Attendance) UnmarshalText(b []byte) error {
	v, err := ParseAttendance(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAttendance parses a status supplied by a user (API body, CLI argument).
// Both the English names and the sheet labels are accepted.
// Returns ErrValidation for anything else.
func ParseAttendance(s string) (Attendance, error) {
	if a, ok := lookupAttendance(s); ok {
		return a, nil
	}
	return Pending, fmt.Errorf("%w: unknown attendance status %q", ErrValidation, s)
}

// AttendanceFromSheet reads an attendance cell. Blank or unrecognised values
// default to Pending so a stray note in the column never hides a stop.
func AttendanceFromSheet(s string) Attendance {
	a, _ := lookupAttendance(s)
	return a
}

func lookupAttendance(s string) (Attendance, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "reset", LabelPending:
		return Pending, true
	case "confirmed", "attended", LabelConfirmed:
		return Confirmed, true
	case "declined", "absent", LabelDeclined:
		return Declined, true
	}
	return Pending, false
}
