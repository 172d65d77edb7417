package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

//go:embed templates/*.html
var templates embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templates, "templates/dashboard.html"))

// Action is one attendance button on the dashboard.
type Action struct {
	Status string
	Label  string
}

var dashboardActions = []Action{
	{Status: domain.Confirmed.String(), Label: domain.LabelConfirmed},
	{Status: domain.Declined.String(), Label: domain.LabelDeclined},
	{Status: domain.Pending.String(), Label: "초기화"},
}

// DashboardRow is one stop as the dashboard lists it.
type DashboardRow struct {
	ID         int
	Order      int
	Time       string
	Title      string
	Address    string
	Attendance string
	Label      string
	Distance   string
	Next       bool
	Links      []Link
}

// DashboardData is the template input.
type DashboardData struct {
	Date         string
	PrevDate     string
	NextDate     string
	Notice       string
	Empty        bool
	EmptyMessage string
	MapURL       string
	Rows         []DashboardRow
	Actions      []Action
}

// NewDashboardData prepares the dashboard view of it.
func NewDashboardData(it domain.Itinerary, primary Provider) DashboardData {
	d := DashboardData{
		Date:         it.Date,
		Notice:       it.Notice,
		Empty:        it.Empty,
		EmptyMessage: EmptyMessage,
		MapURL:       "/api/itinerary/map?date=" + url.QueryEscape(it.Date),
		Actions:      dashboardActions,
	}
	if day, err := time.Parse(domain.DateLayout, it.Date); err == nil {
		d.PrevDate = day.AddDate(0, 0, -1).Format(domain.DateLayout)
		d.NextDate = day.AddDate(0, 0, 1).Format(domain.DateLayout)
	}

	order := 0
	for _, s := range it.Stops {
		row := DashboardRow{
			ID:         s.ID,
			Time:       s.Scheduled.Format("15:04"),
			Title:      s.Title,
			Address:    s.Address,
			Attendance: s.Attendance.String(),
			Label:      s.Attendance.Label(),
			Next:       it.Next != nil && it.Next.ID == s.ID,
			Links:      NavLinks(primary, s),
		}
		if s.Attendance != domain.Declined && s.HasCoordinate() {
			order++
			row.Order = order
		}
		if dist, ok := it.Distances[s.ID]; ok && s.Attendance == domain.Pending {
			row.Distance = FormatDistance(dist)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// Dashboard writes the HTML dashboard for it.
func Dashboard(w io.Writer, it domain.Itinerary, primary Provider) error {
	if err := dashboardTmpl.Execute(w, NewDashboardData(it, primary)); err != nil {
		return fmt.Errorf("render.Dashboard: %w", err)
	}
	return nil
}
