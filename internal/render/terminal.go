package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(6)

	confirmedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	declinedStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)
	nextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	distanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(9).
			Align(lipgloss.Right)
)

func marker(a domain.Attendance) string {
	switch a {
	case domain.Confirmed:
		return "✓"
	case domain.Declined:
		return "✗"
	default:
		return "·"
	}
}

// Terminal renders the itinerary as styled text, one line per stop with its
// row ID (for `itinerary mark`), time, status, distance and address.
func Terminal(it domain.Itinerary) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("일정 " + it.Date))
	b.WriteString("\n")
	if it.Notice != "" {
		b.WriteString(noticeStyle.Render(it.Notice))
		b.WriteString("\n")
	}
	if it.Empty {
		b.WriteString(EmptyMessage)
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range it.Stops {
		style := pendingStyle
		switch {
		case it.Next != nil && it.Next.ID == s.ID:
			style = nextStyle
		case s.Attendance == domain.Confirmed:
			style = confirmedStyle
		case s.Attendance == domain.Declined:
			style = declinedStyle
		}

		dist := ""
		if d, ok := it.Distances[s.ID]; ok && s.Attendance == domain.Pending {
			dist = FormatDistance(d)
		}

		line := fmt.Sprintf("%4d  %s %s %s %s",
			s.ID,
			timeStyle.Render(s.Scheduled.Format("15:04")),
			style.Render(marker(s.Attendance)+" "+s.Title),
			distanceStyle.Render(dist),
			s.Address,
		)
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}

	if it.Next != nil {
		b.WriteString(nextStyle.Render(fmt.Sprintf("다음: %s %s", it.Next.Scheduled.Format("15:04"), it.Next.Title)))
		b.WriteString("\n")
	}
	return b.String()
}
