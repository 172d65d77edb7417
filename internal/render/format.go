package render

import (
	"fmt"
	"math"
)

// FormatDistance renders metres for display: "850 m", "1.2 km".
// Infinite or negative distances render as "".
func FormatDistance(m float64) string {
	switch {
	case math.IsInf(m, 0) || math.IsNaN(m) || m < 0:
		return ""
	case m < 1000:
		return fmt.Sprintf("%.0f m", m)
	case m < 10000:
		return fmt.Sprintf("%.1f km", m/1000)
	default:
		return fmt.Sprintf("%.0f km", m/1000)
	}
}

// EmptyMessage is shown when the day has no stops.
const EmptyMessage = "이 날짜에 등록된 일정이 없습니다."
