package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/pkordes/campaign-itinerary/internal/domain"
	"github.com/pkordes/campaign-itinerary/internal/render"
)

var seoul = time.FixedZone("KST", 9*60*60)

var (
	cityHall   = domain.Coordinate{Lat: 37.5663, Lng: 126.9779}
	gangnamStn = domain.Coordinate{Lat: 37.4979, Lng: 127.0276}
)

func at(hhmm string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02 15:04", "2026-10-17 "+hhmm, seoul)
	return t
}

// sampleItinerary: a confirmed stop, a pending stop in the same building,
// a pending stop across town, a stop without coordinates and a declined one.
func sampleItinerary() domain.Itinerary {
	c1, c2, c3 := cityHall, cityHall, gangnamStn
	stops := []domain.Stop{
		{ID: 0, Date: "2026-10-17", Scheduled: at("09:00"), Title: "출근 인사", Address: "서울 중구 세종대로 110", Coordinate: &c1, Attendance: domain.Confirmed},
		{ID: 1, Date: "2026-10-17", Scheduled: at("10:00"), Title: "간담회", Address: "서울 중구 세종대로 110", Coordinate: &c2, Attendance: domain.Pending},
		{ID: 2, Date: "2026-10-17", Scheduled: at("10:00"), Title: "거리 유세", Address: "서울 강남구 강남대로 396", Coordinate: &c3, Attendance: domain.Pending},
		{ID: 3, Date: "2026-10-17", Scheduled: at("11:00"), Title: "미정", Address: "어딘가", Attendance: domain.Pending},
		{ID: 4, Date: "2026-10-17", Scheduled: at("12:00"), Title: "취소", Address: "부산", Attendance: domain.Declined},
	}
	next := stops[1]
	return domain.Itinerary{
		Date:        "2026-10-17",
		Stops:       stops,
		Anchor:      &c1,
		Route:       []domain.Coordinate{c1, c2, c3},
		Next:        &next,
		Distances:   map[int]float64{0: 0, 1: 1.4, 2: 9500},
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, seoul),
	}
}

// ---- navigation ------------------------------------------------------------

func TestParseProvider(t *testing.T) {
	p, err := render.ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, render.Kakao, p)

	p, err = render.ParseProvider(" Naver ")
	require.NoError(t, err)
	assert.Equal(t, render.Naver, p)

	_, err = render.ParseProvider("tmap")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNavURL(t *testing.T) {
	located := domain.Stop{Title: "시청", Address: "서울 중구 세종대로 110", Coordinate: &cityHall}
	addressOnly := domain.Stop{Title: "시청", Address: "서울 중구 세종대로 110"}

	tests := []struct {
		name     string
		provider render.Provider
		stop     domain.Stop
		prefix   string
		contains string
	}{
		{"kakao directions", render.Kakao, located, "https://map.kakao.com/link/to/", "37.566300,126.977900"},
		{"kakao search", render.Kakao, addressOnly, "https://map.kakao.com/link/search/", "%EC%84%9C%EC%9A%B8"},
		{"naver directions", render.Naver, located, "https://map.naver.com/p/directions/", "126.977900,37.566300"},
		{"naver search", render.Naver, addressOnly, "https://map.naver.com/p/search/", "%EC%84%9C%EC%9A%B8"},
		{"google directions", render.Google, located, "https://www.google.com/maps/dir/?api=1&destination=", "37.566300%2C126.977900"},
		{"google search", render.Google, addressOnly, "https://www.google.com/maps/search/?api=1&query=", "%EC%84%9C%EC%9A%B8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := render.NavURL(tc.provider, tc.stop)
			assert.True(t, strings.HasPrefix(got, tc.prefix), got)
			assert.Contains(t, got, tc.contains)
		})
	}
}

func TestNavLinks(t *testing.T) {
	links := render.NavLinks(render.Naver, domain.Stop{Address: "부산역"})

	require.Len(t, links, 3)
	assert.Equal(t, render.Naver, links[0].Provider)
	assert.Equal(t, render.Kakao, links[1].Provider)
	assert.Equal(t, render.Google, links[2].Provider)

	assert.Nil(t, render.NavLinks(render.Kakao, domain.Stop{Title: "nowhere"}))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", render.FormatDistance(849.6))
	assert.Equal(t, "1.2 km", render.FormatDistance(1234))
	assert.Equal(t, "12 km", render.FormatDistance(12345))
	assert.Equal(t, "", render.FormatDistance(-1))
}

// ---- GeoJSON ---------------------------------------------------------------

func TestGeoJSON(t *testing.T) {
	fc := render.GeoJSON(sampleItinerary())

	b, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)

	var markers, anchors, lines int
	for _, f := range decoded.Features {
		switch f.Properties["kind"] {
		case "stop":
			markers++
			assert.Equal(t, "Point", f.Geometry.Type)
		case "anchor":
			anchors++
		case "route":
			lines++
			assert.Equal(t, "LineString", f.Geometry.Type)
			var pts [][2]float64
			require.NoError(t, json.Unmarshal(f.Geometry.Coordinates, &pts))
			require.Len(t, pts, 3)
			assert.Equal(t, [2]float64{cityHall.Lng, cityHall.Lat}, pts[0], "positions are [lng, lat]")
		}
	}
	assert.Equal(t, 2, markers, "co-located stops share a marker; unlocated and declined stops have none")
	assert.Equal(t, 1, anchors)
	assert.Equal(t, 1, lines)

	first := decoded.Features[0].Properties
	assert.Equal(t, "1,2", first["label"])
	assert.Equal(t, render.ColorNext, first["color"])
	assert.Equal(t, true, first["next"])

	second := decoded.Features[1].Properties
	assert.Equal(t, "3", second["label"])
	assert.Equal(t, render.ColorPending, second["color"])
}

func TestGeoJSON_EmptyDay(t *testing.T) {
	fc := render.GeoJSON(domain.Itinerary{Date: "2026-10-17", Empty: true})

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}

// ---- GPX -------------------------------------------------------------------

func TestGPX(t *testing.T) {
	b, err := render.GPX(sampleItinerary())
	require.NoError(t, err)

	doc, err := gpx.ParseBytes(b)
	require.NoError(t, err)
	assert.Equal(t, "1.1", doc.Version)
	require.Len(t, doc.Waypoints, 3)
	assert.Equal(t, "출근 인사", doc.Waypoints[0].Name)
	require.Len(t, doc.Routes, 1)
	require.Len(t, doc.Routes[0].Points, 3)
	assert.InDelta(t, gangnamStn.Lat, doc.Routes[0].Points[2].Latitude, 1e-6)
}

func TestGPX_EmptyDay(t *testing.T) {
	b, err := render.GPX(domain.Itinerary{Date: "2026-10-17", Empty: true})
	require.NoError(t, err)

	doc, err := gpx.ParseBytes(b)
	require.NoError(t, err)
	assert.Empty(t, doc.Routes)
}

// ---- dashboard -------------------------------------------------------------

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Dashboard(&buf, sampleItinerary(), render.Kakao))
	html := buf.String()

	assert.Contains(t, html, "<title>일정 2026-10-17</title>")
	assert.Contains(t, html, `action="/stops/2/attendance"`)
	assert.Contains(t, html, `value="declined"`)
	assert.Contains(t, html, "https://map.kakao.com/link/to/")
	assert.Contains(t, html, `href="/?date=2026-10-16"`)
	assert.Contains(t, html, `href="/?date=2026-10-18"`)
	assert.Contains(t, html, "9.5 km")
	assert.Contains(t, html, `class="pending next"`)
	assert.Contains(t, html, `href="/api/itinerary/route.gpx?date=2026-10-17"`)
}

func TestDashboard_EmptyAndStale(t *testing.T) {
	var buf bytes.Buffer
	it := domain.Itinerary{Date: "2026-10-17", Empty: true, Stale: true, Notice: "시트를 읽지 못했습니다"}

	require.NoError(t, render.Dashboard(&buf, it, render.Kakao))

	assert.Contains(t, buf.String(), render.EmptyMessage)
	assert.Contains(t, buf.String(), "시트를 읽지 못했습니다")
	assert.NotContains(t, buf.String(), `id="map"`)
}

func TestNewDashboardData_Orders(t *testing.T) {
	d := render.NewDashboardData(sampleItinerary(), render.Google)

	require.Len(t, d.Rows, 5)
	assert.Equal(t, []int{1, 2, 3, 0, 0}, []int{d.Rows[0].Order, d.Rows[1].Order, d.Rows[2].Order, d.Rows[3].Order, d.Rows[4].Order})
	assert.True(t, d.Rows[1].Next)
	assert.Equal(t, render.Google, d.Rows[0].Links[0].Provider)
	assert.Equal(t, "", d.Rows[0].Distance, "confirmed stops show no distance")
	assert.Equal(t, "/api/itinerary/map?date=2026-10-17", d.MapURL)
}

// ---- terminal --------------------------------------------------------------

func TestTerminal(t *testing.T) {
	out := render.Terminal(sampleItinerary())

	assert.Contains(t, out, "일정 2026-10-17")
	assert.Contains(t, out, "출근 인사")
	assert.Contains(t, out, "9.5 km")
	assert.Contains(t, out, "다음:")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7, "header, five stops, next")
}

func TestTerminal_Empty(t *testing.T) {
	out := render.Terminal(domain.Itinerary{Date: "2026-10-17", Empty: true, Notice: "stale"})

	assert.Contains(t, out, render.EmptyMessage)
	assert.Contains(t, out, "stale")
}
