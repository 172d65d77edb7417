package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// DefaultGoogleURL is the Google Maps Geocoding API endpoint.
const DefaultGoogleURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google uses the Google Maps Geocoding API.
type Google struct {
	apiKey     string
	region     string
	baseURL    string
	httpClient *http.Client
}

// GoogleOption configures a Google geocoder.
type GoogleOption func(*Google)

// WithBaseURL points the geocoder at another endpoint (tests, proxies).
func WithBaseURL(u string) GoogleOption {
	return func(g *Google) { g.baseURL = u }
}

// WithHTTPClient replaces the default client (10 second timeout).
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *Google) { g.httpClient = c }
}

// NewGoogle creates a Google geocoder. region is a ccTLD bias such as "kr";
// empty disables biasing.
func NewGoogle(apiKey, region string, opts ...GoogleOption) *Google {
	g := &Google{
		apiKey:  apiKey,
		region:  region,
		baseURL: DefaultGoogleURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

type googleResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode implements Geocoder. The first result is taken as the match.
func (g *Google) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	if g.region != "" {
		params.Set("region", g.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, &Error{Kind: KindInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, classifyHTTPStatus(resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinate{}, &Error{Kind: KindUnknown, Message: "decoding response", Err: err}
	}
	if body.Status != "OK" {
		return domain.Coordinate{}, classifyStatus(body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return domain.Coordinate{}, &Error{Kind: KindNotFound, Message: "no results"}
	}

	loc := body.Results[0].Geometry.Location
	return domain.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}
