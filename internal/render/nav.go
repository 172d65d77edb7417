// Package render turns an itinerary into the views the field team uses:
// navigation links, a GeoJSON map layer, a GPX route, an HTML dashboard and
// a terminal listing.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// Provider is a map application that can open a destination.
type Provider string

const (
	Kakao  Provider = "kakao"
	Naver  Provider = "naver"
	Google Provider = "google"
)

// Providers lists every supported provider, primary first by default.
var Providers = []Provider{Kakao, Naver, Google}

// ParseProvider parses a provider name. Empty means Kakao.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Kakao, nil
	case Kakao, Naver, Google:
		return p, nil
	default:
		return "", fmt.Errorf("unknown navigation provider %q: %w", s, domain.ErrValidation)
	}
}

// Label is the human name of the provider.
func (p Provider) Label() string {
	switch p {
	case Naver:
		return "네이버지도"
	case Google:
		return "Google Maps"
	default:
		return "카카오맵"
	}
}

// NavURL returns a link that opens p on the stop: a directions link when the
// stop is located, otherwise an address search. It returns "" when the stop
// has neither.
func NavURL(p Provider, s domain.Stop) string {
	name := s.Title
	if name == "" {
		name = s.Address
	}

	if s.Coordinate != nil {
		c := *s.Coordinate
		switch p {
		case Naver:
			return fmt.Sprintf("https://map.naver.com/p/directions/-/%f,%f,%s,,/-/transit",
				c.Lng, c.Lat, url.PathEscape(name))
		case Google:
			return "https://www.google.com/maps/dir/?api=1&destination=" + url.QueryEscape(c.String())
		default:
			return fmt.Sprintf("https://map.kakao.com/link/to/%s,%f,%f",
				url.PathEscape(strings.ReplaceAll(name, ",", " ")), c.Lat, c.Lng)
		}
	}

	if s.Address == "" {
		return ""
	}
	switch p {
	case Naver:
		return "https://map.naver.com/p/search/" + url.PathEscape(s.Address)
	case Google:
		return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(s.Address)
	default:
		return "https://map.kakao.com/link/search/" + url.PathEscape(s.Address)
	}
}

// Link is one navigation option for a stop.
type Link struct {
	Provider Provider `json:"provider"`
	Label    string   `json:"label"`
	URL      string   `json:"url"`
}

// NavLinks returns a link per provider, primary first. It returns nil when
// the stop cannot be navigated to.
func NavLinks(primary Provider, s domain.Stop) []Link {
	if NavURL(primary, s) == "" {
		return nil
	}
	links := []Link{{Provider: primary, Label: primary.Label(), URL: NavURL(primary, s)}}
	for _, p := range Providers {
		if p != primary {
			links = append(links, Link{Provider: p, Label: p.Label(), URL: NavURL(p, s)})
		}
	}
	return links
}
