package geocode

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// Store is a durable tier behind the in-process memo.
// Get returns domain.ErrNotFound when the address has never been resolved.
type Store interface {
	Get(ctx context.Context, address string) (domain.GeocodeEntry, error)
	Put(ctx context.Context, entry domain.GeocodeEntry) (domain.GeocodeEntry, error)
}

// MemoConfig tunes a Memo. Zero values take the defaults.
type MemoConfig struct {
	// TTL bounds how long a found coordinate is reused. Default 24h.
	TTL time.Duration
	// NegativeTTL bounds how long a "no match" answer is reused. Default TTL.
	NegativeTTL time.Duration
	// Store is optional.
	Store  Store
	Logger *slog.Logger
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Memo memoizes an upstream Geocoder by address.
//
// Concurrent lookups of the same address share one upstream call. Definitive
// answers (a match or a definite "no match") are remembered; transient
// failures are not, so the next refresh tries again.
type Memo struct {
	upstream Geocoder
	cfg      MemoConfig

	mu      sync.Mutex
	entries map[string]domain.GeocodeEntry
	group   singleflight.Group
}

var _ Resolver = (*Memo)(nil)

// NewMemo wraps upstream.
func NewMemo(upstream Geocoder, cfg MemoConfig) *Memo {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = cfg.TTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Memo{
		upstream: upstream,
		cfg:      cfg,
		entries:  make(map[string]domain.GeocodeEntry),
	}
}

// Key normalizes an address for memoization: Unicode NFC with runs of
// whitespace collapsed. Spreadsheet cells pasted from different sources
// often differ only in these respects.
func Key(address string) string {
	return strings.Join(strings.Fields(norm.NFC.String(address)), " ")
}

// Resolve returns the coordinate for address, or nil when it cannot be
// resolved. It never returns an error; failures are logged.
func (m *Memo) Resolve(ctx context.Context, address string) *domain.Coordinate {
	key := Key(address)
	if key == "" {
		return nil
	}
	if e, ok := m.lookup(key); ok {
		return e.Coordinate
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		if e, ok := m.lookup(key); ok {
			return e, nil
		}
		e, ok := m.fromStore(ctx, key)
		if !ok {
			e, ok = m.fromUpstream(ctx, key)
			if !ok {
				return domain.GeocodeEntry{}, nil
			}
			e = m.toStore(ctx, e)
		}
		m.mu.Lock()
		m.entries[key] = e
		m.mu.Unlock()
		return e, nil
	})
	return v.(domain.GeocodeEntry).Coordinate
}

// Len returns the number of memoized addresses, expired ones included.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memo) fresh(e domain.GeocodeEntry) bool {
	ttl := m.cfg.TTL
	if !e.Found() {
		ttl = m.cfg.NegativeTTL
	}
	return m.cfg.Now().Sub(e.ResolvedAt) < ttl
}

func (m *Memo) lookup(key string) (domain.GeocodeEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return domain.GeocodeEntry{}, false
	}
	if !m.fresh(e) {
		delete(m.entries, key)
		return domain.GeocodeEntry{}, false
	}
	return e, true
}

func (m *Memo) fromStore(ctx context.Context, key string) (domain.GeocodeEntry, bool) {
	if m.cfg.Store == nil {
		return domain.GeocodeEntry{}, false
	}
	e, err := m.cfg.Store.Get(ctx, key)
	if err != nil {
		// ErrNotFound is the common case; anything else degrades to upstream.
		return domain.GeocodeEntry{}, false
	}
	if !m.fresh(e) {
		return domain.GeocodeEntry{}, false
	}
	return e, true
}

func (m *Memo) fromUpstream(ctx context.Context, key string) (domain.GeocodeEntry, bool) {
	c, err := m.upstream.Geocode(ctx, key)
	now := m.cfg.Now()
	switch {
	case err == nil && c.Valid():
		return domain.GeocodeEntry{Address: key, Coordinate: &c, ResolvedAt: now}, true
	case err == nil:
		m.cfg.Logger.WarnContext(ctx, "geocoder returned an invalid coordinate", "address", key, "coordinate", c.String())
		return domain.GeocodeEntry{Address: key, ResolvedAt: now}, true
	case IsDefinitive(err):
		m.cfg.Logger.InfoContext(ctx, "address not geocodable", "address", key, "kind", KindOf(err).String())
		return domain.GeocodeEntry{Address: key, ResolvedAt: now}, true
	default:
		m.cfg.Logger.WarnContext(ctx, "geocoding failed", "address", key, "kind", KindOf(err).String(), "error", err)
		return domain.GeocodeEntry{}, false
	}
}

func (m *Memo) toStore(ctx context.Context, e domain.GeocodeEntry) domain.GeocodeEntry {
	if m.cfg.Store == nil {
		return e
	}
	saved, err := m.cfg.Store.Put(ctx, e)
	if err != nil {
		m.cfg.Logger.WarnContext(ctx, "geocode cache write failed", "address", e.Address, "error", err)
		return e
	}
	return saved
}
