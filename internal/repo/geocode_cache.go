package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/campaign-itinerary/internal/domain"
)

// GeocodeCacheRepo persists geocoding answers across restarts.
// It satisfies geocode.Store.
type GeocodeCacheRepo interface {
	// Get returns the entry for a normalized address.
	// Returns domain.ErrNotFound if the address has never been stored.
	Get(ctx context.Context, address string) (domain.GeocodeEntry, error)

	// Put inserts or replaces the entry for entry.Address and returns the
	// stored row. A nil Coordinate stores a "no match" answer.
	Put(ctx context.Context, entry domain.GeocodeEntry) (domain.GeocodeEntry, error)

	// List returns all entries ordered by address.
	List(ctx context.Context) ([]domain.GeocodeEntry, error)

	// DeleteBefore removes entries resolved before cutoff and returns how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgGeocodeCacheRepo struct {
	db db
}

// NewGeocodeCacheRepo constructs a GeocodeCacheRepo backed by db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewGeocodeCacheRepo(db db) GeocodeCacheRepo {
	return &pgGeocodeCacheRepo{db: db}
}

const geocodeColumns = `id, address, lat, lng, resolved_at`

func (r *pgGeocodeCacheRepo) Get(ctx context.Context, address string) (domain.GeocodeEntry, error) {
	const q = `SELECT ` + geocodeColumns + ` FROM geocode_cache WHERE address = @address`

	e, err := scanGeocodeEntry(r.db.QueryRow(ctx, q, pgx.NamedArgs{"address": address}))
	if err != nil {
		return domain.GeocodeEntry{}, fmt.Errorf("repo.GeocodeCacheRepo.Get: %w", err)
	}
	return e, nil
}

func (r *pgGeocodeCacheRepo) Put(ctx context.Context, entry domain.GeocodeEntry) (domain.GeocodeEntry, error) {
	if entry.Address == "" {
		return domain.GeocodeEntry{}, fmt.Errorf("repo.GeocodeCacheRepo.Put: empty address: %w", domain.ErrValidation)
	}

	const q = `
		INSERT INTO geocode_cache (address, lat, lng, resolved_at)
		VALUES (@address, @lat, @lng, @resolved_at)
		ON CONFLICT (address) DO UPDATE
		SET lat         = EXCLUDED.lat,
		    lng         = EXCLUDED.lng,
		    resolved_at = EXCLUDED.resolved_at
		RETURNING ` + geocodeColumns

	resolvedAt := entry.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now()
	}
	args := pgx.NamedArgs{
		"address":     entry.Address,
		"lat":         pgtype.Float8{},
		"lng":         pgtype.Float8{},
		"resolved_at": resolvedAt,
	}
	if entry.Coordinate != nil {
		args["lat"] = pgtype.Float8{Float64: entry.Coordinate.Lat, Valid: true}
		args["lng"] = pgtype.Float8{Float64: entry.Coordinate.Lng, Valid: true}
	}

	e, err := scanGeocodeEntry(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.GeocodeEntry{}, fmt.Errorf("repo.GeocodeCacheRepo.Put: %w", err)
	}
	return e, nil
}

func (r *pgGeocodeCacheRepo) List(ctx context.Context) ([]domain.GeocodeEntry, error) {
	const q = `SELECT ` + geocodeColumns + ` FROM geocode_cache ORDER BY address`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.GeocodeCacheRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []domain.GeocodeEntry
	for rows.Next() {
		e, err := scanGeocodeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.GeocodeCacheRepo.List: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.GeocodeCacheRepo.List: rows: %w", err)
	}
	return entries, nil
}

func (r *pgGeocodeCacheRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM geocode_cache WHERE resolved_at < @cutoff`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.GeocodeCacheRepo.DeleteBefore: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanGeocodeEntry maps one geocode_cache row. NULL lat/lng is a negative entry.
func scanGeocodeEntry(s scanner) (domain.GeocodeEntry, error) {
	var (
		e        domain.GeocodeEntry
		id       pgtype.UUID
		lat, lng pgtype.Float8
	)

	if err := s.Scan(&id, &e.Address, &lat, &lng, &e.ResolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GeocodeEntry{}, domain.ErrNotFound
		}
		return domain.GeocodeEntry{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	if lat.Valid && lng.Valid {
		e.Coordinate = &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	return e, nil
}
