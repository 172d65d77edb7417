// Package app builds the object graph shared by the API server and the CLI
// from a loaded Config. No business logic belongs here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/campaign-itinerary/internal/config"
	"github.com/pkordes/campaign-itinerary/internal/gateway"
	"github.com/pkordes/campaign-itinerary/internal/geocode"
	"github.com/pkordes/campaign-itinerary/internal/render"
	"github.com/pkordes/campaign-itinerary/internal/repo"
	"github.com/pkordes/campaign-itinerary/internal/service"
	"github.com/pkordes/campaign-itinerary/internal/sheet"
	"github.com/pkordes/campaign-itinerary/migrations"
)

// App holds the wired dependencies. Call Close when done.
type App struct {
	Itineraries *service.ItineraryService
	Nav         render.Provider
	// Cache is nil when no database is configured.
	Cache repo.GeocodeCacheRepo
	// Memo is nil when geocoding is disabled.
	Memo *geocode.Memo

	pool *pgxpool.Pool
}

// NewLogger returns a JSON logger writing to w at the configured level and
// installs it as the slog default. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// New wires the service from cfg. It opens the geocode cache database and
// applies pending migrations when DatabaseURL is set.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	nav, err := render.ParseProvider(cfg.NavProvider)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	a := &App{Nav: nav}

	if cfg.DatabaseURL != "" {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app.New: create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("app.New: connect to database: %w", err)
		}
		logger.Info("geocode cache database connected")
		a.pool = pool
		a.Cache = repo.NewGeocodeCacheRepo(pool)
	}

	reader, err := newReader(ctx, cfg.Schedule, client)
	if err != nil {
		a.Close()
		return nil, err
	}

	var resolver geocode.Resolver = geocode.Disabled{}
	if cfg.Geocode.Enabled() {
		key := cfg.Geocode.APIKey
		if key == "" {
			key, err = geocode.LookupAPIKey(ctx, cfg.Geocode.Project, cfg.Geocode.KeyDisplayName)
			if err != nil {
				a.Close()
				return nil, err
			}
		}
		memoCfg := geocode.MemoConfig{TTL: cfg.Geocode.TTL, Logger: logger}
		if a.Cache != nil {
			memoCfg.Store = a.Cache
		}
		a.Memo = geocode.NewMemo(geocode.NewGoogle(key, cfg.Geocode.Region, geocode.WithHTTPClient(client)), memoCfg)
		resolver = a.Memo
	} else {
		logger.Warn("geocoding disabled; stops without coordinates are listed unranked")
	}

	status := gateway.New(cfg.Status.EndpointURL,
		gateway.WithHTTPClient(client),
		gateway.WithSuccessMarker(cfg.Status.SuccessMarker),
		gateway.WithLogger(logger),
	)

	a.Itineraries = service.NewItineraryService(sheet.NewSchedule(reader, loc), resolver, status, service.Options{
		Location: loc,
		Logger:   logger,
	})
	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newReader(ctx context.Context, cfg config.ScheduleConfig, client *http.Client) (sheet.Reader, error) {
	switch cfg.Source {
	case "sheets":
		r, err := sheet.NewSheetsReader(ctx, cfg.GoogleAPIKey, cfg.SpreadsheetID, cfg.Range)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "xlsx":
		return sheet.NewXLSXReader(cfg.URL, cfg.Worksheet, client), nil
	default:
		return sheet.NewCSVReader(cfg.URL, client), nil
	}
}

// migrate applies pending migrations. goose drives database/sql, so it gets
// its own short-lived connection.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("app.migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("app.migrate: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("app.migrate: %w", err)
	}
	return nil
}
