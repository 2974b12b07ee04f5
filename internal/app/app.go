// Package app assembles the import backend from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"property-import-backend/internal/cloudinary"
	"property-import-backend/internal/config"
	"property-import-backend/internal/database"
	"property-import-backend/internal/models"
	"property-import-backend/internal/services"
	"property-import-backend/internal/sources"
	"property-import-backend/internal/supabase"
)

// DemoSourceName is the built-in mock source.
const DemoSourceName = "testsource"

// PropertyStore is what the pipeline writes to and the API reads from.
type PropertyStore interface {
	CreateProperty(ctx context.Context, rec *models.PropertyRecord) (string, error)
	GetProperty(ctx context.Context, id string) (*models.PropertyRecord, error)
	ListProperties(ctx context.Context, source string, limit int) ([]models.PropertyRecord, error)
}

type Options struct {
	// HTTPClient, when set, is used for every outbound call: the media
	// host, image downloads and JSON feeds.
	HTTPClient *http.Client
}

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Media         *cloudinary.Client
	Sources       *sources.Registry
	SourceConfigs []sources.SourceConfig
	Store         PropertyStore
	Snapshots     *supabase.SnapshotArchive
	Scraping      *services.ScrapingService
	Scheduler     *services.Scheduler

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	a.Media = cloudinary.NewClient(cloudinary.Config{
		CloudName:       cfg.CloudinaryCloudName,
		UploadPreset:    cfg.CloudinaryUploadPreset,
		APIKey:          cfg.CloudinaryAPIKey,
		APISecret:       cfg.CloudinaryAPISecret,
		APIBaseURL:      cfg.CloudinaryAPIBaseURL,
		DeliveryBaseURL: cfg.CloudinaryDeliveryBaseURL,
		FolderPrefix:    cfg.CloudinaryFolderPrefix,
		Timeout:         cfg.HTTPTimeout,
	})
	if opts.HTTPClient != nil {
		a.Media.SetHTTPClient(opts.HTTPClient)
	}

	if err := a.loadSources(opts.HTTPClient); err != nil {
		return nil, err
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	fetcher := services.NewHTTPImageFetcher(cfg.RehostRatePerSecond, cfg.HTTPTimeout)
	if opts.HTTPClient != nil {
		fetcher.SetHTTPClient(opts.HTTPClient)
	}

	scrapingOpts := services.ScrapingOptions{Concurrency: cfg.RehostConcurrency, Logger: logger}
	if cfg.SupabaseSnapshotBucket != "" {
		a.Snapshots = supabase.NewSnapshotArchive(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseSnapshotBucket)
		scrapingOpts.Archive = a.Snapshots
	}
	a.Scraping = services.NewScrapingService(a.Sources, a.Media, fetcher, a.Store, services.NewMemoryJobStore(), scrapingOpts)

	a.Scheduler = services.NewScheduler(a.Scraping, 0, logger)
	for _, sc := range a.SourceConfigs {
		if sc.Schedule == "" {
			continue
		}
		if err := a.Scheduler.Schedule(sc.Name, sc.Schedule); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *App) loadSources(httpClient *http.Client) error {
	if a.Config.SourcesFile != "" {
		cfgs, err := sources.LoadConfig(a.Config.SourcesFile)
		if err != nil {
			return err
		}
		a.SourceConfigs = cfgs
	}

	reg, err := sources.NewRegistryFromConfig(a.SourceConfigs, httpClient)
	if err != nil {
		return err
	}
	if a.Config.EnableDemoSource {
		if _, err := reg.Get(DemoSourceName); errors.Is(err, sources.ErrUnknownSource) {
			reg.Register(sources.NewMockSource(DemoSourceName))
		}
	}
	a.Sources = reg
	a.Logger.Info("listing sources loaded", "sources", reg.Names())
	return nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.DocumentStore {
	case config.StoreSupabase:
		client, err := supabase.NewClient(a.Config.SupabaseURL, a.Config.SupabasePublishableKey)
		if err != nil {
			return err
		}
		a.Store = supabase.NewPropertyStore(client, a.Config.SupabasePropertiesTable)
		a.Logger.Info("using supabase document store", "table", a.Config.SupabasePropertiesTable)
		return nil

	case config.StorePostgres, config.StoreSQLite:
		dialect, dsn := database.DialectPostgres, a.Config.DatabaseURL
		if a.Config.DocumentStore == config.StoreSQLite {
			dialect, dsn = database.DialectSQLite, a.Config.SQLitePath
		}
		db, err := database.Open(ctx, dialect, dsn)
		if err != nil {
			return err
		}
		if err := database.NewMigrator(db, dialect, a.Logger).Run(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.db = db
		a.Store = database.NewPropertyStore(db, dialect)
		a.Logger.Info("using sql document store", "dialect", dialect)
		return nil

	default:
		return fmt.Errorf("unknown document store %q", a.Config.DocumentStore)
	}
}

// Close stops the scheduler and releases the database.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
