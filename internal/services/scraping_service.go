package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"property-import-backend/internal/cloudinary"
	"property-import-backend/internal/models"
	"property-import-backend/internal/sources"
)

// SourceResolver finds a listing source by name.
type SourceResolver interface {
	Get(name string) (sources.Source, error)
}

// MediaUploader is the part of the media gateway used for re-hosting.
type MediaUploader interface {
	UploadFile(ctx context.Context, file cloudinary.File, opts cloudinary.UploadOptions) (*cloudinary.UploadResult, error)
}

// PropertyStore is the document store that imported listings land in.
type PropertyStore interface {
	CreateProperty(ctx context.Context, rec *models.PropertyRecord) (string, error)
}

// SnapshotArchive keeps the listings of a completed scrape so they can be
// reviewed and committed later.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, job models.ImportJob, listings []models.ScrapedListing) error
	LoadSnapshot(ctx context.Context, job models.ImportJob) ([]models.ScrapedListing, error)
}

type ScrapingOptions struct {
	// Concurrency bounds how many listings re-host images at once.
	// Images inside one listing are always handled in order.
	Concurrency int
	Archive     SnapshotArchive
	Logger      *slog.Logger
}

type ScrapingService struct {
	sources     SourceResolver
	uploader    MediaUploader
	fetcher     ImageFetcher
	store       PropertyStore
	jobs        JobStore
	archive     SnapshotArchive
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

func NewScrapingService(resolver SourceResolver, uploader MediaUploader, fetcher ImageFetcher, store PropertyStore, jobs JobStore, opts ScrapingOptions) *ScrapingService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if jobs == nil {
		jobs = NewMemoryJobStore()
	}
	return &ScrapingService{
		sources:     resolver,
		uploader:    uploader,
		fetcher:     fetcher,
		store:       store,
		jobs:        jobs,
		archive:     opts.Archive,
		concurrency: concurrency,
		logger:      logger.With(slog.String("service", "scraping")),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// ScrapeProperties runs acquisition and image re-hosting for one source.
// Nothing is persisted. The returned job is a snapshot of its final state.
func (s *ScrapingService) ScrapeProperties(ctx context.Context, source string) (models.ImportJob, []models.ScrapedListing, error) {
	job := models.ImportJob{
		ID:        s.newID(),
		Source:    source,
		Status:    models.JobStatusPending,
		StartedAt: s.now().UTC(),
		Errors:    []string{},
	}
	s.jobs.Put(job)
	started, err := s.jobs.Update(job.ID, func(j *models.ImportJob) error {
		return j.Transition(models.JobStatusRunning)
	})
	if err != nil {
		startErr := fmt.Errorf("failed to start job %s: %w", job.ID, err)
		s.logger.Error("scrape job could not start", "job_id", job.ID, "source", source, "error", err)
		completed := s.now().UTC()
		job.Status = models.JobStatusFailed
		job.CompletedAt = &completed
		job.Errors = append(job.Errors, startErr.Error())
		s.jobs.Put(job)
		return job, nil, startErr
	}
	job = started
	s.logger.Info("scrape job started", "job_id", job.ID, "source", source)

	listings, err := s.acquire(ctx, source)
	if err != nil {
		acqErr := &AcquisitionError{Source: source, Err: err}
		job = s.finish(job.ID, models.JobStatusFailed, func(j *models.ImportJob) {
			j.Errors = append(j.Errors, acqErr.Error())
		})
		s.logger.Error("scrape job failed", "job_id", job.ID, "source", source, "error", acqErr)
		return job, nil, acqErr
	}

	rehosted := s.rehostAll(ctx, listings)

	job = s.finish(job.ID, models.JobStatusCompleted, func(j *models.ImportJob) {
		j.PropertiesFound = len(rehosted)
	})
	s.logger.Info("scrape job completed", "job_id", job.ID, "source", source, "properties_found", job.PropertiesFound)

	if s.archive != nil {
		if err := s.archive.SaveSnapshot(ctx, job, rehosted); err != nil {
			s.logger.Warn("failed to archive scrape snapshot", "job_id", job.ID, "error", err)
		}
	}

	return job, rehosted, nil
}

func (s *ScrapingService) acquire(ctx context.Context, name string) ([]models.ScrapedListing, error) {
	src, err := s.sources.Get(name)
	if err != nil {
		return nil, err
	}
	return src.FetchListings(ctx)
}

func (s *ScrapingService) finish(id string, status models.JobStatus, mutate func(j *models.ImportJob)) models.ImportJob {
	job, err := s.jobs.Update(id, func(j *models.ImportJob) error {
		if err := j.Transition(status); err != nil {
			return err
		}
		mutate(j)
		completed := s.now().UTC()
		j.CompletedAt = &completed
		return nil
	})
	if err != nil {
		s.logger.Error("failed to finish job", "job_id", id, "status", status, "error", err)
		job, _ = s.jobs.Get(id)
	}
	return job
}

// rehostAll re-hosts every listing's images. Listings run with bounded
// parallelism; output order matches input order.
func (s *ScrapingService) rehostAll(ctx context.Context, listings []models.ScrapedListing) []models.ScrapedListing {
	out := make([]models.ScrapedListing, len(listings))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range listings {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = s.rehostListing(ctx, listings[i])
		}(i)
	}
	wg.Wait()

	return out
}

func (s *ScrapingService) rehostListing(ctx context.Context, listing models.ScrapedListing) models.ScrapedListing {
	result := listing.Clone()
	if result.Images == nil {
		result.Images = []string{}
	}
	result.VerificationStatus = models.VerificationUnverified

	for i, original := range listing.Images {
		hosted, err := s.rehostImage(ctx, listing.Source, original)
		if err != nil {
			rhErr := &ReHostError{Source: listing.Source, Listing: listing.Title, Index: i, ImageURL: original, Err: err}
			s.logger.Warn("image re-host failed, keeping original url", "error", rhErr)
			continue
		}
		result.Images[i] = hosted
	}
	return result
}

func (s *ScrapingService) rehostImage(ctx context.Context, source, imageURL string) (string, error) {
	file, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}
	res, err := s.uploader.UploadFile(ctx, file, cloudinary.UploadOptions{
		Folder:       cloudinary.FolderProperties,
		ResourceType: cloudinary.ResourceImage,
		Tags:         []string{"scraped", source},
	})
	if err != nil {
		return "", err
	}
	return res.SecureURL, nil
}

// ImportPropertiesToDatabase persists each listing independently. A listing
// the store rejects is logged and skipped. The only error returned is
// context cancellation, together with the ids written so far.
func (s *ScrapingService) ImportPropertiesToDatabase(ctx context.Context, listings []models.ScrapedListing) ([]string, error) {
	ids, _, err := s.importListings(ctx, listings)
	return ids, err
}

func (s *ScrapingService) importListings(ctx context.Context, listings []models.ScrapedListing) ([]string, []error, error) {
	ids := make([]string, 0, len(listings))
	var failures []error

	for i, listing := range listings {
		if err := ctx.Err(); err != nil {
			return ids, failures, err
		}

		rec := models.NewPropertyRecord(listing, s.now().UTC())
		id, err := s.store.CreateProperty(ctx, rec)
		if err != nil {
			pErr := &PersistenceError{Index: i, Title: listing.Title, Err: err}
			s.logger.Error("failed to import property", "error", pErr)
			failures = append(failures, pErr)
			continue
		}
		ids = append(ids, id)
	}

	s.logger.Info("properties imported", "requested", len(listings), "imported", len(ids))
	return ids, failures, nil
}

// RunImport scrapes a source and immediately imports the result, recording
// the import outcome on the job.
func (s *ScrapingService) RunImport(ctx context.Context, source string) (models.ImportJob, []string, error) {
	job, listings, err := s.ScrapeProperties(ctx, source)
	if err != nil {
		return job, nil, err
	}

	ids, failures, importErr := s.importListings(ctx, listings)
	job = s.recordImport(job.ID, ids, failures, importErr)
	return job, ids, importErr
}

// CommitSnapshot imports the archived listings of a completed scrape job.
func (s *ScrapingService) CommitSnapshot(ctx context.Context, jobID string) (models.ImportJob, []string, error) {
	listings, job, err := s.snapshot(ctx, jobID)
	if err != nil {
		return models.ImportJob{}, nil, err
	}

	ids, failures, importErr := s.importListings(ctx, listings)
	job = s.recordImport(job.ID, ids, failures, importErr)
	return job, ids, importErr
}

// GetSnapshot returns the archived listings of a completed scrape job.
func (s *ScrapingService) GetSnapshot(ctx context.Context, jobID string) ([]models.ScrapedListing, error) {
	listings, _, err := s.snapshot(ctx, jobID)
	return listings, err
}

func (s *ScrapingService) snapshot(ctx context.Context, jobID string) ([]models.ScrapedListing, models.ImportJob, error) {
	if s.archive == nil {
		return nil, models.ImportJob{}, ErrArchiveDisabled
	}
	job, ok := s.jobs.Get(jobID)
	if !ok {
		return nil, models.ImportJob{}, ErrJobNotFound
	}
	if job.Status != models.JobStatusCompleted {
		return nil, job, fmt.Errorf("%w: job %s is %s", ErrJobNotCompleted, jobID, job.Status)
	}
	listings, err := s.archive.LoadSnapshot(ctx, job)
	if err != nil {
		return nil, job, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return listings, job, nil
}

func (s *ScrapingService) recordImport(jobID string, ids []string, failures []error, importErr error) models.ImportJob {
	job, err := s.jobs.Update(jobID, func(j *models.ImportJob) error {
		j.PropertiesImported += len(ids)
		for _, f := range failures {
			j.Errors = append(j.Errors, f.Error())
		}
		if importErr != nil {
			j.Errors = append(j.Errors, fmt.Sprintf("import interrupted: %v", importErr))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to record import result", "job_id", jobID, "error", err)
		job, _ = s.jobs.Get(jobID)
	}
	return job
}

func (s *ScrapingService) GetScrapingJobs() []models.ImportJob {
	return s.jobs.List()
}

// GetScrapingJob reports false for an unknown id.
func (s *ScrapingService) GetScrapingJob(id string) (models.ImportJob, bool) {
	return s.jobs.Get(id)
}

// IsUnknownSource reports whether err came from asking for a source that is
// not registered.
func IsUnknownSource(err error) bool {
	return errors.Is(err, sources.ErrUnknownSource)
}
