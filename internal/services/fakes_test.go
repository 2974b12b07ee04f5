package services_test

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"property-import-backend/internal/cloudinary"
	"property-import-backend/internal/models"
)

type failingSource struct {
	name string
	err  error
}

func (f failingSource) Name() string { return f.name }

func (f failingSource) FetchListings(ctx context.Context) ([]models.ScrapedListing, error) {
	return nil, f.err
}

type staticSource struct {
	name     string
	listings []models.ScrapedListing
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) FetchListings(ctx context.Context) ([]models.ScrapedListing, error) {
	return s.listings, nil
}

// fakeFetcher fails for any URL listed in failURLs.
type fakeFetcher struct {
	mu       sync.Mutex
	failURLs map[string]bool
	fetched  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, imageURL string) (cloudinary.File, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, imageURL)
	fail := f.failURLs[imageURL]
	f.mu.Unlock()

	if fail {
		return cloudinary.File{}, errors.New("failed to download image: status 404")
	}
	return cloudinary.File{
		Name:        path.Base(imageURL),
		ContentType: "image/jpeg",
		Size:        3,
		Reader:      strings.NewReader("jpg"),
	}, nil
}

type fakeUploader struct {
	mu      sync.Mutex
	failFor map[string]bool
	uploads []cloudinary.UploadOptions
}

func (u *fakeUploader) UploadFile(ctx context.Context, file cloudinary.File, opts cloudinary.UploadOptions) (*cloudinary.UploadResult, error) {
	u.mu.Lock()
	u.uploads = append(u.uploads, opts)
	fail := u.failFor[file.Name]
	u.mu.Unlock()

	if fail {
		return nil, &cloudinary.HostError{StatusCode: 400, Message: "Invalid image file"}
	}
	return &cloudinary.UploadResult{
		PublicID:  "properties/" + file.Name,
		SecureURL: rehosted(file.Name),
		Bytes:     file.Size,
	}, nil
}

func rehosted(name string) string {
	return "https://res.cloudinary.com/demo/image/upload/properties/" + name
}

type fakeStore struct {
	mu        sync.Mutex
	failTitle string
	records   []*models.PropertyRecord
}

func (s *fakeStore) CreateProperty(ctx context.Context, rec *models.PropertyRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Title == s.failTitle {
		return "", errors.New("duplicate key value violates unique constraint")
	}
	s.records = append(s.records, rec)
	return fmt.Sprintf("prop-%d", len(s.records)), nil
}

type memoryArchive struct {
	mu        sync.Mutex
	snapshots map[string][]models.ScrapedListing
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{snapshots: map[string][]models.ScrapedListing{}}
}

func (a *memoryArchive) SaveSnapshot(ctx context.Context, job models.ImportJob, listings []models.ScrapedListing) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[job.ID] = listings
	return nil
}

func (a *memoryArchive) LoadSnapshot(ctx context.Context, job models.ImportJob) ([]models.ScrapedListing, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.snapshots[job.ID]
	if !ok {
		return nil, errors.New("object not found")
	}
	return l, nil
}
