package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	storage "github.com/supabase-community/storage-go"
	"property-import-backend/internal/models"
)

// SnapshotArchive stores the listings of completed scrape jobs as JSON
// objects in a storage bucket, under scrapes/{source}/{job_id}.json.
type SnapshotArchive struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

type snapshot struct {
	Job      models.ImportJob        `json:"job"`
	Listings []models.ScrapedListing `json:"listings"`
}

func NewSnapshotArchive(supabaseURL, serviceRoleKey, bucket string) *SnapshotArchive {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SnapshotArchive{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

func SnapshotPath(job models.ImportJob) string {
	return path.Join("scrapes", job.Source, job.ID+".json")
}

func (a *SnapshotArchive) SaveSnapshot(ctx context.Context, job models.ImportJob, listings []models.ScrapedListing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if listings == nil {
		listings = []models.ScrapedListing{}
	}

	data, err := json.Marshal(snapshot{Job: job, Listings: listings})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	contentType := "application/json"
	upsert := true
	_, err = a.client.UploadFile(a.bucket, SnapshotPath(job), bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}

func (a *SnapshotArchive) LoadSnapshot(ctx context.Context, job models.ImportJob) ([]models.ScrapedListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := a.client.DownloadFile(a.bucket, SnapshotPath(job))
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Job.ID != job.ID {
		return nil, fmt.Errorf("no snapshot stored for job %s", job.ID)
	}
	if snap.Listings == nil {
		snap.Listings = []models.ScrapedListing{}
	}
	return snap.Listings, nil
}

// DeleteSnapshot removes an archived snapshot.
func (a *SnapshotArchive) DeleteSnapshot(job models.ImportJob) error {
	_, err := a.client.RemoveFile(a.bucket, []string{SnapshotPath(job)})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the object names archived for source.
func (a *SnapshotArchive) ListSnapshots(source string) ([]string, error) {
	files, err := a.client.ListFiles(a.bucket, path.Join("scrapes", source), storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names, nil
}

// PruneSnapshots deletes every snapshot archived for source and returns how
// many were removed.
func (a *SnapshotArchive) PruneSnapshots(source string) (int, error) {
	names, err := a.ListSnapshots(source)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		id, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}
		if err := a.DeleteSnapshot(models.ImportJob{ID: id, Source: source}); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (a *SnapshotArchive) GetPublicURL(job models.ImportJob) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", a.baseURL, a.bucket, SnapshotPath(job))
}
