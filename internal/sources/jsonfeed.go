package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"property-import-backend/internal/models"
)

const maxFeedBytes = 20 * 1024 * 1024

// JSONFeedSource reads listings from an HTTP endpoint returning JSON.
type JSONFeedSource struct {
	cfg        SourceConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewJSONFeedSource(cfg SourceConfig, httpClient *http.Client) *JSONFeedSource {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &JSONFeedSource{cfg: cfg, httpClient: httpClient, now: time.Now}
}

func (s *JSONFeedSource) Name() string { return s.cfg.Name }

func (s *JSONFeedSource) FetchListings(ctx context.Context) ([]models.ScrapedListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch feed: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	items, ok := lookup(root, s.cfg.ItemsPath).([]any)
	if !ok {
		return nil, fmt.Errorf("feed has no list at %q", s.cfg.ItemsPath)
	}

	scrapedAt := s.now().UTC()
	listings := make([]models.ScrapedListing, 0, len(items))
	for _, item := range items {
		listing, ok := s.toListing(item)
		if !ok {
			continue
		}
		listing.ScrapedAt = scrapedAt
		listings = append(listings, listing)
	}
	return listings, nil
}

func (s *JSONFeedSource) toListing(item any) (models.ScrapedListing, bool) {
	f := s.cfg.Fields
	get := func(path, fallback string) any {
		if path == "" {
			path = fallback
		}
		return lookup(item, path)
	}

	title := asString(get(f.Title, "title"))
	if title == "" {
		return models.ScrapedListing{}, false
	}

	currency := asString(get(f.Currency, "currency"))
	if currency == "" {
		currency = s.cfg.Currency
	}

	listing := models.ScrapedListing{
		Title:              title,
		Price:              asPrice(get(f.Price, "price")),
		Currency:           currency,
		Location:           asString(get(f.Location, "location")),
		Bedrooms:           asCount(get(f.Bedrooms, "bedrooms")),
		Bathrooms:          asCount(get(f.Bathrooms, "bathrooms")),
		Area:               asString(get(f.Area, "area")),
		Description:        asString(get(f.Description, "description")),
		Images:             asStringSlice(get(f.Images, "images")),
		Source:             s.cfg.Name,
		SourceURL:          asString(get(f.URL, "url")),
		VerificationStatus: models.VerificationUnverified,
	}

	lat, latOK := asFloat(get(f.Latitude, "latitude"))
	lng, lngOK := asFloat(get(f.Longitude, "longitude"))
	if latOK && lngOK {
		listing.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
	}
	return listing, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
