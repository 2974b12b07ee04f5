package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/time/rate"
	"property-import-backend/internal/cloudinary"
)

// ImageFetcher downloads a remote image into memory.
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURL string) (cloudinary.File, error)
}

// HTTPImageFetcher downloads images over HTTP with a shared rate limit so
// one import cannot hammer a listing site.
type HTTPImageFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int64
	userAgent  string
}

var _ ImageFetcher = (*HTTPImageFetcher)(nil)

// NewHTTPImageFetcher creates a fetcher. A ratePerSecond of zero or less
// disables rate limiting.
func NewHTTPImageFetcher(ratePerSecond float64, timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &HTTPImageFetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   cloudinary.MaxImageSize,
		userAgent:  "property-import-backend/1.0",
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return f
}

// SetHTTPClient replaces the underlying HTTP client.
func (f *HTTPImageFetcher) SetHTTPClient(hc *http.Client) {
	f.httpClient = hc
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, imageURL string) (cloudinary.File, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return cloudinary.File{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return cloudinary.File{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return cloudinary.File{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cloudinary.File{}, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return cloudinary.File{}, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return cloudinary.File{}, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return cloudinary.File{}, fmt.Errorf("image is empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = http.DetectContentType(data)
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mediaType
		}
	}

	return cloudinary.File{
		Name:        fileName(imageURL),
		ContentType: contentType,
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}, nil
}

func fileName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "image"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}
