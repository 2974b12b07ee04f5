package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIBaseURL      = "https://api.cloudinary.com"
	DefaultDeliveryBaseURL = "https://res.cloudinary.com"
)

type Config struct {
	CloudName    string
	UploadPreset string
	// APIKey and APISecret are only needed for signed operations (DeleteFile).
	APIKey    string
	APISecret string

	APIBaseURL      string
	DeliveryBaseURL string
	FolderPrefix    string
	Timeout         time.Duration
}

type Client struct {
	cloudName       string
	uploadPreset    string
	apiKey          string
	apiSecret       string
	apiBaseURL      string
	deliveryBaseURL string
	folderPrefix    string
	httpClient      *http.Client
	now             func() time.Time
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}
	deliveryBase := cfg.DeliveryBaseURL
	if deliveryBase == "" {
		deliveryBase = DefaultDeliveryBaseURL
	}

	return &Client{
		cloudName:       cfg.CloudName,
		uploadPreset:    cfg.UploadPreset,
		apiKey:          cfg.APIKey,
		apiSecret:       cfg.APISecret,
		apiBaseURL:      strings.TrimSuffix(apiBase, "/"),
		deliveryBaseURL: strings.TrimSuffix(deliveryBase, "/"),
		folderPrefix:    strings.Trim(cfg.FolderPrefix, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

type hostErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadFile validates and uploads a single file. It never retries.
func (c *Client) UploadFile(ctx context.Context, file File, opts UploadOptions) (*UploadResult, error) {
	if err := Validate(file, opts); err != nil {
		return nil, err
	}
	if file.Reader == nil {
		return nil, &ValidationError{Field: "file", Message: "no content"}
	}

	body, contentType, err := c.buildUploadBody(file, opts)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1_1/%s/%s/upload", c.apiBaseURL, c.cloudName, opts.resourceType())

	var reader io.Reader = bytes.NewReader(body)
	if opts.OnProgress != nil {
		reader = &progressReader{r: reader, total: int64(len(body)), fn: opts.OnProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "upload file", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read upload response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var hostErr hostErrorBody
		_ = json.Unmarshal(respBody, &hostErr)
		return nil, newHostError(resp.StatusCode, hostErr.Error.Message)
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, newHostError(resp.StatusCode, fmt.Sprintf("failed to decode upload response: %v", err))
	}
	if result.PublicID == "" || result.SecureURL == "" {
		return nil, newHostError(resp.StatusCode, "upload response is missing public_id or secure_url")
	}

	return &result, nil
}

func (c *Client) buildUploadBody(file File, opts UploadOptions) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := file.Name
	if name == "" {
		name = "upload"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	header.Set("Content-Type", file.ContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}

	// The declared size was validated; the actual stream is held to the same ceiling.
	limit := MaxSize(opts.resourceType())
	n, err := io.Copy(part, io.LimitReader(file.Reader, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if n > limit {
		return nil, "", &ValidationError{Field: "file", Message: fmt.Sprintf("file content exceeds the %dMB limit", limit/(1024*1024))}
	}

	fields := [][2]string{
		{"upload_preset", c.uploadPreset},
		{"cloud_name", c.cloudName},
		{"timestamp", strconv.FormatInt(c.now().Unix(), 10)},
	}
	if folder := c.folderPath(opts.Folder); folder != "" {
		fields = append(fields, [2]string{"folder", folder})
	}
	if len(opts.Tags) > 0 {
		fields = append(fields, [2]string{"tags", strings.Join(opts.Tags, ",")})
	}
	if opts.Transformation != "" {
		fields = append(fields, [2]string{"transformation", opts.Transformation})
	}
	if opts.Quality != "" {
		fields = append(fields, [2]string{"quality", opts.Quality})
	}
	if opts.Format != "" {
		fields = append(fields, [2]string{"format", string(opts.Format)})
	}
	if len(opts.Eager) > 0 {
		fields = append(fields, [2]string{"eager", strings.Join(opts.Eager, "|")})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *Client) folderPath(folder Folder) string {
	switch {
	case folder == FolderNone:
		return c.folderPrefix
	case c.folderPrefix == "":
		return string(folder)
	default:
		return c.folderPrefix + "/" + string(folder)
	}
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	fn     func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		percent := 100
		if p.total > 0 {
			percent = int(p.loaded * 100 / p.total)
		}
		p.fn(Progress{Percent: percent, Loaded: p.loaded, Total: p.total})
	}
	return n, err
}
