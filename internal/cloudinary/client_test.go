package cloudinary_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"property-import-backend/internal/cloudinary"
)

type uploadCall struct {
	Path   string
	Fields map[string]string
	Size   int
	Name   string
}

type hostRecorder struct {
	mu    sync.Mutex
	calls []uploadCall
}

func (h *hostRecorder) add(c uploadCall) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
}

func (h *hostRecorder) Calls() []uploadCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]uploadCall(nil), h.calls...)
}

// newHostServer fakes the upload endpoint. It echoes the uploaded size back
// in "bytes" and derives the public id from the filename.
func newHostServer(t *testing.T, rec *hostRecorder, fail func(call uploadCall) (int, string)) (*httptest.Server, *cloudinary.Client) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)

		call := uploadCall{Path: r.URL.Path, Fields: map[string]string{}, Size: len(data), Name: hdr.Filename}
		for k, v := range r.MultipartForm.Value {
			call.Fields[k] = v[0]
		}
		if rec != nil {
			rec.add(call)
		}

		if fail != nil {
			if status, body := fail(call); status != 0 {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
				return
			}
		}

		id := strings.TrimSuffix(hdr.Filename, ".jpg")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"public_id":         id,
			"secure_url":        "https://res.cloudinary.com/demo/image/upload/" + id + ".jpg",
			"url":               "http://res.cloudinary.com/demo/image/upload/" + id + ".jpg",
			"bytes":             len(data),
			"resource_type":     "image",
			"format":            "jpg",
			"width":             800,
			"height":            600,
			"folder":            call.Fields["folder"],
			"original_filename": id,
		})
	}))
	t.Cleanup(srv.Close)

	client := cloudinary.NewClient(cloudinary.Config{
		CloudName:    "demo",
		UploadPreset: "unsigned-preset",
		APIBaseURL:   srv.URL,
	})
	return srv, client
}

func jpeg(name string, size int) cloudinary.File {
	return cloudinary.File{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(size),
		Reader:      bytes.NewReader(bytes.Repeat([]byte{0xff}, size)),
	}
}

func TestUploadFile_ValidationFailsWithoutNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p", APIBaseURL: srv.URL})

	tests := []struct {
		name string
		file cloudinary.File
		opts cloudinary.UploadOptions
	}{
		{
			name: "image over 10MB",
			file: cloudinary.File{Name: "big.jpg", ContentType: "image/jpeg", Size: cloudinary.MaxImageSize + 1, Reader: strings.NewReader("x")},
			opts: cloudinary.UploadOptions{ResourceType: cloudinary.ResourceImage},
		},
		{
			name: "auto over 10MB",
			file: cloudinary.File{Name: "big.png", ContentType: "image/png", Size: cloudinary.MaxImageSize + 1, Reader: strings.NewReader("x")},
		},
		{
			name: "pdf as image",
			file: cloudinary.File{Name: "doc.pdf", ContentType: "application/pdf", Size: 100, Reader: strings.NewReader("x")},
			opts: cloudinary.UploadOptions{ResourceType: cloudinary.ResourceImage},
		},
		{
			name: "text as raw",
			file: cloudinary.File{Name: "notes.txt", ContentType: "text/plain", Size: 100, Reader: strings.NewReader("x")},
			opts: cloudinary.UploadOptions{ResourceType: cloudinary.ResourceRaw},
		},
		{
			name: "bad quality",
			file: jpeg("a.jpg", 10),
			opts: cloudinary.UploadOptions{Quality: "101"},
		},
		{
			name: "unknown folder",
			file: jpeg("a.jpg", 10),
			opts: cloudinary.UploadOptions{Folder: "secret"},
		},
		{
			name: "unknown format",
			file: jpeg("a.jpg", 10),
			opts: cloudinary.UploadOptions{Format: "tiff"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.UploadFile(context.Background(), tt.file, tt.opts)
			var vErr *cloudinary.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Error())
		})
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestValidate_VideoCeilingAndTypes(t *testing.T) {
	video := cloudinary.UploadOptions{ResourceType: cloudinary.ResourceVideo}

	assert.NoError(t, cloudinary.Validate(cloudinary.File{ContentType: "video/mp4", Size: 50 * 1024 * 1024}, video))
	assert.Error(t, cloudinary.Validate(cloudinary.File{ContentType: "video/mp4", Size: cloudinary.MaxVideoSize + 1}, video))
	assert.Error(t, cloudinary.Validate(cloudinary.File{ContentType: "image/jpeg", Size: 10}, video))
}

func TestValidate_RawAcceptsPDFAndImages(t *testing.T) {
	raw := cloudinary.UploadOptions{ResourceType: cloudinary.ResourceRaw}

	assert.NoError(t, cloudinary.Validate(cloudinary.File{ContentType: "application/pdf", Size: 10}, raw))
	assert.NoError(t, cloudinary.Validate(cloudinary.File{ContentType: "image/webp", Size: 10}, raw))
	assert.NoError(t, cloudinary.Validate(cloudinary.File{ContentType: "IMAGE/PNG; charset=binary", Size: 10}, raw))
}

func TestAllowedTypes(t *testing.T) {
	auto := cloudinary.AllowedTypes(cloudinary.ResourceAuto)
	for _, rt := range []cloudinary.ResourceType{cloudinary.ResourceImage, cloudinary.ResourceRaw, cloudinary.ResourceVideo} {
		assert.Subset(t, auto, cloudinary.AllowedTypes(rt), rt)
	}
	assert.NotContains(t, cloudinary.AllowedTypes(cloudinary.ResourceImage), "application/pdf")

	// callers get a copy
	images := cloudinary.AllowedTypes(cloudinary.ResourceImage)
	images[0] = "text/plain"
	assert.NotContains(t, cloudinary.AllowedTypes(cloudinary.ResourceImage), "text/plain")

	err := cloudinary.Validate(cloudinary.File{ContentType: "text/plain", Size: 10}, cloudinary.UploadOptions{ResourceType: cloudinary.ResourceVideo})
	var vErr *cloudinary.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, strings.Join(cloudinary.AllowedTypes(cloudinary.ResourceVideo), ", "))
}

func TestUploadFile_Success(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	result, err := client.UploadFile(context.Background(), jpeg("house.jpg", 2048), cloudinary.UploadOptions{
		Folder:         cloudinary.FolderProperties,
		ResourceType:   cloudinary.ResourceImage,
		Tags:           []string{"property", "lagos"},
		Transformation: "c_limit,w_2000",
		Quality:        "80",
		Format:         cloudinary.FormatWebP,
		Eager:          []string{"w_300,h_200", "w_600,h_400"},
	})
	require.NoError(t, err)

	assert.Equal(t, "house", result.PublicID)
	assert.NotEmpty(t, result.SecureURL)
	assert.Equal(t, int64(2048), result.Bytes)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, "properties", result.Folder)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "/v1_1/demo/image/upload", call.Path)
	assert.Equal(t, 2048, call.Size)
	assert.Equal(t, "unsigned-preset", call.Fields["upload_preset"])
	assert.Equal(t, "demo", call.Fields["cloud_name"])
	assert.NotEmpty(t, call.Fields["timestamp"])
	assert.Equal(t, "property,lagos", call.Fields["tags"])
	assert.Equal(t, "c_limit,w_2000", call.Fields["transformation"])
	assert.Equal(t, "80", call.Fields["quality"])
	assert.Equal(t, "webp", call.Fields["format"])
	assert.Equal(t, "w_300,h_200|w_600,h_400", call.Fields["eager"])
}

func TestUploadFile_DefaultsToAutoResourceType(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 10), cloudinary.UploadOptions{})
	require.NoError(t, err)
	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1_1/demo/auto/upload", calls[0].Path)
	_, hasFolder := calls[0].Fields["folder"]
	assert.False(t, hasFolder)
}

func TestUploadFile_HostErrorSurfacesHostMessage(t *testing.T) {
	_, client := newHostServer(t, nil, func(uploadCall) (int, string) {
		return http.StatusBadRequest, `{"error":{"message":"Upload preset not found"}}`
	})

	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 10), cloudinary.UploadOptions{})
	var hostErr *cloudinary.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, http.StatusBadRequest, hostErr.StatusCode)
	assert.Equal(t, "Upload preset not found", hostErr.Error())
}

func TestUploadFile_HostErrorGenericMessage(t *testing.T) {
	_, client := newHostServer(t, nil, func(uploadCall) (int, string) {
		return http.StatusInternalServerError, "<html>oops</html>"
	})

	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 10), cloudinary.UploadOptions{})
	var hostErr *cloudinary.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "upload failed with status 500", hostErr.Error())
}

func TestUploadFile_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p", APIBaseURL: url})

	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 10), cloudinary.UploadOptions{})
	var tErr *cloudinary.TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "upload file", tErr.Op)
}

func TestUploadFile_ReportsProgress(t *testing.T) {
	_, client := newHostServer(t, nil, nil)

	var events []cloudinary.Progress
	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 64*1024), cloudinary.UploadOptions{
		OnProgress: func(p cloudinary.Progress) { events = append(events, p) },
	})
	require.NoError(t, err)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, last.Total, last.Loaded)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Loaded, events[i-1].Loaded)
	}
}

func TestUploadFile_StreamLargerThanCeilingIsRejected(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	file := cloudinary.File{
		Name:        "liar.jpg",
		ContentType: "image/jpeg",
		Size:        10,
		Reader:      bytes.NewReader(make([]byte, cloudinary.MaxImageSize+1)),
	}
	_, err := client.UploadFile(context.Background(), file, cloudinary.UploadOptions{})
	var vErr *cloudinary.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Empty(t, rec.Calls())
}
