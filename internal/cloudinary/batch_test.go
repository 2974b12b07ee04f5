package cloudinary_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"property-import-backend/internal/cloudinary"
)

func TestUploadMultipleFiles_PreservesOrderAndReportsOverallProgress(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	files := []cloudinary.File{jpeg("one.jpg", 100), jpeg("two.jpg", 200), jpeg("three.jpg", 300)}

	var overall []int
	var fileIndexes []int
	results, err := client.UploadMultipleFiles(context.Background(), files, cloudinary.UploadOptions{},
		func(index int, p cloudinary.Progress) {
			if len(fileIndexes) == 0 || fileIndexes[len(fileIndexes)-1] != index {
				fileIndexes = append(fileIndexes, index)
			}
		},
		func(percent int) { overall = append(overall, percent) },
	)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "one", results[0].PublicID)
	assert.Equal(t, "two", results[1].PublicID)
	assert.Equal(t, "three", results[2].PublicID)
	assert.Equal(t, int64(300), results[2].Bytes)

	assert.Equal(t, []int{33, 66, 100}, overall)
	assert.Equal(t, []int{0, 1, 2}, fileIndexes)
}

func TestUploadMultipleFiles_FailFast(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, func(call uploadCall) (int, string) {
		if call.Name == "two.jpg" {
			return http.StatusBadRequest, `{"error":{"message":"Invalid image file"}}`
		}
		return 0, ""
	})

	files := []cloudinary.File{jpeg("one.jpg", 10), jpeg("two.jpg", 10), jpeg("three.jpg", 10)}

	var overall []int
	results, err := client.UploadMultipleFiles(context.Background(), files, cloudinary.UploadOptions{}, nil,
		func(percent int) { overall = append(overall, percent) })

	assert.Nil(t, results)
	var hostErr *cloudinary.HostError
	require.ErrorAs(t, err, &hostErr)
	assert.Equal(t, "Invalid image file", hostErr.Message)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "two.jpg", calls[1].Name)
	assert.Equal(t, []int{33}, overall)
}

func TestUploadMultipleFiles_ValidationErrorStopsBatch(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	bad := cloudinary.File{Name: "bad.txt", ContentType: "text/plain", Size: 1, Reader: strings.NewReader("x")}
	results, err := client.UploadMultipleFiles(context.Background(), []cloudinary.File{bad, jpeg("ok.jpg", 10)}, cloudinary.UploadOptions{}, nil, nil)

	assert.Nil(t, results)
	var vErr *cloudinary.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, rec.Calls())
}

func TestUploadMultipleFiles_Empty(t *testing.T) {
	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p"})

	called := false
	results, err := client.UploadMultipleFiles(context.Background(), nil, cloudinary.UploadOptions{}, nil,
		func(int) { called = true })

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestGetImageSizes(t *testing.T) {
	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p"})

	sizes := client.GetImageSizes("abc123")

	assert.Contains(t, sizes.Thumbnail, "w_150,h_150")
	assert.Contains(t, sizes.Small, "w_300,h_200")
	assert.Contains(t, sizes.Medium, "w_600,h_400")
	assert.Contains(t, sizes.Large, "w_1200,h_800")
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/abc123", sizes.Original)

	for _, u := range []string{sizes.Thumbnail, sizes.Small, sizes.Medium, sizes.Large} {
		assert.True(t, strings.HasSuffix(u, "/abc123"))
	}
}

func TestDerivedURLs(t *testing.T) {
	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p"})

	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/q_auto,f_auto/properties/abc", client.GetOptimizedImageURL("properties/abc"))
	assert.Equal(t, "https://res.cloudinary.com/demo/raw/upload/documents/id", client.GetDocumentURL("documents/id"))
}

func TestUploadIDDocument_PDFUsesRaw(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	pdf := cloudinary.File{Name: "passport.pdf", ContentType: "application/pdf", Size: 4, Reader: strings.NewReader("%PDF")}
	_, err := client.UploadIDDocument(context.Background(), pdf, "user-1", nil)
	require.NoError(t, err)

	_, err = client.UploadIDDocument(context.Background(), jpeg("licence.jpg", 10), "user-1", nil)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/v1_1/demo/raw/upload", calls[0].Path)
	assert.Equal(t, "documents", calls[0].Fields["folder"])
	assert.Equal(t, "/v1_1/demo/image/upload", calls[1].Path)
}

func TestUploadProfileImage_TagsUserAndRole(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	_, err := client.UploadProfileImage(context.Background(), jpeg("me.jpg", 10), "user-42", "agent", nil)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "profiles", calls[0].Fields["folder"])
	assert.Equal(t, "profile,user-42,agent", calls[0].Fields["tags"])
}

func TestUploadPropertyImagesAndArtisanWork_Folders(t *testing.T) {
	rec := &hostRecorder{}
	_, client := newHostServer(t, rec, nil)

	_, err := client.UploadPropertyImages(context.Background(), []cloudinary.File{jpeg("a.jpg", 10)}, nil)
	require.NoError(t, err)
	_, err = client.UploadArtisanWork(context.Background(), []cloudinary.File{jpeg("b.jpg", 10)}, "artisan-7", nil)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "properties", calls[0].Fields["folder"])
	assert.Equal(t, "property", calls[0].Fields["tags"])
	assert.Equal(t, "artisans", calls[1].Fields["folder"])
	assert.Equal(t, "artisan-work,artisan-7", calls[1].Fields["tags"])
}

func TestFolderPrefix(t *testing.T) {
	rec := &hostRecorder{}
	srv, _ := newHostServer(t, rec, nil)
	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p", APIBaseURL: srv.URL, FolderPrefix: "/staging/"})

	_, err := client.UploadFile(context.Background(), jpeg("a.jpg", 10), cloudinary.UploadOptions{Folder: cloudinary.FolderProperties})
	require.NoError(t, err)
	assert.Equal(t, "staging/properties", rec.Calls()[0].Fields["folder"])
}

func TestDeleteFile_RequiresCredentials(t *testing.T) {
	client := cloudinary.NewClient(cloudinary.Config{CloudName: "demo", UploadPreset: "p"})

	err := client.DeleteFile(context.Background(), cloudinary.ResourceImage, "abc")
	assert.ErrorIs(t, err, cloudinary.ErrDeletionNotConfigured)
}

func TestDeleteFile_SignsRequest(t *testing.T) {
	received := make(chan url.Values, 1)
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		path = r.URL.Path
		received <- r.PostForm
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client := cloudinary.NewClient(cloudinary.Config{
		CloudName: "demo", UploadPreset: "p", APIKey: "key", APISecret: "secret", APIBaseURL: srv.URL,
	})

	require.NoError(t, client.DeleteFile(context.Background(), cloudinary.ResourceImage, "properties/abc"))

	form := <-received
	assert.Equal(t, "/v1_1/demo/image/destroy", path)
	assert.Equal(t, "key", form.Get("api_key"))
	assert.Equal(t, "properties/abc", form.Get("public_id"))

	sum := sha1.Sum([]byte("public_id=properties/abc&timestamp=" + form.Get("timestamp") + "secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), form.Get("signature"))
}

func TestDeleteFile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"not found"}`))
	}))
	defer srv.Close()

	client := cloudinary.NewClient(cloudinary.Config{
		CloudName: "demo", UploadPreset: "p", APIKey: "key", APISecret: "secret", APIBaseURL: srv.URL,
	})

	err := client.DeleteFile(context.Background(), cloudinary.ResourceRaw, "missing")
	var hostErr *cloudinary.HostError
	require.ErrorAs(t, err, &hostErr)
}
