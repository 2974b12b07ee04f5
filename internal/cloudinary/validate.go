package cloudinary

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	MaxImageSize int64 = 10 * 1024 * 1024
	MaxVideoSize int64 = 100 * 1024 * 1024
)

var imageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

var videoTypes = []string{"video/mp4", "video/webm", "video/quicktime"}

var allowedTypes = map[ResourceType][]string{
	ResourceImage: imageTypes,
	ResourceRaw:   append([]string{"application/pdf"}, imageTypes...),
	ResourceVideo: videoTypes,
	ResourceAuto:  append(append([]string{"application/pdf"}, imageTypes...), videoTypes...),
}

// MaxSize returns the upload size ceiling for a resource type.
func MaxSize(rt ResourceType) int64 {
	if rt == ResourceVideo {
		return MaxVideoSize
	}
	return MaxImageSize
}

// AllowedTypes returns the MIME allow-list for a resource type.
func AllowedTypes(rt ResourceType) []string {
	return append([]string(nil), allowedTypes[rt]...)
}

// Validate checks a file and its options without touching the network.
func Validate(file File, opts UploadOptions) error {
	if err := validateOptions(opts); err != nil {
		return err
	}

	rt := opts.resourceType()
	if file.Size < 0 {
		return &ValidationError{Field: "file", Message: "size is negative"}
	}
	if limit := MaxSize(rt); file.Size > limit {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file size %d bytes exceeds the %dMB limit for %s uploads", file.Size, limit/(1024*1024), rt),
		}
	}

	allowed := AllowedTypes(rt)
	if slices.Contains(allowed, normalizeContentType(file.ContentType)) {
		return nil
	}
	return &ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("file type %q is not allowed for %s uploads (allowed: %s)", file.ContentType, rt, strings.Join(allowed, ", ")),
	}
}

func validateOptions(opts UploadOptions) error {
	if !opts.Folder.Valid() {
		return &ValidationError{Field: "folder", Message: fmt.Sprintf("unknown folder %q", opts.Folder)}
	}
	if !opts.resourceType().Valid() {
		return &ValidationError{Field: "resource_type", Message: fmt.Sprintf("unknown resource type %q", opts.ResourceType)}
	}
	if !opts.Format.Valid() {
		return &ValidationError{Field: "format", Message: fmt.Sprintf("unknown format %q", opts.Format)}
	}
	if opts.Quality != "" && opts.Quality != "auto" {
		q, err := strconv.Atoi(opts.Quality)
		if err != nil || q < 1 || q > 100 {
			return &ValidationError{Field: "quality", Message: "must be \"auto\" or an integer between 1 and 100"}
		}
	}
	return nil
}

// normalizeContentType strips parameters such as "; charset=binary".
func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
