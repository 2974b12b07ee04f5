package cloudinary

import (
	"io"
	"strings"
)

// Folder is a logical destination grouping on the media host.
type Folder string

const (
	FolderNone       Folder = ""
	FolderProperties Folder = "properties"
	FolderProfiles   Folder = "profiles"
	FolderDocuments  Folder = "documents"
	FolderArtisans   Folder = "artisans"
)

func (f Folder) Valid() bool {
	switch f {
	case FolderNone, FolderProperties, FolderProfiles, FolderDocuments, FolderArtisans:
		return true
	}
	return false
}

// ResourceType selects the host's upload pipeline.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceRaw   ResourceType = "raw"
	ResourceVideo ResourceType = "video"
	ResourceAuto  ResourceType = "auto"
)

func (r ResourceType) Valid() bool {
	switch r {
	case ResourceImage, ResourceRaw, ResourceVideo, ResourceAuto:
		return true
	}
	return false
}

type Format string

const (
	FormatAuto Format = "auto"
	FormatWebP Format = "webp"
	FormatJPG  Format = "jpg"
	FormatPNG  Format = "png"
)

func (f Format) Valid() bool {
	switch f {
	case "", FormatAuto, FormatWebP, FormatJPG, FormatPNG:
		return true
	}
	return false
}

// File is a binary payload with its declared metadata. Size and
// ContentType are what validation checks; Reader supplies the bytes.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// IsPDF reports whether the declared content type is a PDF.
func (f File) IsPDF() bool {
	return strings.EqualFold(f.ContentType, "application/pdf")
}

// Progress is a byte-level upload progress event.
type Progress struct {
	Percent int   `json:"percent"`
	Loaded  int64 `json:"loaded"`
	Total   int64 `json:"total"`
}

// UploadOptions are the per-upload settings. The zero value uploads with
// resource type auto and no folder.
type UploadOptions struct {
	Folder         Folder
	ResourceType   ResourceType
	Transformation string
	Tags           []string
	// Quality is "auto" or an integer 1-100 rendered as a string.
	Quality string
	Format  Format
	Eager   []string

	OnProgress func(Progress)
}

func (o UploadOptions) resourceType() ResourceType {
	if o.ResourceType == "" {
		return ResourceAuto
	}
	return o.ResourceType
}

// UploadResult is the normalized host response for a stored asset.
type UploadResult struct {
	PublicID         string `json:"public_id"`
	SecureURL        string `json:"secure_url"`
	URL              string `json:"url"`
	Bytes            int64  `json:"bytes"`
	ResourceType     string `json:"resource_type"`
	Format           string `json:"format"`
	Width            int    `json:"width,omitempty"`
	Height           int    `json:"height,omitempty"`
	Folder           string `json:"folder,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

// ImageSizes holds the standard display variants of one image.
type ImageSizes struct {
	Thumbnail string `json:"thumbnail"`
	Small     string `json:"small"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
	Original  string `json:"original"`
}
