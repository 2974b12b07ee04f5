package models

import "property-import-backend/internal/cloudinary"

type HealthResponse struct {
	Status string `json:"status"`
}

type ScrapeResponse struct {
	Job      ImportJob        `json:"job"`
	Listings []ScrapedListing `json:"listings"`
}

type ImportPropertiesResponse struct {
	PropertyIDs []string `json:"property_ids"`
	Requested   int      `json:"requested"`
	Imported    int      `json:"imported"`
}

type RunImportResponse struct {
	Job         ImportJob `json:"job"`
	PropertyIDs []string  `json:"property_ids"`
}

type JobListResponse struct {
	Jobs []ImportJob `json:"jobs"`
}

type SourceListResponse struct {
	Sources []string `json:"sources"`
}

type PropertyListResponse struct {
	Properties []PropertyRecord `json:"properties"`
}

type MediaUploadResponse struct {
	Results []cloudinary.UploadResult `json:"results"`
}

type ImageSizesResponse struct {
	PublicID string                `json:"public_id"`
	Sizes    cloudinary.ImageSizes `json:"sizes"`
}

type DeleteMediaResponse struct {
	PublicID string `json:"public_id"`
	Deleted  bool   `json:"deleted"`
}
