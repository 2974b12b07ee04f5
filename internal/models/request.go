package models

type ScrapeRequest struct {
	Source string `json:"source" binding:"required" example:"testsource"`
}

type ImportPropertiesRequest struct {
	Listings []ScrapedListing `json:"listings" binding:"required"`
}

type RunImportRequest struct {
	Source string `json:"source" binding:"required" example:"testsource"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
