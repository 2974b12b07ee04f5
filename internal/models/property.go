package models

import (
	"errors"
	"time"
)

const AvailabilityAvailable = "available"

// ErrPropertyNotFound is returned by every PropertyRecord store for a
// missing id.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyRecord is the persisted shape of an imported listing.
type PropertyRecord struct {
	ID                 string             `json:"id,omitempty"`
	Title              string             `json:"title"`
	Price              float64            `json:"price"`
	Currency           string             `json:"currency"`
	Location           string             `json:"location"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	Bedrooms           *int               `json:"bedrooms,omitempty"`
	Bathrooms          *int               `json:"bathrooms,omitempty"`
	Area               string             `json:"area,omitempty"`
	Description        string             `json:"description,omitempty"`
	Images             []string           `json:"images"`
	Source             string             `json:"source"`
	SourceURL          string             `json:"source_url"`
	ScrapedAt          time.Time          `json:"scraped_at"`
	Availability       string             `json:"availability"`
	IsVerified         bool               `json:"is_verified"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewPropertyRecord maps a listing to a record with the import defaults.
func NewPropertyRecord(l ScrapedListing, now time.Time) *PropertyRecord {
	rec := &PropertyRecord{
		Title:              l.Title,
		Price:              l.Price,
		Currency:           l.Currency,
		Location:           l.Location,
		Bedrooms:           l.Bedrooms,
		Bathrooms:          l.Bathrooms,
		Area:               l.Area,
		Description:        l.Description,
		Images:             append([]string(nil), l.Images...),
		Source:             l.Source,
		SourceURL:          l.SourceURL,
		ScrapedAt:          l.ScrapedAt,
		Availability:       AvailabilityAvailable,
		IsVerified:         false,
		VerificationStatus: VerificationUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if rec.Images == nil {
		rec.Images = []string{}
	}
	if l.Coordinates != nil {
		lat, lng := l.Coordinates.Lat, l.Coordinates.Lng
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	return rec
}
