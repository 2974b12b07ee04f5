package models

import "time"

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScrapedListing is one property as captured from an external source.
// Images keeps source order; an entry that could not be re-hosted keeps
// its original URL.
type ScrapedListing struct {
	Title              string             `json:"title"`
	Price              float64            `json:"price"`
	Currency           string             `json:"currency"`
	Location           string             `json:"location"`
	Coordinates        *Coordinates       `json:"coordinates,omitempty"`
	Bedrooms           *int               `json:"bedrooms,omitempty"`
	Bathrooms          *int               `json:"bathrooms,omitempty"`
	Area               string             `json:"area,omitempty"`
	Description        string             `json:"description,omitempty"`
	Images             []string           `json:"images"`
	Source             string             `json:"source"`
	SourceURL          string             `json:"source_url"`
	ScrapedAt          time.Time          `json:"scraped_at"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

// Clone returns a copy that shares no slices or pointers with l.
func (l ScrapedListing) Clone() ScrapedListing {
	c := l
	c.Images = append([]string(nil), l.Images...)
	if l.Coordinates != nil {
		coords := *l.Coordinates
		c.Coordinates = &coords
	}
	if l.Bedrooms != nil {
		v := *l.Bedrooms
		c.Bedrooms = &v
	}
	if l.Bathrooms != nil {
		v := *l.Bathrooms
		c.Bathrooms = &v
	}
	return c
}
