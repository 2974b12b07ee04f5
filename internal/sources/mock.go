package sources

import (
	"context"
	"time"

	"property-import-backend/internal/models"
)

// MockSource serves a fixed set of listings. It backs the "testsource"
// name used for demos and pipeline checks.
type MockSource struct {
	name string
	now  func() time.Time
}

func NewMockSource(name string) *MockSource {
	if name == "" {
		name = "testsource"
	}
	return &MockSource{name: name, now: time.Now}
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) FetchListings(ctx context.Context) ([]models.ScrapedListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scrapedAt := m.now().UTC()
	listings := []models.ScrapedListing{
		{
			Title:       "Luxury 4 Bedroom Duplex in Lekki Phase 1",
			Price:       85000000,
			Location:    "Lekki Phase 1, Lagos",
			Coordinates: &models.Coordinates{Lat: 6.4478, Lng: 3.4723},
			Bedrooms:    intPtr(4),
			Bathrooms:   intPtr(5),
			Area:        "450 sqm",
			Description: "Fully detached duplex with BQ, fitted kitchen and swimming pool.",
			Images: []string{
				"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9",
				"https://images.unsplash.com/photo-1600585154340-be6161a56a0c",
			},
			SourceURL: "https://example.com/listings/lekki-duplex",
		},
		{
			Title:       "3 Bedroom Apartment in Maitama",
			Price:       120000000,
			Location:    "Maitama, Abuja",
			Coordinates: &models.Coordinates{Lat: 9.0882, Lng: 7.4934},
			Bedrooms:    intPtr(3),
			Bathrooms:   intPtr(3),
			Area:        "220 sqm",
			Description: "Serviced apartment with 24-hour power and security.",
			Images: []string{
				"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267",
			},
			SourceURL: "https://example.com/listings/maitama-apartment",
		},
		{
			Title:       "Mini Flat in Yaba",
			Price:       1500000,
			Location:    "Yaba, Lagos",
			Bedrooms:    intPtr(1),
			Bathrooms:   intPtr(1),
			Area:        "60 sqm",
			Description: "Self-contained mini flat close to the university.",
			Images: []string{
				"https://images.unsplash.com/photo-1502672260266-1c1ef2d93688",
				"https://images.unsplash.com/photo-1493809842364-78817add7ffb",
				"https://images.unsplash.com/photo-1484154218962-a197022b5858",
			},
			SourceURL: "https://example.com/listings/yaba-mini-flat",
		},
		{
			Title:       "Plot of Land in Gwarinpa",
			Price:       25000000,
			Location:    "Gwarinpa, Abuja",
			Coordinates: &models.Coordinates{Lat: 9.1108, Lng: 7.4165},
			Area:        "600 sqm",
			Description: "Dry land with C of O in a developed estate.",
			Images:      []string{},
			SourceURL:   "https://example.com/listings/gwarinpa-land",
		},
		{
			Title:       "5 Bedroom Detached House in Ikoyi",
			Price:       450000000,
			Location:    "Ikoyi, Lagos",
			Coordinates: &models.Coordinates{Lat: 6.4541, Lng: 3.4347},
			Bedrooms:    intPtr(5),
			Bathrooms:   intPtr(6),
			Area:        "800 sqm",
			Description: "Waterfront mansion with cinema, gym and staff quarters.",
			Images: []string{
				"https://images.unsplash.com/photo-1613490493576-7fde63acd811",
				"https://images.unsplash.com/photo-1613977257363-707ba9348227",
			},
			SourceURL: "https://example.com/listings/ikoyi-mansion",
		},
	}

	for i := range listings {
		listings[i].Currency = "NGN"
		listings[i].Source = m.name
		listings[i].ScrapedAt = scrapedAt
		listings[i].VerificationStatus = models.VerificationUnverified
	}
	return listings, nil
}

func intPtr(v int) *int { return &v }
