package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"property-import-backend/internal/models"
)

const propertyColumns = `id, title, price, currency, location, latitude, longitude, bedrooms, bathrooms,
	area, description, images, source, source_url, scraped_at, availability, is_verified,
	verification_status, created_at, updated_at`

// PropertyStore persists imported listings through database/sql.
type PropertyStore struct {
	db      *sql.DB
	dialect Dialect
	newID   func() string
}

func NewPropertyStore(db *sql.DB, dialect Dialect) *PropertyStore {
	return &PropertyStore{
		db:      db,
		dialect: dialect,
		newID:   func() string { return uuid.New().String() },
	}
}

// CreateProperty inserts rec and returns its new id. rec.ID is set.
func (s *PropertyStore) CreateProperty(ctx context.Context, rec *models.PropertyRecord) (string, error) {
	if rec.Title == "" {
		return "", errors.New("failed to create property: title is required")
	}

	images, err := json.Marshal(nonNilImages(rec.Images))
	if err != nil {
		return "", fmt.Errorf("failed to encode images: %w", err)
	}

	id := s.newID()
	var scrapedAt any
	if !rec.ScrapedAt.IsZero() {
		scrapedAt = rec.ScrapedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO properties (`+propertyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`),
		id, rec.Title, rec.Price, rec.Currency, rec.Location, nullFloat(rec.Latitude), nullFloat(rec.Longitude),
		nullInt(rec.Bedrooms), nullInt(rec.Bathrooms), rec.Area, rec.Description, string(images), rec.Source,
		rec.SourceURL, scrapedAt, rec.Availability, rec.IsVerified, string(rec.VerificationStatus),
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create property: %w", err)
	}

	rec.ID = id
	return id, nil
}

func (s *PropertyStore) GetProperty(ctx context.Context, id string) (*models.PropertyRecord, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+propertyColumns+` FROM properties WHERE id = $1`), id)
	rec, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return rec, nil
}

// ListProperties returns the newest properties first, optionally filtered
// by source. A limit of zero or less means 100.
func (s *PropertyStore) ListProperties(ctx context.Context, source string, limit int) ([]models.PropertyRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if source == "" {
		rows, err = s.db.QueryContext(ctx, s.dialect.Rebind(
			`SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, id LIMIT $1`), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, s.dialect.Rebind(
			`SELECT `+propertyColumns+` FROM properties WHERE source = $1 ORDER BY created_at DESC, id LIMIT $2`), source, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	out := []models.PropertyRecord{}
	for rows.Next() {
		rec, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*models.PropertyRecord, error) {
	var (
		rec                 models.PropertyRecord
		lat, lng            sql.NullFloat64
		beds, baths         sql.NullInt64
		images              string
		scrapedAt           sql.NullTime
		verificationStatus  string
		createdAt, updateAt time.Time
	)
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Price, &rec.Currency, &rec.Location, &lat, &lng, &beds, &baths,
		&rec.Area, &rec.Description, &images, &rec.Source, &rec.SourceURL, &scrapedAt,
		&rec.Availability, &rec.IsVerified, &verificationStatus, &createdAt, &updateAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid {
		rec.Latitude = &lat.Float64
	}
	if lng.Valid {
		rec.Longitude = &lng.Float64
	}
	if beds.Valid {
		n := int(beds.Int64)
		rec.Bedrooms = &n
	}
	if baths.Valid {
		n := int(baths.Int64)
		rec.Bathrooms = &n
	}
	if scrapedAt.Valid {
		rec.ScrapedAt = scrapedAt.Time.UTC()
	}
	if err := json.Unmarshal([]byte(images), &rec.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	rec.Images = nonNilImages(rec.Images)
	rec.VerificationStatus = models.VerificationStatus(verificationStatus)
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updateAt.UTC()
	return &rec, nil
}

func nonNilImages(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
