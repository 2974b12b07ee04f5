package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"property-import-backend/internal/models"
)

// PropertyStore writes imported listings to a table through PostgREST.
type PropertyStore struct {
	client *Client
	table  string
	newID  func() string
}

func NewPropertyStore(client *Client, table string) *PropertyStore {
	if table == "" {
		table = "properties"
	}
	return &PropertyStore{
		client: client,
		table:  table,
		newID:  func() string { return uuid.New().String() },
	}
}

func (s *PropertyStore) CreateProperty(ctx context.Context, rec *models.PropertyRecord) (string, error) {
	if rec.Title == "" {
		return "", errors.New("failed to create property: title is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	row := *rec
	row.ID = s.newID()
	if row.Images == nil {
		row.Images = []string{}
	}

	var inserted []models.PropertyRecord
	_, err := s.client.Supabase.From(s.table).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&inserted)
	if err != nil {
		return "", fmt.Errorf("failed to create property: %w", err)
	}

	id := row.ID
	if len(inserted) > 0 && inserted[0].ID != "" {
		id = inserted[0].ID
	}
	rec.ID = id
	return id, nil
}

func (s *PropertyStore) GetProperty(ctx context.Context, id string) (*models.PropertyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.PropertyRecord
	_, err := s.client.Supabase.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if len(rows) == 0 {
		return nil, models.ErrPropertyNotFound
	}
	return &rows[0], nil
}

// ListProperties returns the newest properties first. A limit of zero or
// less means 100.
func (s *PropertyStore) ListProperties(ctx context.Context, source string, limit int) ([]models.PropertyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	query := s.client.Supabase.From(s.table).Select("*", "", false)
	if source != "" {
		query = query.Eq("source", source)
	}

	rows := []models.PropertyRecord{}
	_, err := query.
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return rows, nil
}
