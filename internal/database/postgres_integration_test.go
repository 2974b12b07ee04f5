//go:build integration

package database_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"property-import-backend/internal/database"
)

var postgresDSN string

func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "properties",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}
	postgresDSN = fmt.Sprintf("postgres://test:test@%s:%s/properties?sslmode=disable", host, port.Port())

	code := m.Run()

	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestPostgres_MigrateCreateGet(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(ctx, database.DialectPostgres, postgresDSN)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.NewMigrator(db, database.DialectPostgres, nil).Run(ctx))

	store := database.NewPropertyStore(db, database.DialectPostgres)
	created := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	id, err := store.CreateProperty(ctx, sampleRecord("pg-duplex", "testsource", created))
	require.NoError(t, err)

	got, err := store.GetProperty(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pg-duplex", got.Title)
	assert.True(t, created.Equal(got.CreatedAt))

	list, err := store.ListProperties(ctx, "testsource", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
