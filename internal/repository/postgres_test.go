package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncodrug-server/internal/database"
	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/internal/service"
)

// getTestDB returns a migrated database connection for testing.
// Skip test if TEST_DATABASE_URL is not set.
func getTestDB(t *testing.T) *sql.DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	runner, err := database.NewMigrationRunner(dbURL, "../../migrations", logger)
	require.NoError(t, err)
	require.NoError(t, runner.Up(context.Background()))
	require.NoError(t, runner.Close())

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("TRUNCATE lung_drugs RESTART IDENTITY")
	require.NoError(t, err)

	return db
}

func TestPostgresRepository_RoundTrip(t *testing.T) {
	db := getTestDB(t)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAnnotationRepository(db, DialectPostgres, logger)
	ctx := context.Background()

	n, err := repo.InsertRecords(ctx, domain.CancerLung, []domain.VariantAnnotationRecord{
		{Gene: "EGFR", Position: "858", AAMutation: "p.L858R", Drug: "Erlotinib", Level: "1", Articles: []domain.Article{{PMID: "15118073"}}},
		{Gene: "EGFR", Position: "858", AAMutation: "p.L858R", Drug: "Gefitinib", Level: "1"},
		{Gene: "ALK", Nomenclature: "EML4_ALK fusion", Drug: "Alectinib"},
		{Gene: "ALK", Nomenclature: "EML4-ALK fusion", Drug: "Crizotinib"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	query, err := service.BuildQuery("LUNG", "egfr", []string{"l858r"})
	require.NoError(t, err)

	records, err := repo.Find(ctx, query)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []domain.Article{{PMID: "15118073"}}, records[0].Articles)
	assert.Equal(t, []domain.Article{}, records[1].Articles)

	literal, err := repo.Find(ctx, &domain.Query{
		Collection: domain.CancerLung,
		Clauses:    []domain.Clause{{Any: []domain.Predicate{{Field: domain.FieldNomenclature, Substring: "EML4_ALK"}}}},
	})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "Alectinib", literal[0].Drug)

	page, total, err := repo.Search(ctx, domain.CancerLung, domain.DrugFilter{Gene: "alk"}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, "Crizotinib", page[0].Drug)
}
