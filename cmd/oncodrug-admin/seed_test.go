package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oncodrug-server/internal/database"
	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/internal/repository"
)

const yamlSeed = `
- gene: egfr
  position: "858"
  aa_mutation: p.L858R
  nomenclature: NM_005228.5(EGFR):c.2573T>G:p.Leu858Arg
  drug: Osimertinib
  level: "1"
  articles:
    - pmid: "29151359"
- gene: ALK
  nomenclature: EML4_ALK
  drug: Alectinib
  level: 2
`

const jsonSeed = `[
  {"gene": "KRAS", "position": "12", "aa_mutation": "p.G12C", "drug": "Sotorasib", "level": 1, "articles": [{"pmid": "34096690"}]},
  {"gene": "KRAS", "position": "12", "aa_mutation": "p.G12C", "drug": "Adagrasib", "level": "R1"}
]`

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		records, err := LoadSeedFile(writeSeed(t, "lung.yaml", yamlSeed))
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "EGFR", records[0].Gene)
		assert.Equal(t, "p.L858R", records[0].AAMutation)
		assert.Equal(t, []domain.Article{{PMID: "29151359"}}, records[0].Articles)
		assert.Equal(t, "EML4_ALK", records[1].Nomenclature)
		assert.Equal(t, domain.Level("1"), records[0].Level)
		assert.Equal(t, domain.Level("2"), records[1].Level)
		assert.NotNil(t, records[1].Articles)
	})

	t.Run("json", func(t *testing.T) {
		records, err := LoadSeedFile(writeSeed(t, "lung.JSON", jsonSeed))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, []string{"34096690"}, records[0].PMIDs())
		assert.Equal(t, domain.Level("1"), records[0].Level)
		assert.Equal(t, domain.Level("R1"), records[1].Level)
		assert.Empty(t, records[1].Articles)
	})

	t.Run("json integer level", func(t *testing.T) {
		records, err := LoadSeedFile(writeSeed(t, "lung.json", `[{"gene":"EGFR","level":1}]`))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.Level("1"), records[0].Level)
	})

	t.Run("json fractional level", func(t *testing.T) {
		_, err := LoadSeedFile(writeSeed(t, "lung.json", `[{"gene":"EGFR","level":1.5}]`))
		assert.ErrorContains(t, err, "decoding seed file")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadSeedFile(writeSeed(t, "lung.csv", "gene,drug"))
		assert.ErrorContains(t, err, `unsupported seed file extension ".csv"`)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := LoadSeedFile(writeSeed(t, "lung.json", `{"gene":`))
		assert.ErrorContains(t, err, "decoding seed file")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "reading seed file")
	})
}

func TestImportRecords_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	defer db.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := repository.NewAnnotationRepository(db, repository.DialectSQLite, logger)

	records := make([]domain.VariantAnnotationRecord, 5)
	for i := range records {
		records[i] = domain.VariantAnnotationRecord{Gene: "BRAF", AAMutation: "p.V600E", Drug: "Dabrafenib", Articles: []domain.Article{}}
	}

	n, err := ImportRecords(ctx, repo, domain.CancerThyroid, records, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	stored, err := repo.FindByGenes(ctx, domain.CancerThyroid, []string{"BRAF"})
	require.NoError(t, err)
	assert.Len(t, stored, 5)
}

type mockRepository struct {
	domain.AnnotationRepository
	mock.Mock
}

func (m *mockRepository) InsertRecords(ctx context.Context, collection domain.CancerType, records []domain.VariantAnnotationRecord) (int, error) {
	args := m.Called(ctx, collection, records)
	return args.Int(0), args.Error(1)
}

func TestImportRecords_StopsOnFailure(t *testing.T) {
	ctx := context.Background()
	records := make([]domain.VariantAnnotationRecord, 5)
	for i := range records {
		records[i].Drug = fmt.Sprintf("drug-%d", i)
	}
	storageErr := errors.New("disk full")

	repo := &mockRepository{}
	repo.On("InsertRecords", ctx, domain.CancerLung, records[0:2]).Return(2, nil).Once()
	repo.On("InsertRecords", ctx, domain.CancerLung, records[2:4]).Return(0, storageErr).Once()

	n, err := ImportRecords(ctx, repo, domain.CancerLung, records, 2)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, storageErr)
	assert.ErrorContains(t, err, "importing records 2-3")
	repo.AssertExpectations(t)
}

func TestImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "oncodrug.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite\n  sqlite_path: "+dbPath+"\nlogging:\n  level: error\n"), 0o600))
	seed := writeSeed(t, "lung.yaml", yamlSeed)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "import", "--cancer-type", "lung", "--file", seed})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	db, err := database.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM lung_drugs").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestImportCommand_RejectsUnknownCancerType(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite\n  sqlite_path: "+filepath.Join(dir, "x.db")+"\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "import", "--cancer-type", "pancreas", "--file", "unused.yaml"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidCancerType)
}

func TestMigrateCommand_RequiresPostgres(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  driver: sqlite\n  sqlite_path: "+filepath.Join(dir, "x.db")+"\n"), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "migrate", "up"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "migrations apply to postgres only")
}
