package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oncodrug-server/internal/domain"
)

// LoadSeedFile reads a list of annotation records. The format follows the file extension.
func LoadSeedFile(path string) ([]domain.VariantAnnotationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var records []domain.VariantAnnotationRecord
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &records)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding seed file %s: %w", path, err)
	}

	for i := range records {
		records[i].Gene = strings.ToUpper(strings.TrimSpace(records[i].Gene))
		if records[i].Articles == nil {
			records[i].Articles = []domain.Article{}
		}
	}
	return records, nil
}

// ImportRecords inserts records in batches of batchSize, one transaction per batch.
// It returns the number of records stored before any failure.
func ImportRecords(ctx context.Context, repo domain.AnnotationRepository, collection domain.CancerType, records []domain.VariantAnnotationRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = len(records)
	}

	imported := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		n, err := repo.InsertRecords(ctx, collection, records[start:end])
		imported += n
		if err != nil {
			return imported, fmt.Errorf("importing records %d-%d: %w", start, end-1, err)
		}
	}
	return imported, nil
}
