package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/domain"
)

const annotationColumns = `id, gene, position, aa_mutation, mutation, nomenclature, cds, drug, level,
	cancer_main_type, cancer_sub_type, disease, responsive, description, source_db, articles`

// AnnotationRepository reads and seeds the per-cancer drug annotation tables.
// Safe for concurrent use.
type AnnotationRepository struct {
	db      *sql.DB
	dialect Dialect
	log     *logrus.Logger
}

// NewAnnotationRepository creates a new annotation repository
func NewAnnotationRepository(db *sql.DB, dialect Dialect, logger *logrus.Logger) *AnnotationRepository {
	return &AnnotationRepository{
		db:      db,
		dialect: dialect,
		log:     logger,
	}
}

// Find returns every record of the query's collection matching at least one clause,
// in storage order.
func (r *AnnotationRepository) Find(ctx context.Context, query *domain.Query) ([]domain.VariantAnnotationRecord, error) {
	table, err := tableFor(query.Collection)
	if err != nil {
		return nil, err
	}

	b := &sqlBuilder{dialect: r.dialect}
	where, err := b.where(query)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id", annotationColumns, table, where)
	return r.queryRecords(ctx, table, stmt, b.args)
}

// Count returns the number of records Find would return. It shares the count
// statement with Search, which applies it to a filter conjunction instead.
func (r *AnnotationRepository) Count(ctx context.Context, query *domain.Query) (int64, error) {
	table, err := tableFor(query.Collection)
	if err != nil {
		return 0, err
	}

	b := &sqlBuilder{dialect: r.dialect}
	where, err := b.where(query)
	if err != nil {
		return 0, err
	}

	return r.count(ctx, table, where, b.args)
}

// FindByGenes returns every record whose gene is one of genes.
func (r *AnnotationRepository) FindByGenes(ctx context.Context, collection domain.CancerType, genes []string) ([]domain.VariantAnnotationRecord, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	if len(genes) == 0 {
		return []domain.VariantAnnotationRecord{}, nil
	}

	b := &sqlBuilder{dialect: r.dialect}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id", annotationColumns, table, b.geneIn(genes))
	return r.queryRecords(ctx, table, stmt, b.args)
}

// FindByID retrieves one record by its storage id
func (r *AnnotationRepository) FindByID(ctx context.Context, collection domain.CancerType, id int64) (*domain.VariantAnnotationRecord, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	b := &sqlBuilder{dialect: r.dialect}
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", annotationColumns, table, b.bind(id))

	record, err := scanRecord(r.db.QueryRowContext(ctx, stmt, b.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %d in %s: %w", id, table, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"table":     table,
			"record_id": id,
			"error":     err,
		}).Error("Failed to get annotation record by ID")
		return nil, fmt.Errorf("getting record %d from %s: %w: %w", id, table, domain.ErrStorage, err)
	}
	return record, nil
}

// Search returns one page of records matching every filter, plus the total match count.
func (r *AnnotationRepository) Search(ctx context.Context, collection domain.CancerType, filter domain.DrugFilter, limit, offset int) ([]domain.VariantAnnotationRecord, int64, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, 0, err
	}

	b := &sqlBuilder{dialect: r.dialect}
	where, err := b.allOf(filter.Predicates())
	if err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, table, where, b.args)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.VariantAnnotationRecord{}, 0, nil
	}

	filterArgs := len(b.args)
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id LIMIT %s OFFSET %s",
		annotationColumns, table, where, b.bind(limit), b.bind(offset))
	records, err := r.queryRecords(ctx, table, stmt, b.args)
	if err != nil {
		return nil, 0, err
	}

	r.log.WithFields(logrus.Fields{
		"table":   table,
		"filters": filterArgs,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	}).Debug("Drug search executed")

	return records, total, nil
}

// InsertRecords appends records to a collection in one transaction and returns how many were written.
func (r *AnnotationRepository) InsertRecords(ctx context.Context, collection domain.CancerType, records []domain.VariantAnnotationRecord) (int, error) {
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (gene, position, aa_mutation, mutation, nomenclature, cds, drug, level,
		cancer_main_type, cancer_sub_type, disease, responsive, description, source_db, articles)
		VALUES (%s)`, table, r.dialect.placeholders(15))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning insert into %s: %w: %w", table, domain.ErrStorage, err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("preparing insert into %s: %w: %w", table, domain.ErrStorage, err)
	}
	defer prepared.Close()

	for i := range records {
		rec := &records[i]
		articles, err := encodeArticles(rec.Articles)
		if err != nil {
			return 0, err
		}
		if _, err := prepared.ExecContext(ctx,
			rec.Gene, rec.Position, rec.AAMutation, rec.Mutation, rec.Nomenclature, rec.CDS, rec.Drug, string(rec.Level),
			rec.CancerMainType, rec.CancerSubType, rec.Disease, rec.Responsive, rec.Description, rec.SourceDB, articles,
		); err != nil {
			r.log.WithFields(logrus.Fields{
				"table": table,
				"gene":  rec.Gene,
				"index": i,
				"error": err,
			}).Error("Failed to insert annotation record")
			return 0, fmt.Errorf("inserting record %d into %s: %w: %w", i, table, domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing insert into %s: %w: %w", table, domain.ErrStorage, err)
	}

	r.log.WithFields(logrus.Fields{
		"table": table,
		"count": len(records),
	}).Info("Annotation records inserted")

	return len(records), nil
}

// Ping verifies the store is reachable
func (r *AnnotationRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging annotation store: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *AnnotationRepository) queryRecords(ctx context.Context, table, stmt string, args []interface{}) ([]domain.VariantAnnotationRecord, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"table": table,
			"args":  len(args),
			"error": err,
		}).Error("Failed to query annotation records")
		return nil, fmt.Errorf("querying %s: %w: %w", table, domain.ErrStorage, err)
	}
	defer rows.Close()

	records := make([]domain.VariantAnnotationRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w: %w", table, domain.ErrStorage, err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w: %w", table, domain.ErrStorage, err)
	}
	return records, nil
}

func (r *AnnotationRepository) count(ctx context.Context, table, where string, args []interface{}) (int64, error) {
	var total int64
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where)
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"table": table,
			"error": err,
		}).Error("Failed to count annotation records")
		return 0, fmt.Errorf("counting %s: %w: %w", table, domain.ErrStorage, err)
	}
	return total, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.VariantAnnotationRecord, error) {
	var rec domain.VariantAnnotationRecord
	var articles []byte

	if err := s.Scan(
		&rec.ID, &rec.Gene, &rec.Position, &rec.AAMutation, &rec.Mutation, &rec.Nomenclature, &rec.CDS,
		&rec.Drug, &rec.Level, &rec.CancerMainType, &rec.CancerSubType, &rec.Disease, &rec.Responsive,
		&rec.Description, &rec.SourceDB, &articles,
	); err != nil {
		return nil, err
	}

	rec.Articles = []domain.Article{}
	if len(articles) > 0 {
		if err := json.Unmarshal(articles, &rec.Articles); err != nil {
			return nil, fmt.Errorf("decoding articles of record %d: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

func encodeArticles(articles []domain.Article) (string, error) {
	if articles == nil {
		articles = []domain.Article{}
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return "", fmt.Errorf("encoding articles: %w", err)
	}
	return string(data), nil
}

func tableFor(collection domain.CancerType) (string, error) {
	if !collection.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCancerType, collection)
	}
	return collection.Table(), nil
}
