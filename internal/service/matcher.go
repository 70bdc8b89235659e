package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/pkg/hgvs"
)

// VariantMatcher looks up drug annotations for clinical variant descriptors.
// It holds no per-request state; the optional cache is goroutine-safe.
type VariantMatcher struct {
	repo   domain.AnnotationRepository
	cache  domain.SearchCache
	logger *logrus.Logger
}

// MatcherOption is a functional option for VariantMatcher.
type MatcherOption func(*VariantMatcher)

// WithSearchCache enables caching of grouped search results.
func WithSearchCache(cache domain.SearchCache) MatcherOption {
	return func(m *VariantMatcher) {
		m.cache = cache
	}
}

// NewVariantMatcher creates a new variant matcher service
func NewVariantMatcher(repo domain.AnnotationRepository, logger *logrus.Logger, opts ...MatcherOption) *VariantMatcher {
	m := &VariantMatcher{
		repo:   repo,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SearchByVariant finds, groups and paginates the records matching any of the
// request's variant descriptors.
func (m *VariantMatcher) SearchByVariant(ctx context.Context, req *domain.SearchByVariantRequest, page PageParams) (*domain.SearchResult, error) {
	startTime := time.Now()

	query, err := BuildQuery(req.CancerType, req.Gene, req.Variants)
	if err != nil {
		return nil, err
	}

	key := cacheKey("variant", query)
	groups, err := m.groupedMatches(ctx, key, func(ctx context.Context) ([]domain.VariantAnnotationRecord, error) {
		return m.repo.Find(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	result := toSearchResult(Paginate(groups, page))

	m.logger.WithFields(logrus.Fields{
		"collection":      query.Collection,
		"variant_count":   len(query.Clauses),
		"gene":            req.Gene,
		"total_items":     result.TotalItems,
		"page":            result.Page,
		"processing_time": time.Since(startTime),
	}).Info("Search by variant completed")

	return result, nil
}

// MatchGenes groups every record of the collection whose gene is in the request's
// gene list, then applies the optional gene/drug substring filters.
func (m *VariantMatcher) MatchGenes(ctx context.Context, req *domain.GeneMatchRequest, page PageParams) (*domain.SearchResult, error) {
	collection, err := domain.ResolveCancerType(req.CancerType)
	if err != nil {
		return nil, err
	}

	genes, err := hgvs.NormalizeGeneList(req.Genes)
	if err != nil {
		return nil, err
	}
	if len(genes) == 0 {
		return toSearchResult(Paginate([]domain.GroupedMatch{}, page)), nil
	}

	key := cacheKey("genes", GeneQuery(collection, genes))
	groups, err := m.groupedMatches(ctx, key, func(ctx context.Context) ([]domain.VariantAnnotationRecord, error) {
		return m.repo.FindByGenes(ctx, collection, genes)
	})
	if err != nil {
		return nil, err
	}

	filtered := FilterGroups(groups, req.GeneQuery, req.DrugQuery)

	m.logger.WithFields(logrus.Fields{
		"collection":    collection,
		"gene_count":    len(genes),
		"grouped_count": len(groups),
		"matched_count": len(filtered),
	}).Info("Gene list match completed")

	return toSearchResult(Paginate(filtered, page)), nil
}

// SearchDrugs runs a filtered, storage-paginated search over one collection.
func (m *VariantMatcher) SearchDrugs(ctx context.Context, req *domain.DrugSearchRequest, page PageParams) (*domain.DrugSearchResult, error) {
	collection, err := domain.ResolveCancerType(req.CancerType)
	if err != nil {
		return nil, err
	}

	records, total, err := m.repo.Search(ctx, collection, req.DrugFilter, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}

	rows := make([]domain.DrugRow, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, domain.DrugRow{
			ID:             r.ID,
			Gene:           r.Gene,
			Drug:           r.Drug,
			Alteration:     r.AAMutation,
			Level:          string(r.Level),
			CancerMainType: r.CancerMainType,
			CancerSubType:  r.CancerSubType,
			Articles:       r.PMIDs(),
		})
	}

	return &domain.DrugSearchResult{
		Success:     true,
		Data:        rows,
		TotalItems:  total,
		TotalPages:  TotalPages(total, page.Limit),
		CurrentPage: page.Page,
	}, nil
}

// GetRecord returns one stored record of a collection.
func (m *VariantMatcher) GetRecord(ctx context.Context, cancerType string, id int64) (*domain.VariantAnnotationRecord, error) {
	collection, err := domain.ResolveCancerType(cancerType)
	if err != nil {
		return nil, err
	}
	return m.repo.FindByID(ctx, collection, id)
}

// groupedMatches returns cached groups for key, or fetches and groups the records.
func (m *VariantMatcher) groupedMatches(ctx context.Context, key string, fetch func(context.Context) ([]domain.VariantAnnotationRecord, error)) ([]domain.GroupedMatch, error) {
	if m.cache != nil {
		if groups, ok := m.cache.Get(ctx, key); ok {
			m.logger.WithField("cache_key", key).Debug("Search cache hit")
			return groups, nil
		}
	}

	records, err := fetch(ctx)
	if err != nil {
		m.logger.WithError(err).Error("Annotation lookup failed")
		return nil, err
	}

	groups := GroupRecords(records)
	if m.cache != nil {
		m.cache.Set(ctx, key, groups)
	}
	return groups, nil
}

func toSearchResult(p Page[domain.GroupedMatch]) *domain.SearchResult {
	return &domain.SearchResult{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		DataDrug:   p.Items,
	}
}

// cacheKey derives a stable key from the query shape. The query is JSON-encoded
// so user text cannot reproduce the encoding of a different query.
func cacheKey(kind string, q *domain.Query) string {
	data, err := json.Marshal(struct {
		Kind  string        `json:"kind"`
		Query *domain.Query `json:"query"`
	}{kind, q})
	if err != nil {
		data = []byte(fmt.Sprintf("%s|%#v", kind, q))
	}
	sum := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(sum[:])
}
