package service

import (
	"fmt"
	"strings"

	"github.com/oncodrug-server/internal/domain"
	"github.com/oncodrug-server/pkg/hgvs"
)

// BuildQuery turns a search-by-variant request into a disjunctive query against
// the collection of the given cancer type. Every validation error is reported
// before any storage access happens.
//
// Each usable variant contributes one clause: the optional gene equality is a hard
// filter, and the RefSeq accession plus every extracted pattern are alternatives.
func BuildQuery(cancerType, gene string, variants []string) (*domain.Query, error) {
	collection, err := domain.ResolveCancerType(cancerType)
	if err != nil {
		return nil, err
	}

	normalizedGene, err := hgvs.NormalizeGeneSymbol(gene)
	if err != nil {
		return nil, err
	}

	query := &domain.Query{Collection: collection}
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		var preds []domain.Predicate
		if refSeq := hgvs.ExtractRefSeq(v); refSeq != "" {
			preds = append(preds, domain.Predicate{Field: domain.FieldNomenclature, Substring: refSeq})
		}
		for _, p := range hgvs.ExtractPatterns(v) {
			if !containsPredicate(preds, p) {
				preds = append(preds, p)
			}
		}

		query.Clauses = append(query.Clauses, domain.Clause{Gene: normalizedGene, Any: preds})
	}

	if len(query.Clauses) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty variant descriptor is required", domain.ErrMissingVariantInput)
	}
	return query, nil
}

// GeneQuery builds a query matching every record whose gene is one of the given symbols.
func GeneQuery(collection domain.CancerType, genes []string) *domain.Query {
	query := &domain.Query{Collection: collection}
	for _, g := range genes {
		query.Clauses = append(query.Clauses, domain.Clause{
			Gene: g,
			Any:  []domain.Predicate{{Field: domain.FieldGene, Substring: g}},
		})
	}
	return query
}

func containsPredicate(preds []domain.Predicate, p domain.Predicate) bool {
	for _, existing := range preds {
		if existing == p {
			return true
		}
	}
	return false
}
