package service

import (
	"strings"

	"github.com/oncodrug-server/internal/domain"
)

// orderedSet keeps unique strings in first-insertion order
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool), items: []string{}}
}

func (s *orderedSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

// GroupRecords folds records sharing a (gene, alteration) key into one GroupedMatch.
// The first record of a key seeds level and cancer types; drugs and article pmids
// are unioned. Groups come out in order of first appearance.
func GroupRecords(records []domain.VariantAnnotationRecord) []domain.GroupedMatch {
	groups := make([]domain.GroupedMatch, 0)
	index := make(map[string]int)
	drugs := make([]*orderedSet, 0)
	articles := make([]*orderedSet, 0)

	for i := range records {
		r := &records[i]
		key := r.GroupKey()

		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, domain.GroupedMatch{
				Gene:           r.Gene,
				Alteration:     r.AAMutation,
				Level:          string(r.Level),
				CancerMainType: r.CancerMainType,
				CancerSubType:  r.CancerSubType,
			})
			drugs = append(drugs, newOrderedSet())
			articles = append(articles, newOrderedSet())
		}

		drugs[idx].add(r.Drug)
		for _, pmid := range r.PMIDs() {
			articles[idx].add(pmid)
		}
	}

	for i := range groups {
		groups[i].Drugs = drugs[i].items
		groups[i].Articles = articles[i].items
	}
	return groups
}

// FlattenGroups expands groups back into records, one per drug, carrying the
// group's articles. Grouping the result yields the same groups.
func FlattenGroups(groups []domain.GroupedMatch) []domain.VariantAnnotationRecord {
	var records []domain.VariantAnnotationRecord
	for _, g := range groups {
		articles := make([]domain.Article, 0, len(g.Articles))
		for _, pmid := range g.Articles {
			articles = append(articles, domain.Article{PMID: pmid})
		}

		drugs := g.Drugs
		if len(drugs) == 0 {
			drugs = []string{""}
		}
		for _, drug := range drugs {
			records = append(records, domain.VariantAnnotationRecord{
				Gene:           g.Gene,
				AAMutation:     g.Alteration,
				Level:          domain.Level(g.Level),
				CancerMainType: g.CancerMainType,
				CancerSubType:  g.CancerSubType,
				Drug:           drug,
				Articles:       articles,
			})
		}
	}
	return records
}

// FilterGroups keeps groups whose gene contains geneQuery and whose joined drug
// names contain drugQuery, both case-insensitively. Blank queries match everything.
func FilterGroups(groups []domain.GroupedMatch, geneQuery, drugQuery string) []domain.GroupedMatch {
	geneQuery = strings.ToLower(strings.TrimSpace(geneQuery))
	drugQuery = strings.ToLower(strings.TrimSpace(drugQuery))
	if geneQuery == "" && drugQuery == "" {
		return groups
	}

	filtered := make([]domain.GroupedMatch, 0, len(groups))
	for _, g := range groups {
		if !strings.Contains(strings.ToLower(g.Gene), geneQuery) {
			continue
		}
		if !strings.Contains(strings.ToLower(strings.Join(g.Drugs, " | ")), drugQuery) {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}
