// Package hgvs derives search patterns from free-text clinical variant descriptors
// such as "NM_004958.4(PIK3CA):c.1633G>A:p.Glu545Lys".
package hgvs

import (
	"regexp"
	"strings"

	"github.com/oncodrug-server/internal/domain"
)

// Token patterns. Data sources format nomenclature inconsistently, so each
// token is looked for anywhere in the descriptor rather than anchored.
var (
	geneSegmentPattern  = regexp.MustCompile(`\(([^()]+)\)`)
	codingTokenPattern  = regexp.MustCompile(`\bc\.([^:\s]+)`)
	proteinTokenPattern = regexp.MustCompile(`\bp\.([^:\s]+)`)
	refSeqPattern       = regexp.MustCompile(`NM_\d+(?:\.\d+)?`)
	substitutionPattern = regexp.MustCompile(`[0-9+\-*]+[ACGTNacgtn]>[ACGTNacgtn]`)
	positionPattern     = regexp.MustCompile(`[0-9+\-*]*[0-9][0-9+\-*]*`)
)

// ExtractPatterns returns the candidate sub-patterns of a variant descriptor in a
// fixed order. A record matching any of them is a hit for the descriptor.
// Malformed input yields fewer patterns, never an error; blank input yields none.
func ExtractPatterns(variant string) []domain.Predicate {
	v := strings.TrimSpace(variant)
	if v == "" {
		return []domain.Predicate{}
	}

	ps := newPatternSet()
	ps.add(domain.FieldNomenclature, v)

	ps.add(domain.FieldGene, geneSegment(v))

	coding := codingTokenPattern.FindStringSubmatch(v)
	if coding != nil {
		ps.add(domain.FieldNomenclature, coding[0])
		ps.add(domain.FieldCDS, coding[0])
		ps.add(domain.FieldNomenclature, coding[1])
	}

	if m := proteinTokenPattern.FindString(v); m != "" {
		ps.add(domain.FieldNomenclature, m)
		ps.add(domain.FieldAAMutation, m)
	}

	if refSeq := ExtractRefSeq(v); refSeq != "" {
		ps.add(domain.FieldNomenclature, refSeq)
	}

	if strings.Contains(v, ":") {
		for _, segment := range strings.Split(v, ":") {
			ps.add(domain.FieldNomenclature, strings.TrimSpace(segment))
		}
	}

	if m := substitutionPattern.FindString(v); m != "" {
		ps.add(domain.FieldNomenclature, m)
		ps.add(domain.FieldMutation, m)
	}

	// Prefer the coding position; the first digit run of the whole string is
	// often the accession number.
	positionSource := v
	if coding != nil {
		positionSource = coding[1]
	}
	if m := positionPattern.FindString(positionSource); m != "" {
		ps.add(domain.FieldPosition, m)
	} else if m := positionPattern.FindString(v); m != "" {
		ps.add(domain.FieldPosition, m)
	}

	return ps.predicates
}

// geneSegment returns the first parenthesized segment that is not a predicted
// change such as "p.(Glu545Lys)" or "c.(1633G>A)", or "".
func geneSegment(v string) string {
	for _, loc := range geneSegmentPattern.FindAllStringSubmatchIndex(v, -1) {
		prefix := v[:loc[0]]
		if strings.HasSuffix(prefix, "p.") || strings.HasSuffix(prefix, "c.") {
			continue
		}
		return strings.TrimSpace(v[loc[2]:loc[3]])
	}
	return ""
}

// ExtractRefSeq returns the first RefSeq transcript accession in the descriptor, or "".
func ExtractRefSeq(variant string) string {
	return refSeqPattern.FindString(variant)
}

type patternSet struct {
	seen       map[domain.Predicate]bool
	predicates []domain.Predicate
}

func newPatternSet() *patternSet {
	return &patternSet{seen: make(map[domain.Predicate]bool)}
}

// add appends a non-empty predicate unless the same field/substring pair is already present.
func (s *patternSet) add(field domain.Field, substring string) {
	if substring == "" {
		return
	}
	p := domain.Predicate{Field: field, Substring: substring}
	if s.seen[p] {
		return
	}
	s.seen[p] = true
	s.predicates = append(s.predicates, p)
}
