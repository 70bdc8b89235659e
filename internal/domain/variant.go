package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Grouping key sentinels used when a record lacks a gene or alteration.
const (
	NoGeneKey       = "NO_GENE"
	NoAlterationKey = "NO_AA"
)

// Level is an evidence level code. Sources write it as a string ("1", "R1") or a
// small integer; numbers are kept as their decimal string.
type Level string

// UnmarshalJSON implements json.Unmarshaler
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Level(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("level must be a string or a number: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("level must be an integer code, got %s", n)
	}
	*l = Level(n.String())
	return nil
}

// Article is a literature reference attached to an annotation record
type Article struct {
	PMID string `json:"pmid" yaml:"pmid"`
}

// VariantAnnotationRecord is one stored drug annotation row of a cancer collection.
// The same biological finding may appear several times, differing only in drug or articles.
type VariantAnnotationRecord struct {
	ID             int64     `json:"id,omitempty" yaml:"id,omitempty" db:"id"`
	Gene           string    `json:"gene" yaml:"gene" db:"gene"`
	Position       string    `json:"position,omitempty" yaml:"position,omitempty" db:"position"`
	AAMutation     string    `json:"aa_mutation,omitempty" yaml:"aa_mutation,omitempty" db:"aa_mutation"`
	Mutation       string    `json:"mutation,omitempty" yaml:"mutation,omitempty" db:"mutation"`
	Nomenclature   string    `json:"nomenclature,omitempty" yaml:"nomenclature,omitempty" db:"nomenclature"`
	CDS            string    `json:"cds,omitempty" yaml:"cds,omitempty" db:"cds"`
	Drug           string    `json:"drug,omitempty" yaml:"drug,omitempty" db:"drug"`
	Level          Level     `json:"level,omitempty" yaml:"level,omitempty" db:"level"`
	CancerMainType string    `json:"cancer_main_type,omitempty" yaml:"cancer_main_type,omitempty" db:"cancer_main_type"`
	CancerSubType  string    `json:"cancer_sub_type,omitempty" yaml:"cancer_sub_type,omitempty" db:"cancer_sub_type"`
	Disease        string    `json:"disease,omitempty" yaml:"disease,omitempty" db:"disease"`
	Responsive     string    `json:"responsive,omitempty" yaml:"responsive,omitempty" db:"responsive"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	SourceDB       string    `json:"source_db,omitempty" yaml:"source_db,omitempty" db:"source_db"`
	Articles       []Article `json:"articles" yaml:"articles" db:"articles"`
}

// GroupKey returns the (gene, alteration) deduplication key of the record.
func (r *VariantAnnotationRecord) GroupKey() string {
	gene := strings.TrimSpace(r.Gene)
	if gene == "" {
		gene = NoGeneKey
	}
	alteration := strings.TrimSpace(r.AAMutation)
	if alteration == "" {
		alteration = NoAlterationKey
	}
	return gene + "_" + alteration
}

// PMIDs returns the publication identifiers of the record's articles, in order.
func (r *VariantAnnotationRecord) PMIDs() []string {
	pmids := make([]string, 0, len(r.Articles))
	for _, a := range r.Articles {
		if a.PMID != "" {
			pmids = append(pmids, a.PMID)
		}
	}
	return pmids
}

// FieldValue returns the value of a searchable field by its storage name.
func (r *VariantAnnotationRecord) FieldValue(field Field) string {
	switch field {
	case FieldGene:
		return r.Gene
	case FieldPosition:
		return r.Position
	case FieldAAMutation:
		return r.AAMutation
	case FieldMutation:
		return r.Mutation
	case FieldNomenclature:
		return r.Nomenclature
	case FieldCDS:
		return r.CDS
	case FieldDrug:
		return r.Drug
	case FieldCancerMainType:
		return r.CancerMainType
	case FieldCancerSubType:
		return r.CancerSubType
	}
	return ""
}

// GroupedMatch is the query-time view of all records sharing a (gene, alteration) key.
// It is never persisted.
type GroupedMatch struct {
	Gene           string   `json:"gene"`
	Alteration     string   `json:"alteration"`
	Level          string   `json:"level"`
	CancerMainType string   `json:"cancer_main_type"`
	CancerSubType  string   `json:"cancer_sub_type"`
	Drugs          []string `json:"drugs"`
	Articles       []string `json:"articles"`
}

// DrugFilter holds the optional containment filters of a filtered drug search.
type DrugFilter struct {
	Gene           string `json:"geneName,omitempty"`
	Drug           string `json:"drugName,omitempty"`
	CancerMainType string `json:"cancerMainType,omitempty"`
	CancerSubType  string `json:"cancerSubType,omitempty"`
}

// Predicates returns the non-empty filters as field predicates; all of them must hold.
func (f DrugFilter) Predicates() []Predicate {
	var preds []Predicate
	add := func(field Field, v string) {
		if v = strings.TrimSpace(v); v != "" {
			preds = append(preds, Predicate{Field: field, Substring: v})
		}
	}
	add(FieldGene, f.Gene)
	add(FieldDrug, f.Drug)
	add(FieldCancerMainType, f.CancerMainType)
	add(FieldCancerSubType, f.CancerSubType)
	return preds
}
