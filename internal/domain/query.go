package domain

import (
	"strings"
)

// Field names a searchable column of an annotation collection
type Field string

const (
	FieldGene           Field = "gene"
	FieldPosition       Field = "position"
	FieldAAMutation     Field = "aa_mutation"
	FieldMutation       Field = "mutation"
	FieldNomenclature   Field = "nomenclature"
	FieldCDS            Field = "cds"
	FieldDrug           Field = "drug"
	FieldCancerMainType Field = "cancer_main_type"
	FieldCancerSubType  Field = "cancer_sub_type"
)

var searchableFields = map[Field]bool{
	FieldGene: true, FieldPosition: true, FieldAAMutation: true, FieldMutation: true,
	FieldNomenclature: true, FieldCDS: true, FieldDrug: true,
	FieldCancerMainType: true, FieldCancerSubType: true,
}

// IsValid reports whether the field is a known searchable column.
func (f Field) IsValid() bool {
	return searchableFields[f]
}

// Predicate is a case-insensitive literal substring containment test against one field.
type Predicate struct {
	Field     Field  `json:"field"`
	Substring string `json:"substring"`
}

// Matches reports whether the record's field contains the substring, ignoring case.
func (p Predicate) Matches(r *VariantAnnotationRecord) bool {
	return strings.Contains(strings.ToLower(r.FieldValue(p.Field)), strings.ToLower(p.Substring))
}

// Clause matches a record when the optional gene equality holds and any predicate matches.
type Clause struct {
	Gene string      `json:"gene,omitempty"`
	Any  []Predicate `json:"any"`
}

// Matches evaluates the clause against a record.
func (c Clause) Matches(r *VariantAnnotationRecord) bool {
	if c.Gene != "" && !strings.EqualFold(strings.TrimSpace(r.Gene), c.Gene) {
		return false
	}
	for _, p := range c.Any {
		if p.Matches(r) {
			return true
		}
	}
	return false
}

// Query is a disjunction of clauses against one cancer collection.
type Query struct {
	Collection CancerType `json:"collection"`
	Clauses    []Clause   `json:"clauses"`
}

// Matches reports whether the record satisfies at least one clause.
func (q *Query) Matches(r *VariantAnnotationRecord) bool {
	for _, c := range q.Clauses {
		if c.Matches(r) {
			return true
		}
	}
	return false
}
