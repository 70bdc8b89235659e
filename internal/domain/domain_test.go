package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestResolveCancerType(t *testing.T) {
	tests := []struct {
		code    string
		want    CancerType
		wantErr bool
	}{
		{"lung", CancerLung, false},
		{" LUNG ", CancerLung, false},
		{"hepatocellular_carcinoma", CancerLiver, false},
		{"Large_Intestine", CancerColorectal, false},
		{"thyroid", CancerThyroid, false},
		{"pancreas", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ResolveCancerType(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCancerType) {
					t.Fatalf("Expected ErrInvalidCancerType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCancerTypeTables(t *testing.T) {
	for _, ct := range AllCancerTypes() {
		if !ct.IsValid() {
			t.Errorf("Expected %s to be valid", ct)
		}
		if ct.Table() == "" {
			t.Errorf("Expected %s to have a table", ct)
		}
	}
	if CancerType("Pancreas").IsValid() {
		t.Error("Expected unknown cancer type to be invalid")
	}
}

func TestVariantListUnmarshal(t *testing.T) {
	var req SearchByVariantRequest
	if err := json.Unmarshal([]byte(`{"cancerType":"lung","variants":"L858R"}`), &req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(req.Variants, VariantList{"L858R"}) {
		t.Errorf("Expected single variant, got %v", req.Variants)
	}

	if err := json.Unmarshal([]byte(`{"variants":["L858R","T790M"]}`), &req); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(req.Variants, VariantList{"L858R", "T790M"}) {
		t.Errorf("Expected two variants, got %v", req.Variants)
	}

	if err := json.Unmarshal([]byte(`{"variants":{"a":1}}`), &req); err == nil {
		t.Error("Expected error for object variants")
	}
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		record VariantAnnotationRecord
		want   string
	}{
		{VariantAnnotationRecord{Gene: "EGFR", AAMutation: "p.L858R"}, "EGFR_p.L858R"},
		{VariantAnnotationRecord{Gene: " EGFR ", AAMutation: ""}, "EGFR_NO_AA"},
		{VariantAnnotationRecord{Gene: "", AAMutation: "p.V600E"}, "NO_GENE_p.V600E"},
		{VariantAnnotationRecord{}, "NO_GENE_NO_AA"},
	}

	for _, tt := range tests {
		if got := tt.record.GroupKey(); got != tt.want {
			t.Errorf("Expected %s, got %s", tt.want, got)
		}
	}
}

func TestQueryMatches(t *testing.T) {
	record := &VariantAnnotationRecord{
		Gene:         "EGFR",
		Position:     "858",
		Nomenclature: "NM_005228.5(EGFR):c.2573T>G:p.Leu858Arg",
	}

	q := &Query{Collection: CancerLung, Clauses: []Clause{
		{Gene: "egfr", Any: []Predicate{{Field: FieldNomenclature, Substring: "C.2573t>g"}}},
	}}
	if !q.Matches(record) {
		t.Error("Expected case-insensitive containment match")
	}

	q.Clauses[0].Gene = "KRAS"
	if q.Matches(record) {
		t.Error("Expected gene equality to restrict the clause")
	}

	q.Clauses = append(q.Clauses, Clause{Any: []Predicate{{Field: FieldPosition, Substring: "85"}}})
	if !q.Matches(record) {
		t.Error("Expected the second clause to match")
	}

	if (&Query{Collection: CancerLung}).Matches(record) {
		t.Error("Expected an empty query to match nothing")
	}
}

func TestDrugFilterPredicates(t *testing.T) {
	filter := DrugFilter{Gene: " egfr ", CancerSubType: "Adenocarcinoma"}
	want := []Predicate{
		{Field: FieldGene, Substring: "egfr"},
		{Field: FieldCancerSubType, Substring: "Adenocarcinoma"},
	}
	if got := filter.Predicates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := (DrugFilter{}).Predicates(); len(got) != 0 {
		t.Errorf("Expected no predicates, got %v", got)
	}
}

func TestDatabaseConfigURL_WithoutSSLMode(t *testing.T) {
	cfg := DatabaseConfig{Host: "localhost", Port: 5432, Database: "oncodrug", Username: "app", Password: "pw"}
	want := "postgres://app:pw@localhost:5432/oncodrug"
	if got := cfg.URL(); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLevelUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{`{"level":"1"}`, "1", false},
		{`{"level":"R2"}`, "R2", false},
		{`{"level":3}`, "3", false},
		{`{"level":null}`, "", false},
		{`{}`, "", false},
		{`{"level":2.5}`, "", true},
		{`{"level":true}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var record VariantAnnotationRecord
			err := json.Unmarshal([]byte(tt.input), &record)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if record.Level != tt.want {
				t.Errorf("Expected level %q, got %q", tt.want, record.Level)
			}
		})
	}
}
