package domain

import (
	"encoding/json"
	"fmt"
)

// VariantList accepts either a single descriptor string or an array of them.
type VariantList []string

// UnmarshalJSON implements json.Unmarshaler
func (v *VariantList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = VariantList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("variants must be a string or an array of strings: %w", err)
	}
	*v = many
	return nil
}

// SearchByVariantRequest is the body of a search-by-variant call
type SearchByVariantRequest struct {
	CancerType string      `json:"cancerType"`
	Gene       string      `json:"gene,omitempty"`
	Variants   VariantList `json:"variants"`
}

// DrugSearchRequest is the body of a filtered drug search
type DrugSearchRequest struct {
	CancerType string `json:"cancerType"`
	DrugFilter
}

// GeneMatchRequest is the body of a patient gene-list match
type GeneMatchRequest struct {
	CancerType string   `json:"cancerType"`
	Genes      []string `json:"genes"`
	GeneQuery  string   `json:"geneQuery,omitempty"`
	DrugQuery  string   `json:"drugQuery,omitempty"`
}

// SearchResult is a paginated page of grouped matches
type SearchResult struct {
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
	DataDrug   []GroupedMatch `json:"dataDrug"`
}

// DrugRow is one record of a filtered drug search with its pmids flattened
type DrugRow struct {
	ID             int64    `json:"id"`
	Gene           string   `json:"gene"`
	Drug           string   `json:"drug"`
	Alteration     string   `json:"alteration"`
	Level          string   `json:"level"`
	CancerMainType string   `json:"cancer_main_type"`
	CancerSubType  string   `json:"cancer_sub_type"`
	Articles       []string `json:"articles"`
}

// DrugSearchResult is a paginated page of a filtered drug search
type DrugSearchResult struct {
	Success     bool      `json:"success"`
	Data        []DrugRow `json:"data"`
	TotalItems  int64     `json:"totalItems"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
