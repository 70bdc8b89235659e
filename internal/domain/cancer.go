package domain

import (
	"fmt"
	"strings"
)

// CancerType identifies one backing annotation collection (disease site).
type CancerType string

const (
	CancerLung       CancerType = "Lung"
	CancerLiver      CancerType = "Liver"
	CancerBreast     CancerType = "Breast"
	CancerColorectal CancerType = "Colorectal"
	CancerThyroid    CancerType = "Thyroid"
)

// cancerTypeAliases maps lower-cased request codes to collections.
var cancerTypeAliases = map[string]CancerType{
	"lung":                     CancerLung,
	"liver":                    CancerLiver,
	"hepatocellular_carcinoma": CancerLiver,
	"breast":                   CancerBreast,
	"colorectal":               CancerColorectal,
	"large_intestine":          CancerColorectal,
	"thyroid":                  CancerThyroid,
}

var cancerTables = map[CancerType]string{
	CancerLung:       "lung_drugs",
	CancerLiver:      "liver_drugs",
	CancerBreast:     "breast_drugs",
	CancerColorectal: "colorectal_drugs",
	CancerThyroid:    "thyroid_drugs",
}

// AllCancerTypes returns every collection in a stable order.
func AllCancerTypes() []CancerType {
	return []CancerType{CancerLung, CancerLiver, CancerBreast, CancerColorectal, CancerThyroid}
}

// ResolveCancerType maps a request code to its collection, case-insensitively.
// Unknown codes are rejected rather than matched loosely.
func ResolveCancerType(code string) (CancerType, error) {
	ct, ok := cancerTypeAliases[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCancerType, code)
	}
	return ct, nil
}

// IsValid reports whether the cancer type is one of the known collections.
func (c CancerType) IsValid() bool {
	_, ok := cancerTables[c]
	return ok
}

// Table returns the storage table backing the collection.
func (c CancerType) Table() string {
	return cancerTables[c]
}
