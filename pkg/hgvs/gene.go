package hgvs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oncodrug-server/internal/domain"
)

var (
	// Standard gene symbol pattern (HUGO Gene Nomenclature Committee standards)
	standardGenePattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*[A-Z0-9]$`)

	singleLetterGenePattern = regexp.MustCompile(`^[A-Z]$`)
)

// maxGeneSymbolLength follows the HUGO recommendation of at most 15 characters.
const maxGeneSymbolLength = 15

// NormalizeGeneSymbol trims and upper-cases a gene symbol and validates it against
// HUGO naming rules. Data sources store symbols in upper case, so lower-case input
// is accepted and normalized rather than rejected. Blank input returns "" and no error.
func NormalizeGeneSymbol(input string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input))
	if symbol == "" {
		return "", nil
	}

	if !singleLetterGenePattern.MatchString(symbol) && !standardGenePattern.MatchString(symbol) {
		return "", invalidGene(input, "Gene symbol must follow HUGO nomenclature standards (letters, numbers, and hyphens only)")
	}

	if strings.Contains(symbol, "--") {
		return "", invalidGene(input, "Gene symbol cannot contain consecutive hyphens")
	}

	if len(symbol) > maxGeneSymbolLength {
		return "", invalidGene(input, "Gene symbol should not exceed 15 characters")
	}

	return symbol, nil
}

// NormalizeGeneList normalizes every symbol, drops blanks and duplicates, and keeps first-seen order.
func NormalizeGeneList(inputs []string) ([]string, error) {
	seen := make(map[string]bool, len(inputs))
	genes := make([]string, 0, len(inputs))
	for _, in := range inputs {
		g, err := NormalizeGeneSymbol(in)
		if err != nil {
			return nil, err
		}
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genes = append(genes, g)
	}
	return genes, nil
}

func invalidGene(value, message string) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidGene, domain.NewValidationError("gene", message, value))
}
