package repository

import (
	"fmt"
	"strings"

	"github.com/oncodrug-server/internal/domain"
)

// Dialect selects the SQL flavour of an annotation store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured database driver name to a dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// likeOperator is case-insensitive in both dialects; SQLite LIKE folds ASCII case.
func (d Dialect) likeOperator() string {
	if d == DialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// placeholders returns a comma-separated list of n positional parameters.
func (d Dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		if d == DialectPostgres {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// escapeLike makes s a literal LIKE operand under ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// sqlBuilder accumulates a WHERE fragment and its positional arguments.
type sqlBuilder struct {
	dialect Dialect
	args    []interface{}
}

func (b *sqlBuilder) bind(v interface{}) string {
	b.args = append(b.args, v)
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}

func (b *sqlBuilder) contains(p domain.Predicate) (string, error) {
	if !p.Field.IsValid() {
		return "", fmt.Errorf("unknown search field %q", p.Field)
	}
	return fmt.Sprintf(`%s %s %s ESCAPE '\'`, p.Field, b.dialect.likeOperator(), b.bind("%"+escapeLike(p.Substring)+"%")), nil
}

func (b *sqlBuilder) geneEquals(gene string) string {
	return fmt.Sprintf("UPPER(TRIM(gene)) = %s", b.bind(strings.ToUpper(strings.TrimSpace(gene))))
}

// where translates a query into a disjunction of clauses. A query or clause that
// cannot match anything becomes 1=0.
func (b *sqlBuilder) where(q *domain.Query) (string, error) {
	var clauses []string
	for _, c := range q.Clauses {
		if len(c.Any) == 0 {
			continue
		}

		alternatives := make([]string, 0, len(c.Any))
		for _, p := range c.Any {
			frag, err := b.contains(p)
			if err != nil {
				return "", err
			}
			alternatives = append(alternatives, frag)
		}

		clause := "(" + strings.Join(alternatives, " OR ") + ")"
		if c.Gene != "" {
			clause = "(" + b.geneEquals(c.Gene) + " AND " + clause + ")"
		}
		clauses = append(clauses, clause)
	}

	if len(clauses) == 0 {
		return "1=0", nil
	}
	return strings.Join(clauses, " OR "), nil
}

// allOf translates predicates into a conjunction. No predicates match everything.
func (b *sqlBuilder) allOf(preds []domain.Predicate) (string, error) {
	if len(preds) == 0 {
		return "1=1", nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		frag, err := b.contains(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	return strings.Join(parts, " AND "), nil
}

// geneIn matches records whose trimmed gene is one of genes, ignoring case.
func (b *sqlBuilder) geneIn(genes []string) string {
	placeholders := make([]string, 0, len(genes))
	for _, g := range genes {
		placeholders = append(placeholders, b.bind(strings.ToUpper(strings.TrimSpace(g))))
	}
	return "UPPER(TRIM(gene)) IN (" + strings.Join(placeholders, ", ") + ")"
}
