package domain

import (
	"strconv"
	"strings"
)

// Dialect identifie le moteur SQL derrière le *sql.DB
// Les deux moteurs diffèrent surtout par la syntaxe des placeholders
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Placeholder retourne le n-ième placeholder (1-based) pour ce dialecte
// SQLite: "?", PostgreSQL: "$1", "$2", ...
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders retourne "count" placeholders séparés par des virgules, à partir de "from"
func (d Dialect) Placeholders(from, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = d.Placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
