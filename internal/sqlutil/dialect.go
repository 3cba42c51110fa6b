// Package sqlutil provides identifier quoting and placeholder helpers for the
// SQL dialects goapriori talks to.
package sqlutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavor of a connection.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps a configured driver name to its Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(driver)); d {
	case MySQL, Postgres, SQLite:
		return d, nil
	case "":
		return MySQL, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Quote quotes an identifier for the dialect, doubling any embedded quote
// character. MySQL uses backticks, the others use ANSI double quotes.
// Example: MySQL "school" -> "`school`", Postgres `my"col` -> `"my""col"`
func (d Dialect) Quote(name string) string {
	q := `"`
	if d == MySQL || d == "" {
		q = "`"
	}
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// QuoteSafe quotes an identifier after checking it with IsValidIdentifier.
func (d Dialect) QuoteSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return d.Quote(name), nil
}

// Placeholder returns the bind parameter for the n-th argument (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated bind parameters starting at
// argument number start, e.g. "($1, $2, $3)" without the parentheses.
func (d Dialect) Placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.Placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}

// Identifiers are restricted to the portable subset shared by every dialect.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name is a table or column name
// goapriori accepts: ASCII letters, digits and underscores only.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
