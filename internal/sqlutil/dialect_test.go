package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input    string
		expected Dialect
		wantErr  bool
	}{
		{"mysql", MySQL, false},
		{"Postgres", Postgres, false},
		{"sqlite", SQLite, false},
		{"", MySQL, false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDialect(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDialect_Quote(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected string
	}{
		{"mysql plain", MySQL, "school", "`school`"},
		{"mysql embedded backtick", MySQL, "env`grade", "`env``grade`"},
		{"mysql keeps double quote", MySQL, `env"grade`, "`env\"grade`"},
		{"unset dialect is mysql", Dialect(""), "cat1", "`cat1`"},
		{"postgres plain", Postgres, "school", `"school"`},
		{"postgres embedded quote", Postgres, `my"table`, `"my""table"`},
		{"postgres keeps backtick", Postgres, "my`table", "\"my`table\""},
		{"sqlite plain", SQLite, "cat2", `"cat2"`},
		{"sqlite embedded quote", SQLite, `a"b"c`, `"a""b""c"`},
		{"sqlite empty", SQLite, "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.Quote(tt.input))
		})
	}
}

func TestDialect_QuoteSafe(t *testing.T) {
	valid := map[Dialect]string{
		MySQL:    "`overall_grade_2`",
		Postgres: `"overall_grade_2"`,
		SQLite:   `"overall_grade_2"`,
	}
	for d, expected := range valid {
		t.Run(string(d), func(t *testing.T) {
			q, err := d.QuoteSafe("overall_grade_2")
			require.NoError(t, err)
			assert.Equal(t, expected, q)

			for _, bad := range []string{
				"",
				"school x",
				"env-grade",
				"cat.1",
				`x"; DROP TABLE school; --`,
				"x`; DROP TABLE school; --",
				"catégorie",
			} {
				_, err := d.QuoteSafe(bad)
				var ie *InvalidIdentifierError
				require.ErrorAs(t, err, &ie, "input %q", bad)
				assert.Equal(t, bad, ie.Name)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"school", true},
		{"CAT_1", true},
		{"2024_grades", true},
		{"_", true},
		{"", false},
		{"my table", false},
		{"my$col", false},
		{"col;", false},
		{"tab\tle", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidIdentifier(tt.input))
		})
	}
}

func TestInvalidIdentifierError(t *testing.T) {
	err := &InvalidIdentifierError{Name: "bad name"}
	assert.Contains(t, err.Error(), "invalid identifier: bad name")
	assert.Contains(t, err.Error(), "alphanumeric")
}

func TestDialect_Placeholders(t *testing.T) {
	assert.Equal(t, "?", MySQL.Placeholder(3))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?, ?, ?", SQLite.Placeholders(1, 3))
	assert.Equal(t, "$4, $5", Postgres.Placeholders(4, 2))
	assert.Equal(t, "", MySQL.Placeholders(1, 0))
}
