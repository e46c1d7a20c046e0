// Package query canonicalizes raw search input into the lookup key used for
// every backend call and every history entry.
package query

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// ErrEmptyQuery is returned when the input is empty after trimming.
var ErrEmptyQuery = errors.New("query must not be empty")

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Normalize trims raw and applies the role's casing convention. Actor names
// are capitalized word by word; movie titles pass through unchanged.
func Normalize(raw string, role models.Role) (models.Query, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.Query{}, ErrEmptyQuery
	}
	if role == models.RoleSubject {
		text = capitalizeWords(text)
	}
	return models.Query{Text: text, Role: role}, nil
}

// Key returns the string identity of q used for deduplication.
func Key(q models.Query) string {
	return string(q.Role) + "|" + q.Text
}

// capitalizeWords uppercases the first letter of each whitespace-delimited
// token and lowercases the rest. Tokens are re-joined by a single space.
func capitalizeWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		_, size := utf8.DecodeRuneInString(f)
		fields[i] = upper.String(f[:size]) + lower.String(f[size:])
	}
	return strings.Join(fields, " ")
}
