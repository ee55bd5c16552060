package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeHeader lowercases and trims header or key text for fuzzy comparison.
func NormalizeHeader(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Cell returns the trimmed cell at idx, or "" when idx is unresolved or past the row end.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// SplitAny splits on any rune in seps, trims pieces and drops empty ones.
func SplitAny(input, seps string) []string {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TitleWords upper-cases the first letter of each space-separated word and
// lower-cases the rest, so "winston-salem" becomes "Winston-salem". Runs of
// spaces are kept as they are.
func TitleWords(input string) string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	words := strings.Split(input, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// TrimTrailingEmpty drops trailing empty cells from each row and trailing empty rows.
func TrimTrailingEmpty(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		end := len(row)
		for end > 0 && strings.TrimSpace(row[end-1]) == "" {
			end--
		}
		out = append(out, row[:end])
	}
	end := len(out)
	for end > 0 && len(out[end-1]) == 0 {
		end--
	}
	return out[:end]
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
