// Package normalizer handles text cleanup for record fields.
package normalizer

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ListSeparator separates values inside one multi-valued source field.
const ListSeparator = ";"

// clozePattern matches {{key::content}} and {{key::content::hint}}.
// Content may span lines.
var clozePattern = regexp.MustCompile(`\{\{([^{}:]+)::([^{}]*)\}\}`)

// Text trims surrounding whitespace and composes the string to NFC so
// that visually identical phrases produce identical aggregate keys.
func Text(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SplitList splits a ";"-separated field, normalizes each piece and drops
// blanks. Order of occurrence is preserved and duplicates are kept.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, piece := range strings.Split(s, ListSeparator) {
		if piece = Text(piece); piece != "" {
			result = append(result, piece)
		}
	}
	return result
}

// Cloze rewrites {{key::content}} to {{key::content::value}} for every key
// that has a translation. Keys are matched case-insensitively; markers
// without a translation, or already carrying a hint, are left untouched.
func Cloze(text string, translations map[string]string) string {
	if text == "" || len(translations) == 0 {
		return text
	}

	keys := make([]string, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lookup := make(map[string]string, len(keys))
	for _, k := range keys {
		folded := strings.ToLower(strings.TrimSpace(k))
		if _, seen := lookup[folded]; !seen {
			lookup[folded] = translations[k]
		}
	}

	return clozePattern.ReplaceAllStringFunc(text, func(marker string) string {
		m := clozePattern.FindStringSubmatch(marker)
		if strings.Contains(m[2], "::") {
			return marker
		}
		value, ok := lookup[strings.ToLower(strings.TrimSpace(m[1]))]
		if !ok {
			return marker
		}
		return "{{" + m[1] + "::" + m[2] + "::" + value + "}}"
	})
}

// Sanitize replaces tabs and line breaks with single spaces so a value fits
// in one cell of a tab-separated row.
func Sanitize(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\t' || r == '\r' || r == '\n'
	}), " ")
}
