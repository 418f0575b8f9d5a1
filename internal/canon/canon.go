// Package canon maps raw scraped team labels to the canonical labels used in
// player identity keys.
//
// The same Table must be used when rosters are ingested and when box scores
// are reconciled, otherwise identity lookups silently miss.
package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultAliases lists the irregular labels whose generic transform would not
// produce the canonical name.
var DefaultAliases = map[string]string{
	"connecticut":           "UConn",
	"texas-christian":       "TCU",
	"saint-marys-ca":        "Saint Mary's",
	"college-of-charleston": "Charleston",
}

// Table is an immutable alias table. The zero value canonicalizes with the
// generic transform only.
type Table struct {
	aliases   map[string]string
	canonical map[string]struct{}
}

// NewTable builds a Table from raw->canonical aliases. The map is copied.
func NewTable(aliases map[string]string) *Table {
	t := &Table{
		aliases:   make(map[string]string, len(aliases)),
		canonical: make(map[string]struct{}, len(aliases)),
	}
	for raw, label := range aliases {
		t.aliases[normalizeKey(raw)] = label
		t.canonical[label] = struct{}{}
	}
	return t
}

// Default returns a Table over DefaultAliases
func Default() *Table {
	return NewTable(DefaultAliases)
}

// With returns a new Table containing t's aliases overlaid with extra.
// Entries in extra win.
func (t *Table) With(extra map[string]string) *Table {
	merged := make(map[string]string, len(t.aliasMap())+len(extra))
	for raw, label := range t.aliasMap() {
		merged[raw] = label
	}
	for raw, label := range extra {
		merged[normalizeKey(raw)] = label
	}
	return NewTable(merged)
}

// Canonicalize maps a raw label to its canonical form. Known aliases map to
// their canonical label and labels that already are a canonical alias value
// are returned as is. Slug-shaped labels go through the generic transform
// (hyphens to spaces, title case); display labels such as "LA Clippers" only
// have their whitespace collapsed, so Canonicalize(Canonicalize(x)) equals
// Canonicalize(x).
func (t *Table) Canonicalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if label, ok := t.aliasMap()[normalizeKey(trimmed)]; ok {
		return label
	}
	if t != nil {
		if _, ok := t.canonical[trimmed]; ok {
			return trimmed
		}
	}
	if !slugShaped(trimmed) {
		return strings.Join(strings.Fields(trimmed), " ")
	}
	return generic(trimmed)
}

// Mapped reports whether raw has an explicit alias
func (t *Table) Mapped(raw string) bool {
	_, ok := t.aliasMap()[normalizeKey(raw)]
	return ok
}

// Len returns the number of aliases
func (t *Table) Len() int {
	return len(t.aliasMap())
}

func (t *Table) aliasMap() map[string]string {
	if t == nil {
		return nil
	}
	return t.aliases
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// slugShaped reports whether raw looks like a URL slug: no whitespace and
// either hyphenated or all lower case.
func slugShaped(raw string) bool {
	if raw == "" || strings.ContainsFunc(raw, unicode.IsSpace) {
		return false
	}
	return strings.Contains(raw, "-") || raw == strings.ToLower(raw)
}

func generic(raw string) string {
	spaced := strings.Join(strings.Fields(strings.ReplaceAll(raw, "-", " ")), " ")
	// cases.Caser keeps state, so one per call
	return cases.Title(language.English).String(spaced)
}
