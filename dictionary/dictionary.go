// Package dictionary provides the English → Malay phrase tables consumed
// by the translator.
//
// A Map is built once (from the built-in word bank, YAML or PO files) and
// then only read, so it is safe for concurrent lookups. Keys are stored
// lowercased and trimmed; Lookup expects callers to pass keys in that form.
package dictionary

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SourceBuiltin names entries that come from the built-in word bank.
const SourceBuiltin = "builtin"

// Entry is one phrase pair together with the file it came from.
type Entry struct {
	English string `json:"english" yaml:"english"`
	Malay   string `json:"malay" yaml:"malay"`
	Source  string `json:"source" yaml:"source"`
}

// Map is a phrase dictionary.
type Map struct {
	entries map[string]Entry
}

// New returns an empty dictionary.
func New() *Map {
	return &Map{entries: make(map[string]Entry)}
}

// FromPairs builds a dictionary from english → malay pairs.
func FromPairs(pairs map[string]string, source string) *Map {
	m := New()
	for en, ms := range pairs {
		m.Add(en, ms, source)
	}
	return m
}

// Add inserts or replaces a pair. Empty keys or values are ignored.
func (m *Map) Add(english, malay, source string) {
	key := NormalizeKey(english)
	malay = strings.TrimSpace(malay)
	if key == "" || malay == "" {
		return
	}
	m.entries[key] = Entry{English: key, Malay: malay, Source: source}
}

// Lookup returns the translation for phrase.
func (m *Map) Lookup(phrase string) (string, bool) {
	e, ok := m.entries[phrase]
	return e.Malay, ok
}

// Entry returns the full entry for phrase.
func (m *Map) Entry(phrase string) (Entry, bool) {
	e, ok := m.entries[NormalizeKey(phrase)]
	return e, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns all entries sorted by English key.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].English < out[j].English })
	return out
}

// Pairs returns the entries as ordered [english, malay] pairs.
func (m *Map) Pairs() [][2]string {
	entries := m.Entries()
	out := make([][2]string, len(entries))
	for i, e := range entries {
		out[i] = [2]string{e.English, e.Malay}
	}
	return out
}

// Merge copies every entry of other into m; entries of other win.
// It returns the keys that were overridden.
func (m *Map) Merge(other *Map) []string {
	var overridden []string
	for k, e := range other.entries {
		if _, ok := m.entries[k]; ok {
			overridden = append(overridden, k)
		}
		m.entries[k] = e
	}
	sort.Strings(overridden)
	return overridden
}

// Sources returns the distinct sources in the dictionary with their entry counts.
func (m *Map) Sources() map[string]int {
	out := make(map[string]int)
	for _, e := range m.entries {
		out[e.Source]++
	}
	return out
}

// NormalizeKey lowercases and trims a phrase the same way the translator
// normalizes its input.
func NormalizeKey(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
