// Package yamlfile implements reading and writing of YAML dictionary files.
//
// A dictionary file maps English phrases to Malay translations. Pairs may
// sit at the top level or be grouped one level deep under section names:
//
//	thank you: terima kasih
//	greetings:
//	  hello: helo
//	  good morning: selamat pagi
//	nouns:
//	  water: air
//
// Section names only organize the file; they never become part of a key.
// Keys are stored lowercased and trimmed. Empty values are treated as
// untranslated and skipped by Pairs. Non-string leaves are ignored.
package yamlfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// Entry is one English → Malay pair.
type Entry struct {
	// Section is the grouping key the pair was found under ("" for top level).
	Section string
	// Key is the lowercased English phrase.
	Key string
	// Value is the Malay translation (empty = untranslated).
	Value string
	// Line is the 1-based source line of the key, 0 for entries built in memory.
	Line int
}

// File is a parsed dictionary file.
type File struct {
	entries []Entry
	// index maps key → position in entries; later duplicates replace earlier ones.
	index map[string]int
	// duplicates lists keys defined more than once, in order of redefinition.
	duplicates []string
}

// NewFile returns an empty dictionary file.
func NewFile() *File {
	return &File{index: make(map[string]int)}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a YAML dictionary file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	f := NewFile()

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return f, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("YAML root must be a mapping, got kind %d", root.Kind)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		switch valNode.Kind {
		case yaml.MappingNode:
			if err := f.collectSection(keyNode.Value, valNode); err != nil {
				return nil, err
			}
		case yaml.ScalarNode:
			if isStringScalar(valNode) {
				f.Set("", keyNode.Value, valNode.Value, keyNode.Line)
			}
		}
	}
	return f, nil
}

// collectSection adds the pairs of one grouping section.
func (f *File) collectSection(section string, node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		switch valNode.Kind {
		case yaml.ScalarNode:
			if isStringScalar(valNode) {
				f.Set(section, keyNode.Value, valNode.Value, keyNode.Line)
			}
		case yaml.MappingNode:
			return fmt.Errorf("line %d: section %q: nested section %q is not allowed", keyNode.Line, section, keyNode.Value)
		}
	}
	return nil
}

// isStringScalar reports whether node holds a string (untagged or !!str).
func isStringScalar(node *yaml.Node) bool {
	switch node.Tag {
	case "!!bool", "!!int", "!!float", "!!null":
		return false
	}
	return true
}

// NormalizeKey lowercases and trims an English phrase.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ---------------------------------------------------------------------------
// Querying
// ---------------------------------------------------------------------------

// Set adds or replaces a pair. Replacing an existing key records it as a
// duplicate and moves it to the new section.
func (f *File) Set(section, key, value string, line int) {
	key = NormalizeKey(key)
	if key == "" {
		return
	}
	e := Entry{Section: section, Key: key, Value: strings.TrimSpace(value), Line: line}
	if idx, ok := f.index[key]; ok {
		f.duplicates = append(f.duplicates, key)
		f.entries[idx] = e
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, e)
}

// Get returns the value stored for key.
func (f *File) Get(key string) (string, bool) {
	idx, ok := f.index[NormalizeKey(key)]
	if !ok {
		return "", false
	}
	return f.entries[idx].Value, true
}

// Entries returns all entries in document order.
func (f *File) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Pairs returns key → value for every translated entry.
func (f *File) Pairs() map[string]string {
	m := make(map[string]string, len(f.entries))
	for _, e := range f.entries {
		if e.Value != "" {
			m[e.Key] = e.Value
		}
	}
	return m
}

// UntranslatedKeys returns keys whose value is empty.
func (f *File) UntranslatedKeys() []string {
	var keys []string
	for _, e := range f.entries {
		if e.Value == "" {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Duplicates returns keys that were defined more than once.
func (f *File) Duplicates() []string {
	return append([]string(nil), f.duplicates...)
}

// Stats returns (total, translated).
func (f *File) Stats() (total, translated int) {
	total = len(f.entries)
	for _, e := range f.entries {
		if e.Value != "" {
			translated++
		}
	}
	return total, translated
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serializes the file. Top-level pairs come first, then one mapping
// per section; sections and keys are sorted.
func (f *File) Marshal() ([]byte, error) {
	bySection := make(map[string][]Entry)
	for _, e := range f.entries {
		bySection[e.Section] = append(bySection[e.Section], e)
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	appendPairs(root, bySection[""])

	sections := make([]string, 0, len(bySection))
	for s := range bySection {
		if s != "" {
			sections = append(sections, s)
		}
	}
	sort.Strings(sections)
	for _, s := range sections {
		sec := &yaml.Node{Kind: yaml.MappingNode}
		appendPairs(sec, bySection[s])
		root.Content = append(root.Content, scalar(s), sec)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func appendPairs(node *yaml.Node, entries []Entry) {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for _, e := range sorted {
		v := scalar(e.Value)
		if e.Value == "" {
			v.Style = yaml.DoubleQuotedStyle
		}
		node.Content = append(node.Content, scalar(e.Key), v)
	}
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// WriteFile serializes the file and writes it to path.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
