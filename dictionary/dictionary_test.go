package dictionary

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuiltin(t *testing.T) {
	m := Builtin()
	if m.Len() != 20 {
		t.Fatalf("Builtin().Len() = %d, want 20", m.Len())
	}
	cases := map[string]string{
		"thank you":   "terima kasih",
		"love":        "cinta",
		"how are you": "apa khabar",
		"goodbye":     "selamat tinggal",
	}
	for en, want := range cases {
		if got, ok := m.Lookup(en); !ok || got != want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q", en, got, ok, want)
		}
	}
	if _, ok := m.Lookup("i"); ok {
		t.Fatal("\"i\" must not be in the word bank")
	}

	// Each call returns an independent copy.
	m.Add("banana", "pisang", "test")
	if _, ok := Builtin().Lookup("banana"); ok {
		t.Fatal("Builtin() shares state between calls")
	}
}

func TestAddNormalizes(t *testing.T) {
	m := New()
	m.Add("  Good Night ", " selamat malam ", "test")
	m.Add("", "kosong", "test")
	m.Add("empty", "  ", "test")

	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	got, ok := m.Lookup("good night")
	if !ok || got != "selamat malam" {
		t.Fatalf("Lookup(good night) = %q, %v", got, ok)
	}
	if _, ok := m.Lookup("Good Night"); ok {
		t.Fatal("Lookup is exact; callers pass normalized keys")
	}
	if e, ok := m.Entry("GOOD NIGHT"); !ok || e.Source != "test" {
		t.Fatalf("Entry() = %+v, %v", e, ok)
	}
}

func TestMergeLaterWins(t *testing.T) {
	base := FromPairs(map[string]string{"love": "cinta", "car": "kereta"}, "a")
	over := FromPairs(map[string]string{"love": "sayang", "bus": "bas"}, "b")

	overridden := base.Merge(over)
	if !reflect.DeepEqual(overridden, []string{"love"}) {
		t.Fatalf("Merge overridden = %q", overridden)
	}
	if got, _ := base.Lookup("love"); got != "sayang" {
		t.Fatalf("love = %q, want sayang", got)
	}
	if got := base.Sources(); !reflect.DeepEqual(got, map[string]int{"a": 1, "b": 2}) {
		t.Fatalf("Sources() = %v", got)
	}

	entries := base.Entries()
	if len(entries) != 3 || entries[0].English != "bus" || entries[2].English != "love" {
		t.Fatalf("Entries() not sorted: %+v", entries)
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]string{"a.yaml": FormatYAML, "b.YML": FormatYAML, "c.po": FormatPO} {
		got, err := DetectFormat(path)
		if err != nil || got != want {
			t.Fatalf("DetectFormat(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := DetectFormat("d.json"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("DetectFormat(json) error = %v, want ErrUnknownFormat", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestBuildLayers(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "extra.yaml", `greetings:
  good night: selamat malam
nouns:
  water: air minuman
`)
	poPath := writeFile(t, dir, "extra.po", `msgid ""
msgstr ""
"Language: ms\n"

msgid "Water"
msgstr "air"

#, fuzzy
msgid "cat"
msgstr "kucing"

msgid "dog"
msgstr "anjing"
`)

	m, layers, err := Build(true, []Source{{Path: yamlPath}, {Path: poPath, Format: FormatPO}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(layers))
	}
	if layers[0].Source != SourceBuiltin || layers[0].Entries != 20 {
		t.Fatalf("builtin layer = %+v", layers[0])
	}
	if !reflect.DeepEqual(layers[1].Overridden, []string{"water"}) {
		t.Fatalf("yaml layer overridden = %q", layers[1].Overridden)
	}
	if layers[2].Entries != 2 {
		t.Fatalf("po layer entries = %d, want 2 (fuzzy skipped)", layers[2].Entries)
	}

	if got, _ := m.Lookup("water"); got != "air" {
		t.Fatalf("water = %q, want air (po layer wins)", got)
	}
	if got, _ := m.Lookup("good night"); got != "selamat malam" {
		t.Fatalf("good night = %q", got)
	}
	if _, ok := m.Lookup("cat"); ok {
		t.Fatal("fuzzy PO entry must be skipped")
	}
	if m.Len() != 22 {
		t.Fatalf("Len() = %d, want 22", m.Len())
	}
}

func TestBuildWithoutBuiltin(t *testing.T) {
	m, layers, err := Build(false, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if m.Len() != 0 || len(layers) != 0 {
		t.Fatalf("expected empty dictionary, got %d entries, %d layers", m.Len(), len(layers))
	}
}

func TestBuildMissingFile(t *testing.T) {
	_, _, err := Build(true, []Source{{Path: filepath.Join(t.TempDir(), "nope.yaml")}})
	if err == nil || !strings.Contains(err.Error(), "nope.yaml") {
		t.Fatalf("expected error naming the file, got %v", err)
	}
}

func TestExport(t *testing.T) {
	m := FromPairs(map[string]string{"water": "air", "thank you": "terima kasih"}, "test")

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Export(&buf, m, FormatYAML, "ms"); err != nil {
			t.Fatalf("Export error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "thank you: terima kasih") || !strings.Contains(out, "water: air") {
			t.Fatalf("unexpected yaml:\n%s", out)
		}
	})

	t.Run("po", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Export(&buf, m, FormatPO, "ms"); err != nil {
			t.Fatalf("Export error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, `msgid "thank you"`) || !strings.Contains(out, `msgstr "terima kasih"`) {
			t.Fatalf("unexpected po:\n%s", out)
		}
		if !strings.Contains(out, `"Language: ms\n"`) {
			t.Fatalf("missing language header:\n%s", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := Export(&bytes.Buffer{}, m, "csv", "ms"); !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("Export(csv) error = %v", err)
		}
	})
}
