package dictionary

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/minios-linux/malaykit/pofile"
	"github.com/minios-linux/malaykit/yamlfile"
)

// Dictionary file formats.
const (
	FormatYAML = "yaml"
	FormatPO   = "po"
)

// ErrUnknownFormat is returned when a file format cannot be determined.
var ErrUnknownFormat = errors.New("unknown dictionary format")

// Source describes one dictionary file to load.
type Source struct {
	Path   string
	Format string // FormatYAML or FormatPO; inferred from the extension when empty
}

// DetectFormat infers the format of path from its extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".po":
		return FormatPO, nil
	}
	return "", fmt.Errorf("%s: %w (use .yaml, .yml or .po)", path, ErrUnknownFormat)
}

// LoadFile reads one dictionary file.
func LoadFile(src Source) (*Map, error) {
	format := src.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(src.Path); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatYAML:
		f, err := yamlfile.ParseFile(src.Path)
		if err != nil {
			return nil, err
		}
		return FromPairs(f.Pairs(), src.Path), nil

	case FormatPO:
		f, err := pofile.ParseFile(src.Path)
		if err != nil {
			return nil, err
		}
		m := New()
		for _, e := range f.Entries {
			if e.Usable() {
				m.Add(e.MsgID, e.MsgStr, src.Path)
			}
		}
		return m, nil
	}
	return nil, fmt.Errorf("%s: %w %q", src.Path, ErrUnknownFormat, format)
}

// Layer is the outcome of merging one source into a Build result.
type Layer struct {
	Source     string
	Entries    int
	Overridden []string
}

// Build assembles a dictionary from the built-in word bank (when builtin is
// true) followed by sources in order. Later layers override earlier ones.
func Build(builtin bool, sources []Source) (*Map, []Layer, error) {
	m := New()
	var layers []Layer
	if builtin {
		b := Builtin()
		m.Merge(b)
		layers = append(layers, Layer{Source: SourceBuiltin, Entries: b.Len()})
	}
	for _, src := range sources {
		d, err := LoadFile(src)
		if err != nil {
			return nil, nil, err
		}
		layers = append(layers, Layer{Source: src.Path, Entries: d.Len(), Overridden: m.Merge(d)})
	}
	return m, layers, nil
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// Export writes m in the given format.
func Export(w io.Writer, m *Map, format, lang string) error {
	switch format {
	case FormatYAML:
		f := yamlfile.NewFile()
		for _, e := range m.Entries() {
			f.Set("", e.English, e.Malay, 0)
		}
		data, err := f.Marshal()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	case FormatPO:
		return pofile.NewDictionary(lang, m.Pairs()).Write(w)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}
