// Package config handles the .malaykit.yaml project configuration.
//
// The file is optional. When it is missing every setting takes its
// default; when present it is decoded on top of the defaults, so a file
// only needs the keys it changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/malaykit/dictionary"
)

// FileName is the project config file name.
const FileName = ".malaykit.yaml"

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .malaykit.yaml structure.
type File struct {
	// SourceLang is the language translated from (default "en").
	SourceLang string `yaml:"source_lang"`
	// TargetLang is the language translated to (default "ms").
	TargetLang string `yaml:"target_lang"`
	// Builtin includes the built-in word bank below the dictionaries.
	Builtin bool `yaml:"builtin"`
	// Dictionaries are layered in order; later entries win.
	Dictionaries []Dictionary `yaml:"dictionaries,omitempty"`

	Server  Server  `yaml:"server"`
	History History `yaml:"history"`
	Speech  Speech  `yaml:"speech"`
	Log     Log     `yaml:"log"`

	// path is the file this config was read from, empty for defaults.
	path string
}

// Dictionary is one dictionary file reference.
type Dictionary struct {
	Path string `yaml:"path"`
	// Format is "yaml" or "po"; inferred from the extension when empty.
	Format string `yaml:"format,omitempty"`
}

// Server configures `malaykit serve`.
type Server struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// History configures the translation history store.
type History struct {
	Enabled bool `yaml:"enabled"`
	// Path of the SQLite database; empty means the user data directory.
	Path string `yaml:"path,omitempty"`
}

// Speech configures the transcription client.
type Speech struct {
	Endpoint   string        `yaml:"endpoint"`
	Language   string        `yaml:"language"`
	SampleRate int           `yaml:"sample_rate"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// APIKey never comes from the file; see Apply.
	APIKey string `yaml:"-"`
}

// Log configures service logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultSpeechEndpoint is the Google Cloud Speech-to-Text REST endpoint.
const DefaultSpeechEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// Default returns the configuration used when no file exists.
func Default() *File {
	return &File{
		SourceLang: "en",
		TargetLang: "ms",
		Builtin:    true,
		Server: Server{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		History: History{Enabled: true},
		Speech: Speech{
			Endpoint:   DefaultSpeechEndpoint,
			Language:   "en-US",
			SampleRate: 16000,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Log: Log{Level: "info", Format: LogFormatConsole},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .malaykit.yaml from rootDir. A missing file
// yields Default().
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes config data over the defaults and validates it. path is
// used in error messages only.
func Parse(path string, data []byte) (*File, error) {
	f := Default()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the file the config was read from, or "" for defaults.
func (f *File) Path() string {
	return f.path
}

// Validate checks the config for values the rest of malaykit cannot use.
func (f *File) Validate() error {
	name := f.path
	if name == "" {
		name = FileName
	}

	for i, d := range f.Dictionaries {
		if d.Path == "" {
			return fmt.Errorf("%s: dictionary #%d has no path", name, i+1)
		}
		switch d.Format {
		case "", dictionary.FormatYAML, dictionary.FormatPO:
		default:
			return fmt.Errorf("%s: dictionary %q has unknown format %q (valid: yaml, po)", name, d.Path, d.Format)
		}
	}

	switch f.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: unknown log level %q (valid: debug, info, warn, error)", name, f.Log.Level)
	}
	switch f.Log.Format {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("%s: unknown log format %q (valid: console, json)", name, f.Log.Format)
	}

	if f.Speech.Timeout <= 0 {
		return fmt.Errorf("%s: speech timeout must be positive, got %s", name, f.Speech.Timeout)
	}
	if f.Speech.MaxRetries < 0 {
		return fmt.Errorf("%s: speech max_retries must not be negative", name)
	}
	if f.Speech.SampleRate <= 0 {
		return fmt.Errorf("%s: speech sample_rate must be positive", name)
	}
	return nil
}

// Sources converts the dictionary list into loader sources with paths
// resolved against rootDir.
func (f *File) Sources(rootDir string) []dictionary.Source {
	out := make([]dictionary.Source, 0, len(f.Dictionaries))
	for _, d := range f.Dictionaries {
		path := d.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		out = append(out, dictionary.Source{Path: path, Format: d.Format})
	}
	return out
}

// Write saves f as YAML to path.
func (f *File) Write(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
