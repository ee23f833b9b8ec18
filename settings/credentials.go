// Package settings provides storage for malaykit user settings.
//
// All settings are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/malaykit/  (default: ~/.local/share/malaykit/)
//
// Files stored:
//   - auth.json   : API keys for external services, keyed by provider ID
//   - history.db  : translation history (see package history)
//
// File permissions of auth.json are 0600 (owner read/write only).
//
// Lookup order for the speech API key:
//  1. --api-key flag (highest priority)
//  2. MALAYKIT_SPEECH_KEY environment variable
//  3. This credential store
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

const (
	dataDirName     = "malaykit"
	fileName        = "auth.json"
	historyFileName = "history.db"
)

// ProviderSpeech is the provider ID of the speech-to-text service.
const ProviderSpeech = "speech"

// Info is the entry stored per provider in auth.json.
type Info struct {
	// Type is always "api" for now.
	Type string `json:"type"`
	Key  string `json:"key"`
	// Endpoint optionally pins the key to a non-default service URL.
	Endpoint string `json:"endpoint,omitempty"`
}

// IsAPI returns true if this is an API key entry.
func (i *Info) IsAPI() bool {
	return i.Type == "api"
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File paths
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for malaykit.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the malaykit data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// HistoryPath returns the default history database path.
func HistoryPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, historyFileName), nil
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}
	if store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the auth entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// SetAPIKey stores an API key for a provider (upsert).
func SetAPIKey(providerID, key string) error {
	store := Load()
	store[providerID] = &Info{Type: "api", Key: key}
	return Save(store)
}

// GetAPIKey retrieves the stored API key for a provider.
// Returns empty string if not found or not an API key entry.
func GetAPIKey(providerID string) string {
	info := Get(providerID)
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// EnvVarForProvider returns the environment variable that holds the API
// key for a provider, or "" when the provider has none.
func EnvVarForProvider(providerID string) string {
	switch providerID {
	case ProviderSpeech:
		return "MALAYKIT_SPEECH_KEY"
	}
	return ""
}

// ResolveAPIKey returns the API key for a provider: flagValue when set,
// then the provider's environment variable, then the credential store.
func ResolveAPIKey(providerID, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := EnvVarForProvider(providerID); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return GetAPIKey(providerID)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
