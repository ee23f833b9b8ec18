package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MALAYKIT_SERVER_ADDR.
const EnvPrefix = "MALAYKIT"

// flagBindings maps config keys to the CLI flags that may override them.
var flagBindings = map[string]string{
	"server.addr":     "addr",
	"log.level":       "log-level",
	"log.format":      "log-format",
	"history.enabled": "history",
	"speech.key":      "api-key",
}

// Apply layers command-line flags and MALAYKIT_* environment variables
// over f. Precedence is flag, then environment, then the file, then the
// built-in default. Flags missing from flags are skipped; flags may be nil.
func Apply(f *File, flags *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File values sit in the default layer so env and flags win over them.
	v.SetDefault("target_lang", f.TargetLang)
	v.SetDefault("server.addr", f.Server.Addr)
	v.SetDefault("history.enabled", f.History.Enabled)
	v.SetDefault("history.path", f.History.Path)
	v.SetDefault("speech.endpoint", f.Speech.Endpoint)
	v.SetDefault("speech.language", f.Speech.Language)
	v.SetDefault("speech.sample_rate", f.Speech.SampleRate)
	v.SetDefault("speech.timeout", f.Speech.Timeout)
	v.SetDefault("speech.max_retries", f.Speech.MaxRetries)
	v.SetDefault("speech.key", f.Speech.APIKey)
	v.SetDefault("log.level", f.Log.Level)
	v.SetDefault("log.format", f.Log.Format)

	if flags != nil {
		for key, name := range flagBindings {
			fl := flags.Lookup(name)
			if fl == nil {
				continue
			}
			if err := v.BindPFlag(key, fl); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	f.TargetLang = v.GetString("target_lang")
	f.Server.Addr = v.GetString("server.addr")
	f.History.Enabled = v.GetBool("history.enabled")
	f.History.Path = v.GetString("history.path")
	f.Speech.Endpoint = v.GetString("speech.endpoint")
	f.Speech.Language = v.GetString("speech.language")
	f.Speech.SampleRate = v.GetInt("speech.sample_rate")
	f.Speech.Timeout = v.GetDuration("speech.timeout")
	f.Speech.MaxRetries = v.GetInt("speech.max_retries")
	f.Speech.APIKey = v.GetString("speech.key")
	f.Log.Level = v.GetString("log.level")
	f.Log.Format = v.GetString("log.format")

	return f.Validate()
}
