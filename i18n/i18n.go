// Package i18n translates malaykit's own user interface messages.
//
// Catalogs are gettext PO files embedded under locales/<lang>/LC_MESSAGES/
// and read with gotext. The UI language comes from MALAYKIT_UI_LANG when
// set, otherwise from the usual gettext environment variables. Messages
// without a catalog entry are returned unchanged.
//
//	i18n.Init("")
//	logInfo(i18n.T("Loaded %d dictionary entries. Type %s to quit."), n, ":q")
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const (
	domain = "malaykit"

	// EnvUILang overrides locale detection.
	EnvUILang = "MALAYKIT_UI_LANG"

	fallbackLang = "en"
)

var (
	po      *gotext.Locale
	current = fallbackLang
)

// Init loads the catalog for lang. An empty lang is detected from the
// environment. Languages without a catalog leave every message untranslated.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	current = lang

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the language passed to (or detected by) the last Init.
func Language() string {
	return current
}

// Available lists the languages with an embedded catalog, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// T returns the translation of msgid, or msgid itself.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N is T with plural selection by n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage picks the UI language: EnvUILang first, then
// LANGUAGE > LC_ALL > LC_MESSAGES > LANG as GNU gettext does.
func detectLanguage() string {
	if v := strings.TrimSpace(os.Getenv(EnvUILang)); v != "" {
		return v
	}
	for _, name := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if lang := localeName(os.Getenv(name), name == "LANGUAGE"); lang != "" {
			return lang
		}
	}
	return fallbackLang
}

// localeName strips the encoding from a locale value such as
// "ms_MY.UTF-8". A list value keeps only its first element. "C" and
// "POSIX" mean no translation and yield "".
func localeName(val string, list bool) string {
	if list {
		val, _, _ = strings.Cut(val, ":")
	}
	val, _, _ = strings.Cut(val, ".")
	if val == "C" || val == "POSIX" {
		return ""
	}
	return val
}
