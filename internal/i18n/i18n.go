// Package i18n provides internationalization support for parley.
//
// Usage:
//
//	i18n.Init("en")                                       // at startup
//	i18n.T("transcript.follow", "follow")                 // simple string
//	i18n.Tf("picker.empty", "No transcripts in %s", dir)  // with fmt args
//	i18n.Tn("picker.turns", "{{.Count}} turn", "{{.Count}} turns", n)
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	mu        sync.RWMutex
)

// Init loads the embedded locales and activates lang. Unknown languages
// fall back to English. Safe to call again after a config reload.
func Init(lang string) {
	mu.Lock()
	defer mu.Unlock()

	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		_, _ = bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang, "en")
}

// T returns the localized string for id. The defaultMsg is the English
// text and the fallback when no translation exists.
func T(id string, defaultMsg string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return defaultMsg
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: defaultMsg,
		},
	})
	if err != nil {
		return defaultMsg
	}
	return s
}

// Tf localizes id and then applies fmt.Sprintf-style args.
func Tf(id string, defaultMsg string, args ...any) string {
	return fmt.Sprintf(T(id, defaultMsg), args...)
}

// Tn localizes id with pluralization. one/other use go template syntax
// with {{.Count}}.
func Tn(id string, one string, other string, count int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return pluralFallback(one, other, count)
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			One:   one,
			Other: other,
		},
		PluralCount:  count,
		TemplateData: map[string]int{"Count": count},
	})
	if err != nil {
		return pluralFallback(one, other, count)
	}
	return s
}

func pluralFallback(one, other string, count int) string {
	msg := other
	if count == 1 {
		msg = one
	}
	return strings.ReplaceAll(msg, "{{.Count}}", strconv.Itoa(count))
}

// ResolveLocale determines the active locale.
// Priority: PARLEY_LANG > configLang > LC_ALL/LANG > "en".
func ResolveLocale(configLang string) string {
	if v := os.Getenv("PARLEY_LANG"); v != "" {
		return v
	}
	if configLang != "" {
		return configLang
	}
	if v := os.Getenv("LC_ALL"); v != "" {
		return normalizeLocale(v)
	}
	if v := os.Getenv("LANG"); v != "" {
		return normalizeLocale(v)
	}
	return "en"
}

// normalizeLocale converts POSIX locale format to BCP 47,
// e.g. "es_MX.UTF-8" -> "es-MX".
func normalizeLocale(posix string) string {
	if i := strings.IndexByte(posix, '.'); i >= 0 {
		posix = posix[:i]
	}
	return strings.ReplaceAll(posix, "_", "-")
}
