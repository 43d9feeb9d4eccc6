// Package i18n looks up user-facing strings in a message catalog. Strings that
// have no translation for the user's language fall back to the default given
// at the call site.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var messages = catalog.NewBuilder(catalog.Fallback(language.English))

// Register adds a translation of key for tag.
func Register(tag language.Tag, key, msg string) error {
	return messages.SetString(tag, key, msg)
}

// T translates key into the user's language, or returns defaultValue.
func T(key string, defaultValue string) string {
	p := message.NewPrinter(userLanguage(), message.Catalog(messages))
	if s := p.Sprintf(key); s != key {
		return s
	}
	return defaultValue
}

// userLanguage reads POWEROPS_LANG, then the POSIX locale variables.
func userLanguage() language.Tag {
	for _, env := range []string{"POWEROPS_LANG", "LC_ALL", "LANG"} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		if tag, err := language.Parse(strings.ReplaceAll(v, "_", "-")); err == nil {
			return tag
		}
	}
	return language.English
}
