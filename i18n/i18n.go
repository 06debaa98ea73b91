// Package i18n holds the English and Japanese message catalog used for every
// user-facing string the bot produces.
//
// Messages are addressed by stable keys (e.g. "session_not_found") and
// formatted through golang.org/x/text/message printers, so callers never
// branch on language themselves:
//
//	i18n.Sprintf(isJa, "race_not_found", 3)
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	builder  = catalog.NewBuilder(catalog.Fallback(language.English))
	english  *message.Printer
	japanese *message.Printer
)

func init() {
	for key, m := range messages {
		if err := builder.SetString(language.English, key, m.en); err != nil {
			panic("i18n: " + key + ": " + err.Error())
		}
		ja := m.ja
		if ja == "" {
			ja = m.en
		}
		if err := builder.SetString(language.Japanese, key, ja); err != nil {
			panic("i18n: " + key + ": " + err.Error())
		}
	}
	english = message.NewPrinter(language.English, message.Catalog(builder))
	japanese = message.NewPrinter(language.Japanese, message.Catalog(builder))
}

// Tag returns the language tag for the display language flag.
func Tag(isJa bool) language.Tag {
	if isJa {
		return language.Japanese
	}
	return language.English
}

// Printer returns the shared printer for the display language.
func Printer(isJa bool) *message.Printer {
	if isJa {
		return japanese
	}
	return english
}

// Sprintf formats the message stored under key.
// Unknown keys are formatted as-is.
func Sprintf(isJa bool, key string, args ...any) string {
	return Printer(isJa).Sprintf(key, args...)
}

// Has reports whether key is part of the catalog.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}

// IsJapaneseLocale reports whether a chat-platform locale string (e.g. "ja",
// "ja-JP") selects Japanese.
func IsJapaneseLocale(locale string) bool {
	if locale == "" {
		return false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	jaBase, _ := language.Japanese.Base()
	return base == jaBase
}
