// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

// Catalog renders error codes into user-facing messages for one locale.
type Catalog struct {
	locale  string
	printer *message.Printer
}

var (
	supported = []language.Tag{
		language.AmericanEnglish,
		language.BrazilianPortuguese,
	}
	matcher = language.NewMatcher(supported)

	builder = newBuilder()

	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	for code, msg := range enUSMessages {
		_ = b.SetString(language.AmericanEnglish, code, msg)
	}
	for code, msg := range ptBRMessages {
		_ = b.SetString(language.BrazilianPortuguese, code, msg)
	}
	return b
}

// MatchLocale picks the best supported locale for the given preferences.
//
// Each preference may be a single tag ("pt-BR") or a full Accept-Language
// header value. Preferences are tried in order; the first one that matches a
// supported locale wins. It returns fallback when nothing matches.
func MatchLocale(fallback string, preferences ...string) string {
	for _, preference := range preferences {
		preference = strings.TrimSpace(preference)
		if preference == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(preference)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, index, confidence := matcher.Match(tags...)
		if confidence == language.No {
			continue
		}
		return supported[index].String()
	}
	return fallback
}

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not supported.
func GetCatalog(locale string) *Catalog {
	resolved := MatchLocale(BaseLocale, locale)

	catalogsMu.RLock()
	cached, ok := catalogs[resolved]
	catalogsMu.RUnlock()
	if ok {
		return cached
	}

	tag := language.Make(resolved)
	built := &Catalog{
		locale:  resolved,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}

	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	catalogs[resolved] = built
	return built
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil/empty metadata to ensure
// consistent output (template variables without metadata render as empty).
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl := c.printer.Sprintf(message.Key(code, code))
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
