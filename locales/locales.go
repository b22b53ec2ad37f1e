// Package locales provides the locale registry and URL locale resolution for
// multi-language sites. A registry holds the supported locales with their
// URL-facing short codes and text directions; the resolver maps request paths
// to locales and back.
package locales

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/goliatone/go-headless/internal/identity"
)

// Direction is the text direction of a locale.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// Locale describes one supported language.
type Locale struct {
	// ID is a deterministic identifier derived from Code.
	ID uuid.UUID
	// Code is the canonical full code, usually region qualified, e.g. "en-US".
	Code string
	// Short is the URL-facing prefix derived from Code, e.g. "en".
	Short string
	// Name is the human readable label, when the source provides one.
	Name string
	// Direction is the text direction. Empty is treated as ltr.
	Direction Direction
}

// ShortCode derives the URL prefix for a full locale code: the base language
// subtag, lower-cased. Codes BCP 47 cannot parse fall back to the portion
// before the first region separator.
func ShortCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return strings.ToLower(base.String())
		}
	}
	if cut := strings.IndexAny(code, "-_"); cut > 0 {
		code = code[:cut]
	}
	return strings.ToLower(code)
}

var rtlBases = map[string]struct{}{
	"ar": {},
	"fa": {},
	"he": {},
	"ur": {},
}

func defaultDirection(short string) Direction {
	if _, ok := rtlBases[short]; ok {
		return DirectionRTL
	}
	return DirectionLTR
}

// FallbackLocales is the hard-coded table used when the content store has not
// been consulted yet (or could not be). It covers the common region-qualified
// codes so locale resolution never hard-fails.
func FallbackLocales() []Locale {
	codes := []string{"ar-SA", "de-DE", "en-US", "es-ES", "fr-FR", "it-IT", "pt-BR", "ru-RU"}
	out := make([]Locale, 0, len(codes))
	for _, code := range codes {
		out = append(out, normalize(Locale{Code: code}))
	}
	return out
}

func normalize(loc Locale) Locale {
	loc.Code = strings.TrimSpace(loc.Code)
	if loc.Short == "" {
		loc.Short = ShortCode(loc.Code)
	}
	loc.Short = strings.ToLower(strings.TrimSpace(loc.Short))
	if loc.Direction == "" {
		loc.Direction = defaultDirection(loc.Short)
	}
	if loc.ID == uuid.Nil {
		loc.ID = identity.LocaleUUID(loc.Code)
	}
	return loc
}
