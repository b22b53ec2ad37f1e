// Package i18n implements the translation merge engine: a pure recursive
// merge that folds a record's per-locale translation entries onto the record
// itself, with fallback to the default locale.
package i18n

import "strings"

// TranslationsField is the nested collection holding per-locale overrides.
const TranslationsField = "translations"

// DefaultMetaFields are translation-entry fields that never override the
// parent record. The list is policy, not structure, so it is configurable.
var DefaultMetaFields = []string{
	"id",
	"languages_code",
	"status",
	"date_created",
	"date_updated",
	"user_created",
	"user_updated",
}

// routingFields carry URL identity and stay stable across locales no matter
// how the meta list is configured.
var routingFields = []string{"slug", "permalink"}

// Options tunes merge policy.
type Options struct {
	// MetaFields replaces DefaultMetaFields when non-nil. Routing fields
	// (slug, permalink) are always excluded regardless.
	MetaFields []string
}

// Merger applies translation merges with a fixed policy. The zero value is
// not usable; construct with New.
type Merger struct {
	excluded map[string]struct{}
}

// New builds a merger.
func New(opts Options) *Merger {
	meta := opts.MetaFields
	if meta == nil {
		meta = DefaultMetaFields
	}
	excluded := make(map[string]struct{}, len(meta)+len(routingFields))
	for _, field := range meta {
		excluded[field] = struct{}{}
	}
	for _, field := range routingFields {
		excluded[field] = struct{}{}
	}
	return &Merger{excluded: excluded}
}

var defaultMerger = New(Options{})

// Merge applies the default policy. See Merger.Merge.
func Merge(value any, locale, defaultLocale string) any {
	return defaultMerger.Merge(value, locale, defaultLocale)
}

// Merge walks value and, for every object carrying a translations array,
// overlays the best published translation: the requested locale when present,
// otherwise the default locale, otherwise nothing. The input is never
// mutated; non-object values pass through unchanged. Merging an
// already-merged record is a no-op because the translations field is removed
// from the output.
func (m *Merger) Merge(value any, locale, defaultLocale string) any {
	switch typed := value.(type) {
	case map[string]any:
		return m.mergeObject(typed, locale, defaultLocale)
	case []any:
		out := make([]any, len(typed))
		for i, element := range typed {
			out[i] = m.Merge(element, locale, defaultLocale)
		}
		return out
	default:
		return value
	}
}

// MergeRecord is Merge specialized for top-level records.
func (m *Merger) MergeRecord(record map[string]any, locale, defaultLocale string) map[string]any {
	if record == nil {
		return nil
	}
	merged, _ := m.Merge(record, locale, defaultLocale).(map[string]any)
	return merged
}

func (m *Merger) mergeObject(record map[string]any, locale, defaultLocale string) map[string]any {
	out := make(map[string]any, len(record))
	for key, val := range record {
		if key == TranslationsField {
			continue
		}
		out[key] = m.Merge(val, locale, defaultLocale)
	}

	entries, ok := record[TranslationsField].([]any)
	if !ok {
		return out
	}
	selected := selectTranslation(entries, locale, defaultLocale)
	if selected == nil {
		return out
	}
	for key, val := range selected {
		if _, skip := m.excluded[key]; skip {
			continue
		}
		if val == nil {
			continue
		}
		out[key] = m.Merge(val, locale, defaultLocale)
	}
	return out
}

// selectTranslation picks the first published entry for locale, falling back
// to the first published entry for defaultLocale.
func selectTranslation(entries []any, locale, defaultLocale string) map[string]any {
	var fallback map[string]any
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if status, _ := entry["status"].(string); status != "published" {
			continue
		}
		code := languageCode(entry["languages_code"])
		if code == "" {
			continue
		}
		if strings.EqualFold(code, locale) {
			return entry
		}
		if fallback == nil && strings.EqualFold(code, defaultLocale) {
			fallback = entry
		}
	}
	return fallback
}

// languageCode tolerates the locale tag being a bare string or an expanded
// object carrying a code field. Anything else is treated as non-matching.
func languageCode(tag any) string {
	switch typed := tag.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		if code, ok := typed["code"].(string); ok {
			return strings.TrimSpace(code)
		}
	}
	return ""
}
