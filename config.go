package headless

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the top level library configuration.
type Config struct {
	// DefaultLocale is the canonical code of the locale that never carries a
	// URL prefix, e.g. "en-US".
	DefaultLocale string

	Locales    LocalesConfig
	Content    ContentConfig
	Redirects  RedirectsConfig
	Navigation NavigationConfig
	Logging    LoggingConfig
}

// LocalesConfig tunes the locale registry.
type LocalesConfig struct {
	// Collection is the store collection holding the language list.
	Collection string
	// AllowAmbiguousShortCodes keeps last-wins mapping when two locales
	// reduce to the same URL prefix instead of rejecting the registry.
	AllowAmbiguousShortCodes bool
}

// ContentConfig tunes the assembly pipeline.
type ContentConfig struct {
	PagesCollection      string
	PostsCollection      string
	GlobalsCollection    string
	NavigationCollection string
	// ListingLimit is the page size for listing blocks without one.
	ListingLimit int
	// RenderMarkdown converts rich-text block content from Markdown to HTML.
	RenderMarkdown bool
	// ValidateBlocks checks block payloads against their JSON schemas and
	// demotes invalid blocks to unsupported.
	ValidateBlocks bool
	// TranslationMetaFields overrides the fields a translation entry can
	// never overwrite. Routing fields stay excluded regardless.
	TranslationMetaFields []string
}

// RedirectsConfig tunes redirect loading.
type RedirectsConfig struct {
	Collection string
}

// NavigationConfig tunes link resolution.
type NavigationConfig struct {
	// Group is the go-urlkit route group for link templates.
	Group string
	// LocaleGroups maps locale short codes to route sub-groups.
	LocaleGroups map[string]string
	// PostRoute is the template name used for post links.
	PostRoute string
}

// LoggingConfig configures the default go-logger provider. Ignored when a
// provider is injected through WithLoggerProvider.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var (
	validLogLevels  = []any{"trace", "debug", "info", "warn", "warning", "error", "fatal"}
	validLogFormats = []any{"json", "console", "pretty", "text"}
)

// DefaultConfig returns a configuration that works against a conventional
// schema with English defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "en-US",
		Locales: LocalesConfig{
			Collection: "languages",
		},
		Content: ContentConfig{
			PagesCollection:      "pages",
			PostsCollection:      "posts",
			GlobalsCollection:    "globals",
			NavigationCollection: "navigation",
			ListingLimit:         6,
		},
		Redirects: RedirectsConfig{
			Collection: "redirects",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports configuration problems as a field-keyed error map.
func (c Config) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(c.DefaultLocale, validation.Required); err != nil {
		errs["default_locale"] = validation.NewError("validation_default_locale_required", "default locale is required")
	}
	if c.Content.ListingLimit < 0 {
		errs["content.listing_limit"] = validation.NewError("validation_listing_limit_invalid", "listing limit must not be negative")
	}
	if c.Logging.Level != "" {
		if err := validation.Validate(c.Logging.Level, validation.In(validLogLevels...)); err != nil {
			errs["logging.level"] = validation.NewError("validation_logging_level_invalid", "unknown logging level")
		}
	}
	if c.Logging.Format != "" {
		if err := validation.Validate(c.Logging.Format, validation.In(validLogFormats...)); err != nil {
			errs["logging.format"] = validation.NewError("validation_logging_format_invalid", "unknown logging format")
		}
	}
	return errs.Filter()
}
