package locales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/pkg/interfaces"
	"github.com/goliatone/go-headless/store"
)

// DefaultCollection is the content-store collection holding the language list.
const DefaultCollection = "languages"

var (
	// ErrDefaultLocaleRequired is returned when a registry is built without a
	// default locale code.
	ErrDefaultLocaleRequired = errors.New("locales: default locale is required")
	// ErrAmbiguousShortCode is returned when two registered locales reduce to
	// the same URL prefix and the registry was not configured to tolerate it.
	ErrAmbiguousShortCode = errors.New("locales: ambiguous short code")
)

// Registry is the immutable set of supported locales with derived lookup
// maps. Build it once per process (or per request) and share it freely; it is
// read-only after construction.
type Registry struct {
	def      Locale
	locales  []Locale
	byShort  map[string]Locale
	byCode   map[string]Locale
	degraded bool
}

// Option configures registry construction.
type Option func(*registryOptions)

type registryOptions struct {
	allowAmbiguous bool
}

// WithAllowAmbiguousShortCodes keeps last-wins behavior when two locales
// collapse to the same short code instead of rejecting the configuration.
func WithAllowAmbiguousShortCodes() Option {
	return func(o *registryOptions) {
		o.allowAmbiguous = true
	}
}

// NewRegistry builds a registry from a locale list. The default locale is
// identified by code (full or short form) and is added when the list does not
// already contain it.
func NewRegistry(defaultCode string, list []Locale, opts ...Option) (*Registry, error) {
	defaultCode = strings.TrimSpace(defaultCode)
	if defaultCode == "" {
		return nil, ErrDefaultLocaleRequired
	}
	var options registryOptions
	for _, opt := range opts {
		opt(&options)
	}

	reg := &Registry{
		byShort: map[string]Locale{},
		byCode:  map[string]Locale{},
	}
	for _, loc := range list {
		loc = normalize(loc)
		if loc.Code == "" {
			continue
		}
		if prev, ok := reg.byShort[loc.Short]; ok && !strings.EqualFold(prev.Code, loc.Code) {
			if !options.allowAmbiguous {
				return nil, fmt.Errorf("%w: %q maps to both %s and %s", ErrAmbiguousShortCode, loc.Short, prev.Code, loc.Code)
			}
		}
		if _, seen := reg.byCode[strings.ToLower(loc.Code)]; !seen {
			reg.locales = append(reg.locales, loc)
		}
		reg.byShort[loc.Short] = loc
		reg.byCode[strings.ToLower(loc.Code)] = loc
	}

	def, ok := reg.lookup(defaultCode)
	if !ok {
		def = normalize(Locale{Code: defaultCode})
		reg.locales = append(reg.locales, def)
		reg.byShort[def.Short] = def
		reg.byCode[strings.ToLower(def.Code)] = def
	}
	reg.def = def
	return reg, nil
}

// NewDefaultOnly builds the degraded single-locale registry used when the
// language list cannot be fetched. Resolution keeps working with the default
// locale and ltr direction.
func NewDefaultOnly(defaultCode string) (*Registry, error) {
	reg, err := NewRegistry(defaultCode, nil)
	if err != nil {
		return nil, err
	}
	reg.degraded = true
	return reg, nil
}

// NewFallback builds a registry from the static fallback table. Useful in
// middleware that must resolve locales before any store round trip.
func NewFallback(defaultCode string) (*Registry, error) {
	return NewRegistry(defaultCode, FallbackLocales())
}

// Default returns the default locale. It never appears as a URL prefix.
func (r *Registry) Default() Locale {
	return r.def
}

// Locales returns the registered locales in registration order.
func (r *Registry) Locales() []Locale {
	out := make([]Locale, len(r.locales))
	copy(out, r.locales)
	return out
}

// Degraded reports whether this registry is the fetch-failure fallback.
func (r *Registry) Degraded() bool {
	return r.degraded
}

// Lookup resolves a full or short locale code, case-insensitively.
func (r *Registry) Lookup(code string) (Locale, bool) {
	return r.lookup(code)
}

func (r *Registry) lookup(code string) (Locale, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Locale{}, false
	}
	if loc, ok := r.byCode[code]; ok {
		return loc, true
	}
	loc, ok := r.byShort[code]
	return loc, ok
}

// ByShort resolves a URL prefix to its locale.
func (r *Registry) ByShort(short string) (Locale, bool) {
	loc, ok := r.byShort[strings.ToLower(strings.TrimSpace(short))]
	return loc, ok
}

// IsDefault reports whether code identifies the default locale.
func (r *Registry) IsDefault(code string) bool {
	loc, ok := r.lookup(code)
	return ok && strings.EqualFold(loc.Code, r.def.Code)
}

// LocaleMap returns the derived short-code to full-code map.
func (r *Registry) LocaleMap() map[string]string {
	out := make(map[string]string, len(r.byShort))
	for short, loc := range r.byShort {
		out[short] = loc.Code
	}
	return out
}

// DirectionMap returns the derived full-code to direction map.
func (r *Registry) DirectionMap() map[string]Direction {
	out := make(map[string]Direction, len(r.locales))
	for _, loc := range r.locales {
		out[loc.Code] = loc.Direction
	}
	return out
}

// Direction returns the text direction for a locale code, defaulting to ltr.
func (r *Registry) Direction(code string) Direction {
	if loc, ok := r.lookup(code); ok {
		return loc.Direction
	}
	return DirectionLTR
}

// LoaderConfig configures a registry loader.
type LoaderConfig struct {
	Store store.Store
	// Collection overrides the source collection. Defaults to "languages".
	Collection string
	// DefaultLocale is the full code of the default locale.
	DefaultLocale string
	// AllowAmbiguousShortCodes keeps last-wins mapping on short-code clashes.
	AllowAmbiguousShortCodes bool
	Logger                   interfaces.Logger
}

// Loader builds registries from the content store.
type Loader struct {
	store          store.Store
	collection     string
	defaultLocale  string
	allowAmbiguous bool
	logger         interfaces.Logger
}

// NewLoader validates the config and returns a loader.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.Store == nil {
		return nil, errors.New("locales: store is required")
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return nil, ErrDefaultLocaleRequired
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{
		store:          cfg.Store,
		collection:     collection,
		defaultLocale:  cfg.DefaultLocale,
		allowAmbiguous: cfg.AllowAmbiguousShortCodes,
		logger:         logger,
	}, nil
}

// Load fetches the language list sorted by code and builds a registry. A
// store failure degrades to the default-only registry instead of failing the
// request; an ambiguous short-code configuration is still rejected because it
// is a data problem, not an availability problem.
func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	rows, err := l.store.QueryByFilter(ctx, l.collection, store.Query{
		Sort: []string{"code"},
	})
	if err != nil {
		l.logger.Warn("locales.registry.degraded",
			"collection", l.collection,
			"default", l.defaultLocale,
			"error", err,
		)
		return NewDefaultOnly(l.defaultLocale)
	}

	list := make([]Locale, 0, len(rows))
	for _, row := range rows {
		code, _ := row["code"].(string)
		if strings.TrimSpace(code) == "" {
			continue
		}
		loc := Locale{Code: code}
		if name, ok := row["name"].(string); ok {
			loc.Name = name
		}
		if dir, ok := row["direction"].(string); ok {
			loc.Direction = Direction(strings.ToLower(dir))
		}
		list = append(list, loc)
	}

	var opts []Option
	if l.allowAmbiguous {
		opts = append(opts, WithAllowAmbiguousShortCodes())
	}
	return NewRegistry(l.defaultLocale, list, opts...)
}
