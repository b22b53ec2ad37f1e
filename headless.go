// Package headless resolves, translates, and assembles content for
// multi-language block-based sites backed by a headless content store. The
// root module wires the locale registry, translation merge engine, content
// assembly pipeline, and link resolution behind one facade; the sub-packages
// stay usable on their own.
package headless

import (
	"context"
	"errors"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-headless/assembly"
	"github.com/goliatone/go-headless/blocks"
	"github.com/goliatone/go-headless/editor"
	"github.com/goliatone/go-headless/i18n"
	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/internal/logging/gologger"
	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/navigation"
	"github.com/goliatone/go-headless/pkg/interfaces"
	"github.com/goliatone/go-headless/redirects"
	"github.com/goliatone/go-headless/store"
)

// Re-exported contracts so consumers rarely need the sub-packages directly.
type (
	// Selector identifies requested content.
	Selector = assembly.Selector
	// Record is a generic content record.
	Record = assembly.Record
	// Locale describes one supported language.
	Locale = locales.Locale
	// Resolved is the outcome of locale resolution.
	Resolved = locales.Resolved
	// Block is one entry of a page's block list.
	Block = blocks.Block
	// Store is the content-store capability consumed by the pipeline.
	Store = store.Store
)

// Option customizes module construction.
type Option func(*Module)

// WithLoggerProvider replaces the default go-logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithRouteManager enables urlkit-based link templates for navigation.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(m *Module) {
		m.routes = manager
	}
}

// Module is the top level facade. Construct with New, then call Init once to
// load the locale registry from the store; before Init the module operates on
// the static fallback locale table.
type Module struct {
	cfg      Config
	store    store.Store
	provider interfaces.LoggerProvider
	routes   *urlkit.RouteManager
	merger   *i18n.Merger

	mu         sync.RWMutex
	registry   *locales.Registry
	resolver   *locales.Resolver
	assembly   *assembly.Service
	navigation *navigation.Resolver
}

// New validates the configuration and wires the module against the fallback
// locale table.
func New(cfg Config, contentStore store.Store, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if contentStore == nil {
		return nil, errors.New("headless: content store is required")
	}

	m := &Module{
		cfg:    cfg,
		store:  contentStore,
		merger: i18n.New(i18n.Options{MetaFields: cfg.Content.TranslationMetaFields}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	registry, err := locales.NewFallback(cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}
	if err := m.rewire(registry); err != nil {
		return nil, err
	}
	return m, nil
}

// Init loads the locale registry from the store and rebuilds the pipeline on
// top of it. A store failure degrades to the default-only registry; Init only
// errors on configuration problems such as ambiguous short codes.
func (m *Module) Init(ctx context.Context) error {
	loader, err := locales.NewLoader(locales.LoaderConfig{
		Store:                    m.store,
		Collection:               m.cfg.Locales.Collection,
		DefaultLocale:            m.cfg.DefaultLocale,
		AllowAmbiguousShortCodes: m.cfg.Locales.AllowAmbiguousShortCodes,
		Logger:                   logging.LocalesLogger(m.provider),
	})
	if err != nil {
		return err
	}
	registry, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	return m.rewire(registry)
}

func (m *Module) rewire(registry *locales.Registry) error {
	resolver := locales.NewResolver(registry)

	var schemas *blocks.SchemaRegistry
	if m.cfg.Content.ValidateBlocks {
		var err error
		if schemas, err = blocks.NewSchemaRegistry(); err != nil {
			return err
		}
	}

	svc, err := assembly.New(assembly.Config{
		Store:                m.store,
		Registry:             registry,
		Merger:               m.merger,
		Schemas:              schemas,
		RenderMarkdown:       m.cfg.Content.RenderMarkdown,
		ListingLimit:         m.cfg.Content.ListingLimit,
		PagesCollection:      m.cfg.Content.PagesCollection,
		PostsCollection:      m.cfg.Content.PostsCollection,
		GlobalsCollection:    m.cfg.Content.GlobalsCollection,
		NavigationCollection: m.cfg.Content.NavigationCollection,
		Logger:               logging.AssemblyLogger(m.provider),
	})
	if err != nil {
		return err
	}

	nav, err := navigation.New(navigation.Config{
		Locales:      resolver,
		Manager:      m.routes,
		Group:        m.cfg.Navigation.Group,
		LocaleGroups: m.cfg.Navigation.LocaleGroups,
		PostRoute:    m.cfg.Navigation.PostRoute,
		Logger:       logging.NavigationLogger(m.provider),
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.registry = registry
	m.resolver = resolver
	m.assembly = svc
	m.navigation = nav
	m.mu.Unlock()
	return nil
}

// Registry returns the active locale registry.
func (m *Module) Registry() *locales.Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry
}

// ResolveLocale splits a request path into its locale and locale-free path.
func (m *Module) ResolveLocale(path string) Resolved {
	m.mu.RLock()
	resolver := m.resolver
	m.mu.RUnlock()
	return resolver.Resolve(path)
}

// LocalizePath rewrites a path for a target locale.
func (m *Module) LocalizePath(path string, loc Locale) string {
	m.mu.RLock()
	resolver := m.resolver
	m.mu.RUnlock()
	return resolver.LocalizePath(path, loc)
}

// LocalizeLink rewrites an internal link for a target locale; external URLs,
// fragments, and mailto/tel links pass through unchanged.
func (m *Module) LocalizeLink(link string, loc Locale) string {
	m.mu.RLock()
	resolver := m.resolver
	m.mu.RUnlock()
	return resolver.LocalizeLink(link, loc)
}

// AssemblePage resolves a selector to a fully assembled page.
func (m *Module) AssemblePage(ctx context.Context, sel Selector, loc Locale) (*assembly.Page, error) {
	return m.service().AssemblePage(ctx, sel, loc)
}

// AssemblePost resolves a selector to a post with its related posts.
func (m *Module) AssemblePost(ctx context.Context, sel Selector, loc Locale) (*assembly.Post, error) {
	return m.service().AssemblePost(ctx, sel, loc)
}

// SiteData fetches the shared site chrome for a locale.
func (m *Module) SiteData(ctx context.Context, loc Locale) (*assembly.SiteData, error) {
	return m.service().SiteData(ctx, loc)
}

// PaginatedPosts lists published posts newest first.
func (m *Module) PaginatedPosts(ctx context.Context, limit, page int, loc Locale) ([]Record, error) {
	return m.service().PaginatedPosts(ctx, limit, page, loc)
}

// TotalPostCount counts published posts.
func (m *Module) TotalPostCount(ctx context.Context) (int, error) {
	return m.service().TotalPostCount(ctx)
}

// Search matches published posts against a query string.
func (m *Module) Search(ctx context.Context, query string, loc Locale) ([]Record, error) {
	return m.service().Search(ctx, query, loc)
}

// Navigation returns the link resolver for menus and block buttons.
func (m *Module) Navigation() *navigation.Resolver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.navigation
}

// LoadRedirects fetches the redirect table from the store.
func (m *Module) LoadRedirects(ctx context.Context) (*redirects.Table, error) {
	loader, err := redirects.NewLoader(redirects.Config{
		Store:      m.store,
		Collection: m.cfg.Redirects.Collection,
		Logger:     logging.RedirectsLogger(m.provider),
	})
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// NewEditorSession opens a live-update session for one page view.
func (m *Module) NewEditorSession() *editor.Session {
	return editor.NewSession(logging.ModuleLogger(m.provider, "headless.editor"))
}

func (m *Module) service() *assembly.Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assembly
}
