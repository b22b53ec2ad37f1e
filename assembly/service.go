// Package assembly is the content assembly pipeline: it turns a content
// selector and a resolved locale into a fully merged, translated record with
// an enriched block tree, honoring draft, preview, and version rules.
package assembly

import (
	"context"
	"errors"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-headless/blocks"
	"github.com/goliatone/go-headless/i18n"
	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/pkg/interfaces"
	"github.com/goliatone/go-headless/store"
)

// Record is a generic content record as returned by the store.
type Record = map[string]any

// DefaultListingLimit applies when a listing block does not configure one.
const DefaultListingLimit = 6

// Default collection names.
const (
	DefaultPagesCollection      = "pages"
	DefaultPostsCollection      = "posts"
	DefaultGlobalsCollection    = "globals"
	DefaultNavigationCollection = "navigation"
)

// Config wires the pipeline's collaborators.
type Config struct {
	Store    store.Store
	Registry *locales.Registry
	// Merger overrides the default translation merge policy.
	Merger *i18n.Merger
	// Schemas validates block payloads when set. Invalid payloads demote the
	// block to unsupported instead of failing the page.
	Schemas *blocks.SchemaRegistry
	// RenderMarkdown converts rich-text block content from Markdown to HTML.
	RenderMarkdown bool
	// ListingLimit overrides DefaultListingLimit.
	ListingLimit int
	// Collection names, defaulted when empty.
	PagesCollection      string
	PostsCollection      string
	GlobalsCollection    string
	NavigationCollection string
	Logger               interfaces.Logger
}

// Service assembles content records. Stateless across requests; safe for
// concurrent use.
type Service struct {
	store        store.Store
	registry     *locales.Registry
	merger       *i18n.Merger
	schemas      *blocks.SchemaRegistry
	markdown     *blocks.MarkdownRenderer
	listingLimit int
	pages        string
	posts        string
	globals      string
	navigation   string
	logger       interfaces.Logger
}

// New validates the config and builds a service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("assembly: store is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("assembly: locale registry is required")
	}
	merger := cfg.Merger
	if merger == nil {
		merger = i18n.New(i18n.Options{})
	}
	limit := cfg.ListingLimit
	if limit <= 0 {
		limit = DefaultListingLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	svc := &Service{
		store:        cfg.Store,
		registry:     cfg.Registry,
		merger:       merger,
		schemas:      cfg.Schemas,
		listingLimit: limit,
		pages:        defaulted(cfg.PagesCollection, DefaultPagesCollection),
		posts:        defaulted(cfg.PostsCollection, DefaultPostsCollection),
		globals:      defaulted(cfg.GlobalsCollection, DefaultGlobalsCollection),
		navigation:   defaulted(cfg.NavigationCollection, DefaultNavigationCollection),
		logger:       logger,
	}
	if cfg.RenderMarkdown {
		svc.markdown = blocks.NewMarkdownRenderer()
	}
	return svc, nil
}

func defaulted(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Page is an assembled page: the merged record plus its typed block list.
type Page struct {
	Record Record
	Blocks []blocks.Block
}

// AssemblePage resolves a selector to a page for the given locale. Missing
// content (including failed version lookups) reports as a store not-found
// error; transport failures propagate unchanged.
func (s *Service) AssemblePage(ctx context.Context, sel Selector, loc locales.Locale) (*Page, error) {
	sel = sel.Normalized()
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	record, err := s.fetchBase(ctx, s.pages, sel, keyFilter("permalink", sel.Permalink), withTranslations, loc.Code)
	if err != nil {
		return nil, err
	}

	merged, _ := s.merger.Merge(record, loc.Code, defaultLocale).(Record)
	page := &Page{
		Record: merged,
		Blocks: blocks.FromRecord(merged, "blocks"),
	}
	page.Blocks = s.validateBlocks(page.Blocks)

	if err := s.enrichListings(ctx, page.Blocks, sel.Page, loc); err != nil {
		return nil, err
	}
	if s.markdown != nil {
		if err := s.markdown.Apply(page.Blocks); err != nil {
			return nil, err
		}
	}

	logging.WithRequestContext(s.logger, sel.Permalink, loc.Code, sel.Version).
		Debug("assembly.page.done", "blocks", len(page.Blocks))
	return page, nil
}

// Post is an assembled post with its related posts.
type Post struct {
	Record  Record
	Related []Record
}

// AssemblePost resolves a selector to a post. When the slug does not match a
// base record and a non-default locale is requested, the lookup retries
// against translated slugs before giving up.
func (s *Service) AssemblePost(ctx context.Context, sel Selector, loc locales.Locale) (*Post, error) {
	sel = sel.Normalized()
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	group, groupCtx := errgroup.WithContext(ctx)

	var record Record
	group.Go(func() error {
		var err error
		record, err = s.fetchPostBase(groupCtx, sel, withTranslations, loc.Code)
		return err
	})

	var related []store.Row
	group.Go(func() error {
		var err error
		related, err = s.store.QueryByFilter(groupCtx, s.posts, store.Query{
			Filter: store.Merge(store.Neq("slug", sel.Slug), store.Eq("status", "published")),
			Fields: relatedPostFields(withTranslations),
			Limit:  2,
			Deep:   maybeTranslationsDeep(withTranslations, loc.Code, defaultLocale),
			Token:  sel.Token,
		})
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	post := &Post{}
	post.Record, _ = s.merger.Merge(record, loc.Code, defaultLocale).(Record)
	for _, row := range related {
		merged, _ := s.merger.Merge(row, loc.Code, defaultLocale).(Record)
		post.Related = append(post.Related, merged)
	}
	return post, nil
}

func (s *Service) fetchPostBase(ctx context.Context, sel Selector, withTranslations bool, locale string) (Record, error) {
	defaultLocale := s.registry.Default().Code
	record, err := s.fetchBase(ctx, s.posts, sel, keyFilter("slug", sel.Slug), withTranslations, locale)
	if err == nil || !store.IsNotFound(err) || !withTranslations || sel.Version != "" {
		return record, err
	}

	// The slug may only exist in a translation. Search the translated slugs
	// of published posts before reporting not found.
	rows, searchErr := s.store.QueryByFilter(ctx, s.posts, store.Query{
		Filter: store.Filter{
			"_and": []any{
				map[string]any{"status": map[string]any{"_eq": "published"}},
				map[string]any{"translations": map[string]any{
					"slug":           map[string]any{"_eq": sel.Slug},
					"languages_code": map[string]any{"_eq": locale},
					"status":         map[string]any{"_eq": "published"},
				}},
			},
		},
		Fields: postFields(true),
		Limit:  1,
		Deep:   translationsDeep(locale, defaultLocale),
		Token:  sel.Token,
	})
	if searchErr != nil {
		return nil, searchErr
	}
	if len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// fetchBase runs the version/draft decision procedure and returns the raw
// base record.
//
// No version requested: filter by the selector key, restricted to published
// unless the request is draft-eligible. Version requested without an id:
// resolve the id by key first (status-unfiltered, version access implies
// trust), then fetch that id at the version. Version plus id: fetch directly.
// Any failure of the versioned fetch is not found, never a silent fallback to
// the published record.
func (s *Service) fetchBase(ctx context.Context, collection string, sel Selector, filter store.Filter, withTranslations bool, locale string) (Record, error) {
	defaultLocale := s.registry.Default().Code
	fields := pageFields(withTranslations)
	if collection == s.posts {
		fields = postFields(withTranslations)
	}
	deep := pageDeep(withTranslations, locale, defaultLocale)

	if sel.Version == "" {
		query := store.Query{
			Filter: filter,
			Fields: fields,
			Limit:  1,
			Deep:   deep,
			Token:  sel.Token,
		}
		if !sel.AllowsDrafts() {
			query.Filter = store.Merge(query.Filter, store.Eq("status", "published"))
		}
		rows, err := s.store.QueryByFilter(ctx, collection, query)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, &store.NotFoundError{Collection: collection, Key: selectorKey(sel)}
		}
		return rows[0], nil
	}

	id := sel.ID
	if id == "" {
		rows, err := s.store.QueryByFilter(ctx, collection, store.Query{
			Filter: filter,
			Fields: []any{"id"},
			Limit:  1,
			Token:  sel.Token,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, &store.NotFoundError{Collection: collection, Key: selectorKey(sel)}
		}
		var ok bool
		if id, ok = rows[0]["id"].(string); !ok || id == "" {
			return nil, &store.NotFoundError{Collection: collection, Key: selectorKey(sel)}
		}
	}

	record, err := s.store.QueryByID(ctx, collection, id, store.GetOptions{
		Version: sel.Version,
		Fields:  fields,
		Deep:    deep,
		Token:   sel.Token,
	})
	if err != nil {
		s.logger.Debug("assembly.versioned.miss",
			"collection", collection,
			"id", id,
			"version", sel.Version,
			"error", err,
		)
		return nil, &store.NotFoundError{Collection: collection, Key: id + "@" + sel.Version}
	}
	return record, nil
}

func (s *Service) validateBlocks(list []blocks.Block) []blocks.Block {
	if s.schemas == nil {
		return list
	}
	for i := range list {
		if list[i].Raw == nil {
			continue
		}
		if err := s.schemas.Validate(list[i].Collection, list[i].Raw); err != nil {
			s.logger.Warn("assembly.block.invalid", "collection", list[i].Collection, "id", list[i].ID, "error", err)
			list[i].Item = blocks.Unsupported{Collection: list[i].Collection, Raw: list[i].Raw}
		}
	}
	return list
}

func keyFilter(field, value string) store.Filter {
	return store.Eq(field, value)
}

func selectorKey(sel Selector) string {
	switch {
	case sel.Permalink != "":
		return sel.Permalink
	case sel.Slug != "":
		return sel.Slug
	default:
		return sel.ID
	}
}

func maybeTranslationsDeep(withTranslations bool, locale, defaultLocale string) map[string]any {
	if !withTranslations {
		return nil
	}
	return translationsDeep(locale, defaultLocale)
}

func relatedPostFields(withTranslations bool) []any {
	fields := []any{"id", "title", "slug", "image"}
	if withTranslations {
		fields = append(fields, map[string]any{
			"translations": []any{"title", "languages_code", "status"},
		})
	}
	return fields
}

func totalPages(count, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(limit)))
}
