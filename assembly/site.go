package assembly

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/store"
)

// SiteData bundles the shared chrome of every rendered page.
type SiteData struct {
	Globals   Record
	HeaderNav Record
	FooterNav Record
}

var globalsFields = []any{
	"id", "title", "description", "logo", "logo_dark_mode",
	"social_links", "accent_color", "favicon",
}

func navigationFields(withTranslations bool) []any {
	children := appendTranslations([]any{
		"id", "title", "url",
		map[string]any{"page": []any{"permalink"}},
	}, withTranslations)
	return appendTranslations([]any{
		"id", "title",
		map[string]any{"items": appendTranslations([]any{
			"id", "title", "url",
			map[string]any{"page": []any{"permalink"}},
			map[string]any{"children": children},
		}, withTranslations)},
	}, withTranslations)
}

// SiteData fetches globals plus the header and footer navigation trees
// concurrently. All three must succeed; a partial site shell is never
// returned.
func (s *Service) SiteData(ctx context.Context, loc locales.Locale) (*SiteData, error) {
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	data := &SiteData{}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rows, err := s.store.QueryByFilter(groupCtx, s.globals, store.Query{
			Fields: appendTranslations(globalsFields, withTranslations),
			Deep:   maybeTranslationsDeep(withTranslations, loc.Code, defaultLocale),
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			data.Globals, _ = s.merger.Merge(rows[0], loc.Code, defaultLocale).(Record)
		}
		return nil
	})
	group.Go(func() error {
		nav, err := s.fetchNavigation(groupCtx, "main", loc)
		data.HeaderNav = nav
		return err
	})
	group.Go(func() error {
		nav, err := s.fetchNavigation(groupCtx, "footer", loc)
		data.FooterNav = nav
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) fetchNavigation(ctx context.Context, id string, loc locales.Locale) (Record, error) {
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	deep := map[string]any{"items": map[string]any{"_sort": []any{"sort"}}}
	if withTranslations {
		for key, spec := range translationsDeep(loc.Code, defaultLocale) {
			deep[key] = spec
		}
	}
	row, err := s.store.QueryByID(ctx, s.navigation, id, store.GetOptions{
		Fields: navigationFields(withTranslations),
		Deep:   deep,
	})
	if err != nil {
		return nil, err
	}
	merged, _ := s.merger.Merge(row, loc.Code, defaultLocale).(Record)
	return merged, nil
}

// PaginatedPosts lists published posts newest first.
func (s *Service) PaginatedPosts(ctx context.Context, limit, page int, loc locales.Locale) ([]Record, error) {
	if limit <= 0 {
		limit = s.listingLimit
	}
	if page < 1 {
		page = 1
	}
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	rows, err := s.store.QueryByFilter(ctx, s.posts, store.Query{
		Filter: store.Eq("status", "published"),
		Fields: postListingFields(withTranslations),
		Sort:   []string{"-published_at"},
		Limit:  limit,
		Page:   page,
		Deep:   maybeTranslationsDeep(withTranslations, loc.Code, defaultLocale),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		merged, _ := s.merger.Merge(row, loc.Code, defaultLocale).(Record)
		out = append(out, merged)
	}
	return out, nil
}

// TotalPostCount counts published posts.
func (s *Service) TotalPostCount(ctx context.Context) (int, error) {
	return s.store.AggregateCount(ctx, s.posts, store.Eq("status", "published"))
}

// Search matches published posts whose title, description, or content
// contains the query, case-insensitively.
func (s *Service) Search(ctx context.Context, query string, loc locales.Locale) ([]Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	rows, err := s.store.QueryByFilter(ctx, s.posts, store.Query{
		Filter: store.Merge(store.Eq("status", "published"), store.Or(
			store.Contains("title", query),
			store.Contains("description", query),
			store.Contains("content", query),
		)),
		Fields: postListingFields(withTranslations),
		Sort:   []string{"-published_at"},
		Deep:   maybeTranslationsDeep(withTranslations, loc.Code, defaultLocale),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		merged, _ := s.merger.Merge(row, loc.Code, defaultLocale).(Record)
		out = append(out, merged)
	}
	return out, nil
}
