package assembly

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-headless/blocks"
	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/store"
)

// enrichListings fetches the records behind every listing block: the items
// for the requested listing page and the total count, always restricted to
// published content regardless of the outer request's draft state. Blocks
// enrich concurrently, and each block's items and count fetch concurrently
// too; one failure abandons the whole page so partial results never render.
func (s *Service) enrichListings(ctx context.Context, list []blocks.Block, page int, loc locales.Locale) error {
	if page < 1 {
		page = 1
	}
	withTranslations := !s.registry.IsDefault(loc.Code)
	defaultLocale := s.registry.Default().Code

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range list {
		listing, ok := list[i].Item.(blocks.Posts)
		if !ok || listing.Collection != s.posts {
			continue
		}
		block := &list[i]
		group.Go(func() error {
			limit := listing.Limit
			if limit <= 0 {
				limit = s.listingLimit
			}
			filter := store.Eq("status", "published")

			inner, innerCtx := errgroup.WithContext(groupCtx)

			var rows []store.Row
			inner.Go(func() error {
				var err error
				rows, err = s.store.QueryByFilter(innerCtx, s.posts, store.Query{
					Filter: filter,
					Fields: postListingFields(withTranslations),
					Sort:   []string{"-published_at"},
					Limit:  limit,
					Page:   page,
					Deep:   maybeTranslationsDeep(withTranslations, loc.Code, defaultLocale),
				})
				return err
			})

			var count int
			inner.Go(func() error {
				var err error
				count, err = s.store.AggregateCount(innerCtx, s.posts, filter)
				return err
			})

			if err := inner.Wait(); err != nil {
				return err
			}

			items := make([]map[string]any, 0, len(rows))
			for _, row := range rows {
				merged, _ := s.merger.Merge(row, loc.Code, defaultLocale).(map[string]any)
				items = append(items, merged)
			}
			listing.Items = items
			listing.TotalPages = totalPages(count, limit)
			block.Item = listing
			if block.Raw != nil {
				rawItems := make([]any, len(items))
				for j, item := range items {
					rawItems[j] = item
				}
				block.Raw["posts"] = rawItems
				block.Raw["totalPages"] = listing.TotalPages
			}
			return nil
		})
	}
	return group.Wait()
}
