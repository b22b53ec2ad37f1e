package assembly

// Field trees mirror the store's nested projection syntax: strings select
// scalar fields, maps select relations, and a map of field trees keyed by
// collection tag selects many-to-any variants.

func buttonFields(withTranslations bool) []any {
	fields := []any{
		"id", "label", "variant", "url", "type",
		map[string]any{"page": []any{"permalink"}},
		map[string]any{"post": []any{"slug"}},
	}
	return appendTranslations(fields, withTranslations)
}

func pageFields(withTranslations bool) []any {
	buttons := buttonFields(withTranslations)

	item := map[string]any{
		"block_richtext": appendTranslations([]any{"id", "tagline", "headline", "content", "alignment"}, withTranslations),
		"block_gallery": appendTranslations([]any{
			"id", "tagline", "headline",
			map[string]any{"items": []any{"id", "directus_file", "sort"}},
		}, withTranslations),
		"block_pricing": appendTranslations([]any{
			"id", "tagline", "headline",
			map[string]any{"pricing_cards": appendTranslations([]any{
				"id", "title", "description", "price", "badge", "features", "is_highlighted",
				map[string]any{"button": buttons},
			}, withTranslations)},
		}, withTranslations),
		"block_hero": appendTranslations([]any{
			"id", "tagline", "headline", "description", "layout", "image",
			map[string]any{"button_group": []any{"id", map[string]any{"buttons": buttons}}},
		}, withTranslations),
		"block_posts": appendTranslations([]any{"id", "tagline", "headline", "collection", "limit"}, withTranslations),
		"block_form": appendTranslations([]any{
			"id", "tagline", "headline",
			map[string]any{"form": appendTranslations([]any{
				"id", "title", "submit_label", "success_message", "on_success", "success_redirect_url", "is_active",
				map[string]any{"fields": appendTranslations([]any{
					"id", "name", "type", "label", "placeholder", "help",
					"validation", "width", "choices", "required", "sort",
				}, withTranslations)},
			}, withTranslations)},
		}, withTranslations),
	}

	fields := []any{
		"id", "title", "seo",
		map[string]any{"blocks": []any{
			"id", "background", "collection", "item", "sort", "hide_block",
			map[string]any{"item": item},
		}},
	}
	return appendTranslations(fields, withTranslations)
}

func postFields(withTranslations bool) []any {
	fields := []any{
		"id", "title", "content", "status", "published_at", "image", "description", "slug", "seo",
		map[string]any{"author": []any{"id", "first_name", "last_name", "avatar"}},
	}
	if withTranslations {
		fields = append(fields, map[string]any{
			"translations": []any{"title", "content", "description", "slug", "languages_code", "status"},
		})
	}
	return fields
}

func postListingFields(withTranslations bool) []any {
	fields := []any{"id", "title", "description", "slug", "image", "published_at"}
	if withTranslations {
		fields = append(fields, map[string]any{
			"translations": []any{"title", "description", "languages_code", "status"},
		})
	}
	return fields
}

func appendTranslations(fields []any, withTranslations bool) []any {
	if !withTranslations {
		return fields
	}
	return append(fields, "translations.*")
}

// translationsDeep restricts a record's translations to the published entries
// for the requested and default locales, keeping fallback data available.
func translationsDeep(locale, defaultLocale string) map[string]any {
	return map[string]any{
		"translations": map[string]any{
			"_filter": map[string]any{
				"_and": []any{
					map[string]any{"status": map[string]any{"_eq": "published"}},
					map[string]any{"_or": []any{
						map[string]any{"languages_code": map[string]any{"_eq": locale}},
						map[string]any{"languages_code": map[string]any{"_eq": defaultLocale}},
					}},
				},
			},
		},
	}
}

// pageDeep sorts blocks, drops hidden ones, and narrows translations when a
// non-default locale is requested.
func pageDeep(withTranslations bool, locale, defaultLocale string) map[string]any {
	deep := map[string]any{
		"blocks": map[string]any{
			"_sort":   []any{"sort"},
			"_filter": map[string]any{"hide_block": map[string]any{"_neq": true}},
		},
	}
	if withTranslations {
		for key, spec := range translationsDeep(locale, defaultLocale) {
			deep[key] = spec
		}
	}
	return deep
}
