package navigation

import (
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-headless/blocks"
	"github.com/goliatone/go-headless/locales"
)

func testLocales(t *testing.T) *locales.Resolver {
	t.Helper()
	reg, err := locales.NewRegistry("en-US", []locales.Locale{
		{Code: "en-US"},
		{Code: "fr-FR"},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return locales.NewResolver(reg)
}

func TestTreeLocalizesPageLinks(t *testing.T) {
	resolver, err := New(Config{Locales: testLocales(t)})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	nav := map[string]any{
		"id":    "main",
		"title": "Header",
		"items": []any{
			map[string]any{
				"id":    "i1",
				"title": "About",
				"page":  map[string]any{"permalink": "/about"},
				"children": []any{
					map[string]any{"id": "i2", "title": "Team", "page": map[string]any{"permalink": "/about/team"}},
					map[string]any{"id": "i3", "title": "Docs", "url": "https://docs.example.com"},
				},
			},
		},
	}

	fr, _ := testLocales(t).Registry().Lookup("fr")
	tree := resolver.Tree(nav, fr)
	if len(tree) != 1 {
		t.Fatalf("expected one root item, got %d", len(tree))
	}
	if tree[0].Href != "/fr/about" {
		t.Fatalf("expected localized page link, got %q", tree[0].Href)
	}
	if tree[0].Children[0].Href != "/fr/about/team" {
		t.Fatalf("expected localized child link, got %q", tree[0].Children[0].Href)
	}
	if tree[0].Children[1].Href != "https://docs.example.com" {
		t.Fatalf("external urls pass through, got %q", tree[0].Children[1].Href)
	}

	def := testLocales(t).Registry().Default()
	if got := resolver.Tree(nav, def)[0].Href; got != "/about" {
		t.Fatalf("default locale must not be prefixed, got %q", got)
	}
}

func TestButtonHrefWithRouteManager(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"post": "/blog/:slug",
				},
				Groups: []urlkit.GroupConfig{
					{
						Name: "fr",
						Path: "/fr",
						Paths: map[string]string{
							"post": "/journal/:slug",
						},
					},
				},
			},
		},
	})

	resolver, err := New(Config{
		Locales: testLocales(t),
		Manager: manager,
		Group:   "frontend",
		LocaleGroups: map[string]string{
			"fr": "frontend.fr",
		},
	})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	def := testLocales(t).Registry().Default()
	fr, _ := testLocales(t).Registry().Lookup("fr")

	href, err := resolver.ButtonHref(blocks.Button{PostSlug: "hello"}, def)
	if err != nil {
		t.Fatalf("button href: %v", err)
	}
	if href != "https://example.com/blog/hello" {
		t.Fatalf("unexpected post href %q", href)
	}

	href, err = resolver.ButtonHref(blocks.Button{PostSlug: "hello"}, fr)
	if err != nil {
		t.Fatalf("button href fr: %v", err)
	}
	if href != "https://example.com/fr/journal/hello" {
		t.Fatalf("unexpected localized post href %q", href)
	}
}

func TestButtonHrefFallbacks(t *testing.T) {
	resolver, err := New(Config{Locales: testLocales(t)})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	fr, _ := testLocales(t).Registry().Lookup("fr")

	href, _ := resolver.ButtonHref(blocks.Button{URL: "https://ext.example.com"}, fr)
	if href != "https://ext.example.com" {
		t.Fatalf("external url must pass through, got %q", href)
	}
	href, _ = resolver.ButtonHref(blocks.Button{PagePermalink: "/pricing"}, fr)
	if href != "/fr/pricing" {
		t.Fatalf("unexpected page href %q", href)
	}
	href, _ = resolver.ButtonHref(blocks.Button{PostSlug: "hello"}, fr)
	if href != "/fr/blog/hello" {
		t.Fatalf("expected slug fallback without manager, got %q", href)
	}
	href, _ = resolver.ButtonHref(blocks.Button{}, fr)
	if href != "#" {
		t.Fatalf("empty button resolves to #, got %q", href)
	}
}
