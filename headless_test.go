package headless

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-headless/editor"
	"github.com/goliatone/go-headless/store"
)

func testModule(t *testing.T, mem *store.Memory) *Module {
	t.Helper()
	module, err := New(DefaultConfig(), mem)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if err := module.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return module
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.DefaultLocale = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing default locale to fail validation")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown logging level to fail validation")
	}
}

func TestModuleEndToEnd(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("languages",
		store.Row{"code": "en-US"},
		store.Row{"code": "fr-FR"},
	)
	mem.Seed("pages", store.Row{
		"id":        "1",
		"permalink": "/about",
		"status":    "published",
		"title":     "About us",
		"translations": []any{
			map[string]any{
				"languages_code": "fr-FR",
				"status":         "published",
				"title":          "À propos",
			},
		},
	})
	module := testModule(t, mem)

	resolved := module.ResolveLocale("/fr/about")
	if resolved.Locale.Code != "fr-FR" || resolved.Path != "/about" {
		t.Fatalf("unexpected resolution %+v", resolved)
	}

	page, err := module.AssemblePage(context.Background(), Selector{Permalink: resolved.Path}, resolved.Locale)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if page.Record["title"] != "À propos" {
		t.Fatalf("expected translated page, got %v", page.Record)
	}

	if got := module.LocalizePath("/about", resolved.Locale); got != "/fr/about" {
		t.Fatalf("localize = %q, want /fr/about", got)
	}
}

func TestModuleSurvivesRegistryFetchFailure(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("pages", store.Row{"id": "1", "permalink": "/about", "status": "published", "title": "About"})

	module, err := New(DefaultConfig(), mem)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	// Break the store for the registry load, then restore it for content.
	mem.FailWith(errors.New("unreachable"))
	if err := module.Init(context.Background()); err != nil {
		t.Fatalf("init must degrade, not fail: %v", err)
	}
	if !module.Registry().Degraded() {
		t.Fatal("expected degraded registry")
	}
	mem.FailWith(nil)

	resolved := module.ResolveLocale("/about")
	if resolved.Locale.Code != "en-US" {
		t.Fatalf("expected default locale, got %v", resolved.Locale)
	}
	page, err := module.AssemblePage(context.Background(), Selector{Permalink: "/about"}, resolved.Locale)
	if err != nil {
		t.Fatalf("assemble after degraded init: %v", err)
	}
	if page.Record["title"] != "About" {
		t.Fatalf("unexpected page %v", page.Record)
	}
}

func TestModuleLoadRedirects(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("redirects", store.Row{"url_from": "/old", "url_to": "/new", "response_code": float64(301)})
	module := testModule(t, mem)

	table, err := module.LoadRedirects(context.Background())
	if err != nil {
		t.Fatalf("load redirects: %v", err)
	}
	if rule, ok := table.Match("/fr/old"); !ok || rule.To != "/new" {
		t.Fatalf("unexpected match %+v ok=%v", rule, ok)
	}
}

func TestModuleEditorSession(t *testing.T) {
	module := testModule(t, store.NewMemory())

	session := module.NewEditorSession()
	defer session.Close()
	ch, cancel := session.Subscribe("pages", "1")
	defer cancel()

	if delivered := session.Publish(editor.Update{Collection: "pages", ItemID: "1"}); delivered != 1 {
		t.Fatalf("expected one delivery, got %d", delivered)
	}
	update := <-ch
	if update.Collection != "pages" {
		t.Fatalf("unexpected update %+v", update)
	}
}
