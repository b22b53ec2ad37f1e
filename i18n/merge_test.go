package i18n

import (
	"reflect"
	"testing"
)

func pageRecord() map[string]any {
	return map[string]any{
		"id":        "1",
		"permalink": "/about",
		"slug":      "about",
		"title":     "About us",
		"summary":   "Base summary",
		"translations": []any{
			map[string]any{
				"id":             "t1",
				"languages_code": "fr-FR",
				"status":         "published",
				"title":          "À propos",
				"summary":        nil,
				"permalink":      "/a-propos",
				"slug":           "a-propos",
			},
			map[string]any{
				"id":             "t2",
				"languages_code": map[string]any{"code": "es-ES"},
				"status":         "draft",
				"title":          "Sobre nosotros",
			},
		},
	}
}

func TestMergeSelectsRequestedLocale(t *testing.T) {
	merged := Merge(pageRecord(), "fr-FR", "en-US").(map[string]any)

	if merged["title"] != "À propos" {
		t.Fatalf("expected translated title, got %v", merged["title"])
	}
	if _, ok := merged[TranslationsField]; ok {
		t.Fatal("translations field must be removed from the output")
	}
}

func TestMergeNeverTouchesRoutingIdentity(t *testing.T) {
	merged := Merge(pageRecord(), "fr-FR", "en-US").(map[string]any)

	if merged["permalink"] != "/about" || merged["slug"] != "about" || merged["id"] != "1" {
		t.Fatalf("routing identity changed: %v", merged)
	}
}

func TestMergeSkipsNullOverrides(t *testing.T) {
	merged := Merge(pageRecord(), "fr-FR", "en-US").(map[string]any)

	if merged["summary"] != "Base summary" {
		t.Fatalf("null translation value must inherit the base, got %v", merged["summary"])
	}
}

func TestMergeIgnoresUnpublishedEntries(t *testing.T) {
	merged := Merge(pageRecord(), "es-ES", "en-US").(map[string]any)

	// The es-ES entry is draft; there is no published en-US entry either, so
	// nothing is overridden.
	if merged["title"] != "About us" {
		t.Fatalf("expected base title, got %v", merged["title"])
	}
}

func TestMergeFallsBackToDefaultLocale(t *testing.T) {
	record := map[string]any{
		"title": "Base",
		"translations": []any{
			map[string]any{
				"languages_code": "en-US",
				"status":         "published",
				"title":          "English",
			},
		},
	}

	merged := Merge(record, "de-DE", "en-US").(map[string]any)
	if merged["title"] != "English" {
		t.Fatalf("expected fallback to default locale entry, got %v", merged["title"])
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	once := Merge(pageRecord(), "fr-FR", "en-US")
	twice := Merge(once, "fr-FR", "en-US")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\n once %v\ntwice %v", once, twice)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	record := pageRecord()
	Merge(record, "fr-FR", "en-US")

	if record["title"] != "About us" {
		t.Fatal("input record was mutated")
	}
	if _, ok := record[TranslationsField]; !ok {
		t.Fatal("input translations were removed")
	}
}

func TestMergeRecursesIntoNestedBlocks(t *testing.T) {
	record := map[string]any{
		"id": "1",
		"blocks": []any{
			map[string]any{
				"collection": "block_richtext",
				"item": map[string]any{
					"headline": "Base headline",
					"translations": []any{
						map[string]any{
							"languages_code": "fr-FR",
							"status":         "published",
							"headline":       "Titre",
						},
					},
				},
			},
		},
	}

	merged := Merge(record, "fr-FR", "en-US").(map[string]any)
	blocks := merged["blocks"].([]any)
	item := blocks[0].(map[string]any)["item"].(map[string]any)
	if item["headline"] != "Titre" {
		t.Fatalf("expected nested merge, got %v", item)
	}
	if _, ok := item[TranslationsField]; ok {
		t.Fatal("nested translations field must be removed")
	}
}

func TestMergeTreatsMalformedLocaleTagsAsNonMatching(t *testing.T) {
	record := map[string]any{
		"title": "Base",
		"translations": []any{
			map[string]any{
				"languages_code": 42,
				"status":         "published",
				"title":          "Broken",
			},
		},
	}

	merged := Merge(record, "fr-FR", "en-US").(map[string]any)
	if merged["title"] != "Base" {
		t.Fatalf("malformed locale tag must not match, got %v", merged["title"])
	}
}

func TestMergeScalarPassThrough(t *testing.T) {
	if got := Merge("plain", "fr-FR", "en-US"); got != "plain" {
		t.Fatalf("scalar must pass through, got %v", got)
	}
	if got := Merge(nil, "fr-FR", "en-US"); got != nil {
		t.Fatalf("nil must pass through, got %v", got)
	}
}

func TestCustomMetaFields(t *testing.T) {
	merger := New(Options{MetaFields: []string{"id", "languages_code", "status"}})
	record := map[string]any{
		"id":           "1",
		"slug":         "about",
		"date_created": "2020-01-01",
		"translations": []any{
			map[string]any{
				"languages_code": "fr-FR",
				"status":         "published",
				"date_created":   "2024-01-01",
				"slug":           "a-propos",
			},
		},
	}

	merged := merger.MergeRecord(record, "fr-FR", "en-US")
	if merged["date_created"] != "2024-01-01" {
		t.Fatalf("custom meta list should permit the override, got %v", merged["date_created"])
	}
	if merged["slug"] != "about" {
		t.Fatal("routing fields stay excluded even with a custom meta list")
	}
}
