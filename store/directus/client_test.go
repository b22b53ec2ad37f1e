package directus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/goliatone/go-headless/store"
)

func TestFlattenFields(t *testing.T) {
	fields := []any{
		"id",
		"title",
		map[string]any{"seo": []any{"title", "meta_description"}},
		map[string]any{
			"blocks": []any{
				"id",
				"collection",
				map[string]any{
					"item": map[string]any{
						"block_richtext": []any{"id", "headline"},
						"block_hero":     []any{"id"},
					},
				},
			},
		},
	}

	got := FlattenFields(fields)
	want := []string{
		"id",
		"title",
		"seo.title",
		"seo.meta_description",
		"blocks.id",
		"blocks.collection",
		"blocks.item:block_hero.id",
		"blocks.item:block_richtext.id",
		"blocks.item:block_richtext.headline",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected flattened fields:\n got %v\nwant %v", got, want)
	}
}

func TestQueryByFilterEncodesAndDecodes(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "1", "permalink": "/about"}},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Token: "static-token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	rows, err := client.QueryByFilter(context.Background(), "pages", store.Query{
		Filter: store.Eq("permalink", "/about"),
		Fields: []any{"id", "permalink"},
		Sort:   []string{"-published_at"},
		Limit:  1,
		Token:  "query-token",
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0]["permalink"] != "/about" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if captured.URL.Path != "/items/pages" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	query := captured.URL.Query()
	if query.Get("fields") != "id,permalink" {
		t.Fatalf("unexpected fields param %q", query.Get("fields"))
	}
	if query.Get("sort") != "-published_at" || query.Get("limit") != "1" {
		t.Fatalf("unexpected sort/limit params: %v", query)
	}
	var filter map[string]any
	if err := json.Unmarshal([]byte(query.Get("filter")), &filter); err != nil {
		t.Fatalf("filter param is not json: %v", err)
	}
	if captured.Header.Get("Authorization") != "Bearer query-token" {
		t.Fatalf("expected per-query token to win, got %q", captured.Header.Get("Authorization"))
	}
}

func TestQueryByFilterDecodesSingletonObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"title": "Site"}})
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL})
	rows, err := client.QueryByFilter(context.Background(), "globals", store.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0]["title"] != "Site" {
		t.Fatalf("expected singleton normalized to one row, got %v", rows)
	}
}

func TestQueryByIDStatusMapping(t *testing.T) {
	t.Run("404 is not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		client, _ := New(Config{BaseURL: server.URL})
		_, err := client.QueryByID(context.Background(), "pages", "42", store.GetOptions{Version: "v3"})
		if !store.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("403 is not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()
		client, _ := New(Config{BaseURL: server.URL})
		_, err := client.QueryByID(context.Background(), "pages", "42", store.GetOptions{})
		if !store.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("500 is transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		client, _ := New(Config{BaseURL: server.URL})
		_, err := client.QueryByID(context.Background(), "pages", "42", store.GetOptions{})
		if !store.IsTransport(err) {
			t.Fatalf("expected transport error, got %v", err)
		}
	})

	t.Run("version is forwarded", func(t *testing.T) {
		var gotVersion string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotVersion = r.URL.Query().Get("version")
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "42"}})
		}))
		defer server.Close()
		client, _ := New(Config{BaseURL: server.URL})
		if _, err := client.QueryByID(context.Background(), "pages", "42", store.GetOptions{Version: "v3"}); err != nil {
			t.Fatalf("get: %v", err)
		}
		if gotVersion != "v3" {
			t.Fatalf("expected version param v3, got %q", gotVersion)
		}
	})
}

func TestAggregateCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("aggregate[count]") != "*" {
			t.Errorf("expected aggregate[count]=* param, got %v", r.URL.Query())
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"count": "10"}}})
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL})
	count, err := client.AggregateCount(context.Background(), "posts", store.Eq("status", "published"))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10, got %d", count)
	}
}
