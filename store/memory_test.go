package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryQueryByFilter(t *testing.T) {
	mem := NewMemory()
	mem.Seed("pages",
		Row{"id": "1", "permalink": "/about", "status": "published"},
		Row{"id": "2", "permalink": "/about", "status": "draft"},
		Row{"id": "3", "permalink": "/pricing", "status": "published"},
	)

	rows, err := mem.QueryByFilter(context.Background(), "pages", Query{
		Filter: And(Eq("permalink", "/about"), Eq("status", "published")),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "1" {
		t.Fatalf("expected only the published /about row, got %v", rows)
	}

	// Mutating a result must not leak back into the seeded data.
	rows[0]["permalink"] = "/mutated"
	again, err := mem.QueryByFilter(context.Background(), "pages", Query{Filter: Eq("id", "1")})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if again[0]["permalink"] != "/about" {
		t.Fatal("expected seeded rows to be isolated from returned copies")
	}
}

func TestMemoryQueryByIDVersioned(t *testing.T) {
	mem := NewMemory()
	mem.Seed("pages", Row{"id": "42", "permalink": "/hello", "status": "published"})
	mem.SeedVersion("pages", "42", "v3", Row{"id": "42", "permalink": "/hello", "title": "Draft v3"})

	t.Run("live read", func(t *testing.T) {
		row, err := mem.QueryByID(context.Background(), "pages", "42", GetOptions{})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if row["permalink"] != "/hello" {
			t.Fatalf("expected live row, got %v", row)
		}
	})

	t.Run("versioned read", func(t *testing.T) {
		row, err := mem.QueryByID(context.Background(), "pages", "42", GetOptions{Version: "v3"})
		if err != nil {
			t.Fatalf("get versioned: %v", err)
		}
		if row["title"] != "Draft v3" {
			t.Fatalf("expected v3 snapshot, got %v", row)
		}
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		_, err := mem.QueryByID(context.Background(), "pages", "42", GetOptions{Version: "v9"})
		if !IsNotFound(err) {
			t.Fatalf("expected not found for unknown version, got %v", err)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := mem.QueryByID(context.Background(), "pages", "404", GetOptions{})
		if !IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestMemoryAggregateCount(t *testing.T) {
	mem := NewMemory()
	mem.Seed("posts",
		Row{"id": "1", "status": "published"},
		Row{"id": "2", "status": "published"},
		Row{"id": "3", "status": "draft"},
	)
	count, err := mem.AggregateCount(context.Background(), "posts", Eq("status", "published"))
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 published posts, got %d", count)
	}
}

func TestMemoryFailWithProducesTransportError(t *testing.T) {
	mem := NewMemory()
	mem.FailWith(errors.New("connection refused"))

	_, err := mem.QueryByFilter(context.Background(), "pages", Query{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !IsTransport(err) {
		t.Fatalf("expected transport category, got %v", err)
	}
	if IsNotFound(err) {
		t.Fatal("transport failures must not read as not-found")
	}
}

func TestMemoryHonorsContextCancellation(t *testing.T) {
	mem := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := mem.QueryByFilter(ctx, "pages", Query{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
