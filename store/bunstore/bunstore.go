// Package bunstore implements the store capability over a bun-managed SQLite
// database. It exists for fixtures, offline development, and static builds:
// collections are persisted as JSON documents and queries evaluate with the
// same engine the in-memory store uses, so behavior matches the remote API.
package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-headless/store"
)

type document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection string    `bun:"collection,pk,notnull"`
	DocID      string    `bun:"doc_id,pk,notnull"`
	Version    string    `bun:"version,pk,notnull,default:''"`
	Data       string    `bun:"data,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// Store reads content snapshots from SQLite.
type Store struct {
	db *bun.DB
}

// New wraps an existing bun DB.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) a snapshot database at path using the sqlite
// driver registered by the host (github.com/mattn/go-sqlite3).
func Open(path string) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open %s: %w", path, err)
	}
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// Init creates the backing table when missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: create table: %w", err)
	}
	return nil
}

// Seed replaces the live rows of a collection.
func (s *Store) Seed(ctx context.Context, collection string, rows ...store.Row) error {
	return s.seed(ctx, collection, "", rows...)
}

// SeedVersion stores a versioned snapshot for a single row.
func (s *Store) SeedVersion(ctx context.Context, collection, id, version string, row store.Row) error {
	if version == "" {
		return fmt.Errorf("bunstore: version is required")
	}
	row = store.CloneRow(row)
	row["id"] = id
	return s.seed(ctx, collection, version, row)
}

func (s *Store) seed(ctx context.Context, collection, version string, rows ...store.Row) error {
	if collection == "" {
		return store.ErrCollectionRequired
	}
	if version == "" {
		if _, err := s.db.NewDelete().
			Model((*document)(nil)).
			Where("collection = ?", collection).
			Where("version = ''").
			Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: clear %s: %w", collection, err)
		}
	}

	docs := make([]document, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("bunstore: encode row: %w", err)
		}
		docs = append(docs, document{
			Collection: collection,
			DocID:      fmt.Sprint(row["id"]),
			Version:    version,
			Data:       string(data),
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.db.NewInsert().
		Model(&docs).
		On("CONFLICT (collection, doc_id, version) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx); err != nil {
		return fmt.Errorf("bunstore: insert %s: %w", collection, err)
	}
	return nil
}

// QueryByFilter implements store.Store. Filters, sorting, pagination, and
// deep directives evaluate in-process over the decoded documents; the SQL
// layer only narrows by collection.
func (s *Store) QueryByFilter(ctx context.Context, collection string, q store.Query) ([]store.Row, error) {
	rows, err := s.load(ctx, collection, "")
	if err != nil {
		return nil, err
	}
	matched := make([]store.Row, 0, len(rows))
	for _, row := range rows {
		if store.MatchFilter(row, q.Filter) {
			matched = append(matched, row)
		}
	}
	store.SortRows(matched, q.Sort)
	matched = store.Paginate(matched, q.Limit, q.Page)
	for _, row := range matched {
		store.ApplyDeep(row, q.Deep)
	}
	return matched, nil
}

// QueryByID implements store.Store.
func (s *Store) QueryByID(ctx context.Context, collection, id string, opts store.GetOptions) (store.Row, error) {
	if collection == "" {
		return nil, store.ErrCollectionRequired
	}
	if id == "" {
		return nil, store.ErrIDRequired
	}

	var doc document
	err := s.db.NewSelect().
		Model(&doc).
		Where("collection = ?", collection).
		Where("doc_id = ?", id).
		Where("version = ?", opts.Version).
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		key := id
		if opts.Version != "" {
			key += "@" + opts.Version
		}
		return nil, &store.NotFoundError{Collection: collection, Key: key}
	}
	if err != nil {
		return nil, store.WrapTransport(err, "get", collection)
	}

	var row store.Row
	if err := json.Unmarshal([]byte(doc.Data), &row); err != nil {
		return nil, store.WrapTransport(err, "decode", collection)
	}
	store.ApplyDeep(row, opts.Deep)
	return row, nil
}

// AggregateCount implements store.Store.
func (s *Store) AggregateCount(ctx context.Context, collection string, filter store.Filter) (int, error) {
	rows, err := s.load(ctx, collection, "")
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range rows {
		if store.MatchFilter(row, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) load(ctx context.Context, collection, version string) ([]store.Row, error) {
	if collection == "" {
		return nil, store.ErrCollectionRequired
	}
	var docs []document
	err := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection).
		Where("version = ?", version).
		Scan(ctx)
	if err != nil {
		return nil, store.WrapTransport(err, "query", collection)
	}

	rows := make([]store.Row, 0, len(docs))
	for _, doc := range docs {
		var row store.Row
		if err := json.Unmarshal([]byte(doc.Data), &row); err != nil {
			return nil, store.WrapTransport(err, "decode", collection)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ store.Store = (*Store)(nil)
