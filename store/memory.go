package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and fixtures. It mirrors the
// store capability faithfully enough to exercise the assembly pipeline:
// filters, deep directives, sorting, pagination, and versioned reads.
//
// Permission semantics are intentionally absent: status visibility is the
// caller's concern, exactly as with a privileged store token.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Row
	versions    map[string]map[string]Row
	failWith    error
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string][]Row),
		versions:    make(map[string]map[string]Row),
	}
}

// Seed replaces the rows of a collection.
func (m *Memory) Seed(collection string, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]Row, 0, len(rows))
	for _, row := range rows {
		copied = append(copied, CloneRow(row))
	}
	m.collections[collection] = copied
}

// SeedVersion registers a versioned snapshot for a row so QueryByID can
// resolve reads at a specific version.
func (m *Memory) SeedVersion(collection, id, version string, row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := versionKey(collection, id)
	if m.versions[key] == nil {
		m.versions[key] = make(map[string]Row)
	}
	m.versions[key][version] = CloneRow(row)
}

// FailWith makes every subsequent call return err, simulating an unreachable
// store. Pass nil to restore normal operation.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// QueryByFilter implements Store.
func (m *Memory) QueryByFilter(ctx context.Context, collection string, q Query) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, WrapTransport(m.failWith, "query", collection)
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	matched := make([]Row, 0)
	for _, row := range m.collections[collection] {
		if MatchFilter(row, q.Filter) {
			matched = append(matched, CloneRow(row))
		}
	}
	SortRows(matched, q.Sort)
	matched = Paginate(matched, q.Limit, q.Page)
	for _, row := range matched {
		ApplyDeep(row, q.Deep)
	}
	return matched, nil
}

// QueryByID implements Store. When opts.Version is set, only an explicitly
// seeded snapshot satisfies the read; an unknown version is a missing row,
// never a silent downgrade to the live one.
func (m *Memory) QueryByID(ctx context.Context, collection, id string, opts GetOptions) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, WrapTransport(m.failWith, "get", collection)
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}

	if opts.Version != "" {
		snapshots := m.versions[versionKey(collection, id)]
		row, ok := snapshots[opts.Version]
		if !ok {
			return nil, &NotFoundError{Collection: collection, Key: id + "@" + opts.Version}
		}
		copied := CloneRow(row)
		ApplyDeep(copied, opts.Deep)
		return copied, nil
	}

	for _, row := range m.collections[collection] {
		if equalsLoose(row["id"], id) {
			copied := CloneRow(row)
			ApplyDeep(copied, opts.Deep)
			return copied, nil
		}
	}
	return nil, &NotFoundError{Collection: collection, Key: id}
}

// AggregateCount implements Store.
func (m *Memory) AggregateCount(ctx context.Context, collection string, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return 0, WrapTransport(m.failWith, "aggregate", collection)
	}
	count := 0
	for _, row := range m.collections[collection] {
		if MatchFilter(row, filter) {
			count++
		}
	}
	return count, nil
}

func versionKey(collection, id string) string {
	return fmt.Sprintf("%s/%s", collection, id)
}

var _ Store = (*Memory)(nil)
