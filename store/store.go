package store

import "context"

// Row is one structured record returned by a content store collection.
type Row = map[string]any

// Filter is a Directus-style operator tree. Keys are either field names
// mapping to operator sets / nested filters, or the logical combinators
// "_and" / "_or" mapping to filter lists.
type Filter map[string]any

// Query configures a filtered collection read.
type Query struct {
	Filter Filter
	// Fields lists the projection: plain strings for scalar fields and
	// map[string]any entries for nested/relational field trees.
	Fields []any
	Sort   []string
	Limit  int
	Page   int
	// Deep carries nested-collection directives (_sort, _filter, _limit)
	// keyed by relation name, mirroring the Directus deep parameter.
	Deep map[string]any
	// Token widens row visibility when the backing store enforces
	// permissions. Empty means public (published-only) access.
	Token string
}

// GetOptions configures a read-by-id, optionally at a specific version.
type GetOptions struct {
	Version string
	Fields  []any
	Deep    map[string]any
	Token   string
}

// Store is the capability the assembly pipeline consumes. Implementations
// must treat every call as a bounded read with no internal retries; transport
// policy belongs to the injected client.
type Store interface {
	QueryByFilter(ctx context.Context, collection string, q Query) ([]Row, error)
	QueryByID(ctx context.Context, collection, id string, opts GetOptions) (Row, error)
	AggregateCount(ctx context.Context, collection string, filter Filter) (int, error)
}

// Eq matches rows whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{field: map[string]any{"_eq": value}}
}

// Neq matches rows whose field differs from value.
func Neq(field string, value any) Filter {
	return Filter{field: map[string]any{"_neq": value}}
}

// NNull matches rows whose field is present and non-null.
func NNull(field string) Filter {
	return Filter{field: map[string]any{"_nnull": true}}
}

// In matches rows whose field equals any of the provided values.
func In(field string, values ...any) Filter {
	return Filter{field: map[string]any{"_in": values}}
}

// Contains matches rows whose string field contains the value, ignoring case.
func Contains(field string, value string) Filter {
	return Filter{field: map[string]any{"_icontains": value}}
}

// And combines filters so every one must match.
func And(filters ...Filter) Filter {
	list := make([]any, 0, len(filters))
	for _, f := range filters {
		if len(f) > 0 {
			list = append(list, map[string]any(f))
		}
	}
	return Filter{"_and": list}
}

// Or combines filters so at least one must match.
func Or(filters ...Filter) Filter {
	list := make([]any, 0, len(filters))
	for _, f := range filters {
		if len(f) > 0 {
			list = append(list, map[string]any(f))
		}
	}
	return Filter{"_or": list}
}

// Merge flattens two filters into one map. Later keys win; callers needing
// conjunction semantics across the same field should use And instead.
func Merge(a, b Filter) Filter {
	out := make(Filter, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
