// Package redirects loads and matches URL redirect rules from the content
// store. Matching is locale aware: a rule for "/old" also catches
// "/fr/old" so redirects do not need one entry per language.
package redirects

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/pkg/interfaces"
	"github.com/goliatone/go-headless/store"
)

// DefaultCollection is the content-store collection holding redirect rules.
const DefaultCollection = "redirects"

// Redirect is one rule.
type Redirect struct {
	From string
	To   string
	// Code is the HTTP response code, defaulting to 301.
	Code int
}

// Config wires the loader.
type Config struct {
	Store store.Store
	// Collection overrides the source collection.
	Collection string
	Logger     interfaces.Logger
}

// Loader fetches redirect rules.
type Loader struct {
	store      store.Store
	collection string
	logger     interfaces.Logger
}

// NewLoader validates the config.
func NewLoader(cfg Config) (*Loader, error) {
	if cfg.Store == nil {
		return nil, errors.New("redirects: store is required")
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{store: cfg.Store, collection: collection, logger: logger}, nil
}

// Load fetches all rules with both endpoints present. Rows with malformed
// response codes keep the 301 default.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	rows, err := l.store.QueryByFilter(ctx, l.collection, store.Query{
		Filter: store.And(store.NNull("url_from"), store.NNull("url_to")),
		Fields: []any{"url_from", "url_to", "response_code"},
	})
	if err != nil {
		return nil, err
	}

	rules := make([]Redirect, 0, len(rows))
	for _, row := range rows {
		from, _ := row["url_from"].(string)
		to, _ := row["url_to"].(string)
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			continue
		}
		rules = append(rules, Redirect{
			From: normalizePath(from),
			To:   to,
			Code: responseCode(row["response_code"]),
		})
	}
	l.logger.Debug("redirects.loaded", "collection", l.collection, "count", len(rules))
	return NewTable(rules), nil
}

// Table is an immutable set of redirect rules with O(1) matching.
type Table struct {
	byFrom map[string]Redirect
}

// NewTable indexes rules by source path. Later duplicates win.
func NewTable(rules []Redirect) *Table {
	table := &Table{byFrom: make(map[string]Redirect, len(rules))}
	for _, rule := range rules {
		rule.From = normalizePath(rule.From)
		if rule.Code == 0 {
			rule.Code = 301
		}
		table.byFrom[rule.From] = rule
	}
	return table
}

// Len reports the number of indexed rules.
func (t *Table) Len() int {
	return len(t.byFrom)
}

// Match finds the rule for a request path. The path is tried as-is first,
// then with its locale prefix stripped.
func (t *Table) Match(path string) (Redirect, bool) {
	path = normalizePath(path)
	if rule, ok := t.byFrom[path]; ok {
		return rule, true
	}
	if stripped := locales.RemovePrefix(path); stripped != path {
		if rule, ok := t.byFrom[stripped]; ok {
			return rule, true
		}
	}
	return Redirect{}, false
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func responseCode(raw any) int {
	switch typed := raw.(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	case string:
		if code, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return code
		}
	}
	return 301
}
