// Package navigation turns raw navigation records into localized link trees.
// Internal links carry a page permalink or a post slug; hrefs are built with
// the locale resolver and, when configured, go-urlkit route templates.
package navigation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-headless/blocks"
	"github.com/goliatone/go-headless/internal/logging"
	"github.com/goliatone/go-headless/locales"
	"github.com/goliatone/go-headless/pkg/interfaces"
)

// Item is one resolved navigation entry.
type Item struct {
	ID       string
	Title    string
	Href     string
	Children []Item
}

// Config wires the link resolver.
type Config struct {
	// Locales localizes internal paths. Required.
	Locales *locales.Resolver
	// Manager builds post URLs from route templates. Optional; without it
	// post links fall back to "/blog/{slug}".
	Manager *urlkit.RouteManager
	// Group is the route group holding the templates. Defaults to "frontend".
	Group string
	// LocaleGroups overrides the group per locale short code, for sites whose
	// localized routes live in sub-groups (e.g. "frontend.fr").
	LocaleGroups map[string]string
	// PostRoute is the template name for posts. Defaults to "post".
	PostRoute string
	Logger    interfaces.Logger
}

// Resolver resolves navigation trees and block buttons to hrefs. Safe for
// concurrent use.
type Resolver struct {
	locales      *locales.Resolver
	manager      *urlkit.RouteManager
	group        string
	localeGroups map[string]string
	postRoute    string
	logger       interfaces.Logger

	mu         sync.RWMutex
	groupCache map[string]*urlkit.Group
}

// New validates the config and builds a resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Locales == nil {
		return nil, errors.New("navigation: locale resolver is required")
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "frontend"
	}
	postRoute := strings.TrimSpace(cfg.PostRoute)
	if postRoute == "" {
		postRoute = "post"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Resolver{
		locales:      cfg.Locales,
		manager:      cfg.Manager,
		group:        group,
		localeGroups: cfg.LocaleGroups,
		postRoute:    postRoute,
		logger:       logger,
		groupCache:   map[string]*urlkit.Group{},
	}, nil
}

// Tree resolves a navigation record's items into localized links. Unknown
// entries resolve to "#" rather than dropping, so menus keep their shape.
func (r *Resolver) Tree(nav map[string]any, loc locales.Locale) []Item {
	raw, ok := nav["items"].([]any)
	if !ok {
		return nil
	}
	out := make([]Item, 0, len(raw))
	for _, entry := range raw {
		row, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, r.item(row, loc))
	}
	return out
}

func (r *Resolver) item(row map[string]any, loc locales.Locale) Item {
	item := Item{
		ID:    str(row["id"]),
		Title: str(row["title"]),
		Href:  r.href(row, loc),
	}
	if children, ok := row["children"].([]any); ok {
		for _, entry := range children {
			child, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			item.Children = append(item.Children, r.item(child, loc))
		}
	}
	return item
}

func (r *Resolver) href(row map[string]any, loc locales.Locale) string {
	if url := str(row["url"]); url != "" {
		return url
	}
	if page, ok := row["page"].(map[string]any); ok {
		if permalink := str(page["permalink"]); permalink != "" {
			return r.locales.AddPrefix(permalink, loc)
		}
	}
	return "#"
}

// ButtonHref resolves a block button to its target URL.
func (r *Resolver) ButtonHref(button blocks.Button, loc locales.Locale) (string, error) {
	switch {
	case button.URL != "":
		return button.URL, nil
	case button.PagePermalink != "":
		return r.locales.AddPrefix(button.PagePermalink, loc), nil
	case button.PostSlug != "":
		return r.postHref(button.PostSlug, loc)
	default:
		return "#", nil
	}
}

func (r *Resolver) postHref(slug string, loc locales.Locale) (string, error) {
	if r.manager == nil {
		return r.locales.AddPrefix("/blog/"+slug, loc), nil
	}
	group, err := r.groupFor(loc)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, r.postRoute)
	if err != nil {
		return "", err
	}
	url, err := builder.WithParam("slug", slug).Build()
	if err != nil {
		return "", fmt.Errorf("navigation: build post url: %w", err)
	}
	return url, nil
}

func (r *Resolver) groupFor(loc locales.Locale) (*urlkit.Group, error) {
	path := r.group
	if override, ok := r.localeGroups[loc.Short]; ok && strings.TrimSpace(override) != "" {
		path = strings.TrimSpace(override)
	}

	r.mu.RLock()
	cached, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

// The urlkit accessors panic on unknown names; convert that to an error so a
// misconfigured route degrades one link instead of the request.

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
