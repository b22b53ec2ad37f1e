package locales

import (
	"regexp"
	"strings"
)

// shortSegment matches URL path segments that look like locale prefixes.
var shortSegment = regexp.MustCompile(`^[a-z]{2,3}$`)

// Resolved is the outcome of locale resolution for one path.
type Resolved struct {
	Locale Locale
	// Path is the request path with any locale prefix stripped. Always starts
	// with "/".
	Path string
}

// Resolver extracts locales from URL paths and localizes paths back. All
// methods are pure; a resolver can be shared across requests.
type Resolver struct {
	registry *Registry
}

// NewResolver wraps a registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry exposes the backing registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve splits a path into a locale and the locale-free remainder. A first
// segment of 2 or 3 lowercase letters that maps to a registered locale is
// consumed; anything else leaves the path unchanged under the default locale.
// An empty path resolves to the default locale at "/".
func (r *Resolver) Resolve(path string) Resolved {
	path = cleanPath(path)
	first, rest := splitFirstSegment(path)
	if first == "" || !shortSegment.MatchString(first) {
		return Resolved{Locale: r.registry.Default(), Path: path}
	}
	loc, ok := r.registry.ByShort(first)
	if !ok {
		return Resolved{Locale: r.registry.Default(), Path: path}
	}
	return Resolved{Locale: loc, Path: rest}
}

// AddPrefix prefixes a path with the locale's short code. The default locale
// never carries a prefix, and an already-prefixed path is returned unchanged.
func (r *Resolver) AddPrefix(path string, loc Locale) string {
	path = cleanPath(path)
	if loc.Short == "" || strings.EqualFold(loc.Code, r.registry.Default().Code) {
		return path
	}
	if first, _ := splitFirstSegment(path); first == loc.Short {
		return path
	}
	if path == "/" {
		return "/" + loc.Short
	}
	return "/" + loc.Short + path
}

// LocalizePath rewrites a path for a target locale: any existing locale
// prefix is removed, then the target prefix is applied.
func (r *Resolver) LocalizePath(path string, loc Locale) string {
	return r.AddPrefix(RemovePrefix(path), loc)
}

// LocalizeLink rewrites an internal link for a target locale. External URLs,
// fragments, and mailto/tel links pass through unchanged.
func (r *Resolver) LocalizeLink(link string, loc Locale) string {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" ||
		strings.Contains(trimmed, "://") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "mailto:") ||
		strings.HasPrefix(trimmed, "tel:") {
		return link
	}
	return r.LocalizePath(trimmed, loc)
}

// RemovePrefix strips a leading 2-3 lowercase letter segment from a path.
// It applies the syntactic heuristic only, so it works before any registry
// has loaded.
func RemovePrefix(path string) string {
	path = cleanPath(path)
	first, rest := splitFirstSegment(path)
	if first == "" || !shortSegment.MatchString(first) {
		return path
	}
	return rest
}

func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func splitFirstSegment(path string) (first, rest string) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", "/"
	}
	if cut := strings.Index(trimmed, "/"); cut >= 0 {
		return trimmed[:cut], "/" + trimmed[cut+1:]
	}
	return trimmed, "/"
}
