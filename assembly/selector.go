package assembly

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goslug "github.com/goliatone/go-slug"
)

// mainVersion is the store's alias for the live record; requesting it is the
// same as requesting no version at all.
const mainVersion = "main"

// Selector identifies the content a request asks for. Build it once from the
// routing layer's inputs and treat it as immutable.
type Selector struct {
	// Permalink addresses a page, e.g. "/about".
	Permalink string
	// Slug addresses a post.
	Slug string
	// ID addresses a record directly, bypassing permalink/slug lookup.
	ID string
	// Version requests a versioned snapshot instead of the live record.
	Version string
	// Token authorizes visibility beyond published content.
	Token string
	// Preview marks an editor preview request.
	Preview bool
	// Page is the 1-based listing page for paginated blocks.
	Page int
}

// Normalized returns a copy with whitespace trimmed, the "main" version alias
// collapsed to the empty string, and the slug normalized.
func (s Selector) Normalized() Selector {
	s.Permalink = strings.TrimSpace(s.Permalink)
	s.ID = strings.TrimSpace(s.ID)
	s.Token = strings.TrimSpace(s.Token)
	s.Version = strings.TrimSpace(s.Version)
	if s.Version == mainVersion {
		s.Version = ""
	}
	s.Slug = strings.TrimSpace(s.Slug)
	if s.Slug != "" && !goslug.IsValid(s.Slug) {
		if normalized, err := goslug.Normalize(s.Slug); err == nil {
			s.Slug = normalized
		}
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Validate checks the selector can address content at all.
func (s Selector) Validate() error {
	errs := validation.Errors{}
	if s.Permalink == "" && s.Slug == "" && s.ID == "" {
		errs["selector"] = validation.NewError("validation_selector_required", "permalink, slug, or id is required")
	}
	if s.Page < 0 {
		errs["page"] = validation.NewError("validation_page_invalid", "page must not be negative")
	}
	return errs.Filter()
}

// AllowsDrafts reports whether the request may see non-published statuses.
// A token widens visibility; so does an explicit version, since version
// access already implies elevated trust.
func (s Selector) AllowsDrafts() bool {
	return s.Token != "" || s.Version != ""
}
