package store

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrNotFound indicates a selector matched no rows in the store.
	ErrNotFound = errors.New("store: not found")
	// ErrCollectionRequired indicates a query was issued without a collection name.
	ErrCollectionRequired = errors.New("store: collection is required")
	// ErrIDRequired indicates a read-by-id was issued without an id.
	ErrIDRequired = errors.New("store: id is required")
)

// NotFoundError reports a missing row and unwraps to ErrNotFound so callers
// can branch with errors.Is.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	key := strings.TrimSpace(e.Key)
	if key == "" {
		return fmt.Sprintf("store: %s row not found", e.Collection)
	}
	return fmt.Sprintf("store: %s row %q not found", e.Collection, key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err represents a missing row rather than a
// transport failure. The two must never be conflated: NotFound surfaces as a
// 404-equivalent while transport failures propagate as 5xx-equivalents.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// WrapTransport marks err as a transport failure against the content store.
func WrapTransport(err error, op, collection string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("store: %s %s failed", op, collection)).
		WithTextCode("STORE_TRANSPORT")
}

// IsTransport reports whether err was produced by WrapTransport.
func IsTransport(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryExternal)
}
