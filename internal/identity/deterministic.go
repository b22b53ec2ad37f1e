package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// EditorChannelUUID keys an editor update channel within a page-view session.
func EditorChannelUUID(sessionID uuid.UUID, collection, itemID string) uuid.UUID {
	return UUID("go-headless:editor_channel:" + sessionID.String() + ":" + strings.ToLower(strings.TrimSpace(collection)) + ":" + strings.TrimSpace(itemID))
}

// LocaleUUID derives a stable identifier for a locale code.
func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-headless:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}
