package enums

import "strings"

// EntityKind names the moderatable content kinds. Every kind goes through the
// same pending/approved/rejected lifecycle.
type EntityKind string

const (
	EntityKindProfile EntityKind = "profile"
	EntityKindUser    EntityKind = "user"
	EntityKindEvent   EntityKind = "event"
	EntityKindPhoto   EntityKind = "photo"
	EntityKindMemory  EntityKind = "memory"
	EntityKindProject EntityKind = "project"
)

var allEntityKinds = []EntityKind{
	EntityKindProfile,
	EntityKindUser,
	EntityKindEvent,
	EntityKindPhoto,
	EntityKindMemory,
	EntityKindProject,
}

func AllEntityKinds() []EntityKind {
	kinds := make([]EntityKind, len(allEntityKinds))
	copy(kinds, allEntityKinds)
	return kinds
}

// pluralKinds maps URL path segments onto kinds, so routes read
// /admin/moderation/photos/pending while the canonical value stays singular.
var pluralKinds = map[string]EntityKind{
	"profiles": EntityKindProfile,
	"users":    EntityKindUser,
	"events":   EntityKindEvent,
	"photos":   EntityKindPhoto,
	"memories": EntityKindMemory,
	"projects": EntityKindProject,
}

// Plural returns the URL path segment for the kind.
func (k EntityKind) Plural() string {
	for segment, kind := range pluralKinds {
		if kind == k {
			return segment
		}
	}
	return string(k)
}

// ParseEntityKind accepts both the canonical singular form and the plural
// path-segment form.
func ParseEntityKind(raw string) (EntityKind, bool) {
	candidate := strings.ToLower(strings.TrimSpace(raw))
	for _, kind := range allEntityKinds {
		if EntityKind(candidate) == kind {
			return kind, true
		}
	}
	if kind, ok := pluralKinds[candidate]; ok {
		return kind, true
	}
	return "", false
}
