package rules

import (
	"strings"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/domain/model"
)

// CompletenessGate decides whether an approved entity carries enough payload
// to be shown to third parties. The gate applies on top of approval: an
// approved-but-incomplete profile stays hidden from strangers while remaining
// visible to its owner and to admins.
type CompletenessGate func(entity any) bool

// Policy maps entity kinds to their completeness gates. A kind without a gate
// is complete by definition. Keeping the mapping explicit makes the
// profile-only gate a visible policy choice rather than logic buried in a
// listing.
type Policy map[enums.EntityKind]CompletenessGate

// DefaultPolicy gates profiles only: a profile needs a nickname, a bio and a
// photo before strangers see it. Events, photos, memories, projects and user
// accounts are shown on approval alone.
func DefaultPolicy() Policy {
	return Policy{
		enums.EntityKindProfile: ProfileComplete,
	}
}

func (p Policy) Complete(kind enums.EntityKind, entity any) bool {
	gate, ok := p[kind]
	if !ok || gate == nil {
		return true
	}
	return gate(entity)
}

func ProfileComplete(entity any) bool {
	profile, ok := entity.(model.Profile)
	if !ok {
		return false
	}
	return strings.TrimSpace(profile.Nickname) != "" &&
		strings.TrimSpace(profile.Bio) != "" &&
		strings.TrimSpace(profile.PhotoKey) != ""
}
