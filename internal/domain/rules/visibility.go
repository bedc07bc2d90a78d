package rules

import (
	"github.com/memoryline/yearbook/internal/domain/enums"
)

// Viewer is the identity a listing is rendered for. The zero value is an
// anonymous visitor.
type Viewer struct {
	UserID  int64
	IsAdmin bool
}

func (v Viewer) Anonymous() bool {
	return v.UserID == 0 && !v.IsAdmin
}

// Entity is the moderation-relevant slice of any moderatable record.
type Entity struct {
	OwnerID int64
	Status  enums.ModerationStatus
}

// Visible decides whether one entity is included in a listing rendered for
// the viewer:
//
//   - admins see everything, whatever the status;
//   - owners always see their own submissions, pending and rejected included;
//   - everyone else sees only approved entities that pass the kind's
//     completeness gate.
func Visible(viewer Viewer, entity Entity, complete bool) bool {
	if viewer.IsAdmin {
		return true
	}
	if entity.OwnerID != 0 && entity.OwnerID == viewer.UserID {
		return true
	}
	return entity.Status == enums.ModerationStatusApproved && complete
}
