package enums

import "strings"

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

// Decided reports whether the status is terminal. Approved and rejected
// entities never transition again.
func (s ModerationStatus) Decided() bool {
	return s == ModerationStatusApproved || s == ModerationStatusRejected
}

func ParseModerationStatus(raw string) (ModerationStatus, bool) {
	switch ModerationStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ModerationStatusPending:
		return ModerationStatusPending, true
	case ModerationStatusApproved:
		return ModerationStatusApproved, true
	case ModerationStatusRejected:
		return ModerationStatusRejected, true
	default:
		return "", false
	}
}
