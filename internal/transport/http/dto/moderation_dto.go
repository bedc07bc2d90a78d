package dto

import "time"

type ModerationQueueItem struct {
	ItemID      int64     `json:"item_id"`
	Kind        string    `json:"kind"`
	EntityID    int64     `json:"entity_id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title,omitempty"`
	Preview     string    `json:"preview,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	QueueSize   int       `json:"queue_size"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ModerationPendingResponse struct {
	Results []ModerationQueueItem `json:"results"`
}

type ModerationRejectRequest struct {
	Reason string `json:"reason"`
}

type ModerationDecisionResponse struct {
	Kind         string    `json:"kind"`
	EntityID     int64     `json:"entity_id"`
	Status       string    `json:"status"`
	ModeratorID  int64     `json:"moderator_id"`
	RejectReason string    `json:"reject_reason,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}
