package modclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

// QueueItem is one pending entity as presented to a moderator.
type QueueItem struct {
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

// Decision is the server's acknowledgement of an applied moderation action.
type Decision struct {
	Kind         string    `json:"kind"`
	EntityID     int64     `json:"entity_id"`
	Status       string    `json:"status"`
	ModeratorID  int64     `json:"moderator_id"`
	RejectReason string    `json:"reject_reason,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// pendingEnvelope tolerates both response shapes: a bare JSON array and a
// paginated {"results": [...]} wrapper. Any other shape is a decode error,
// never an empty queue.
type pendingEnvelope struct {
	items []QueueItem
}

func (e *pendingEnvelope) UnmarshalJSON(data []byte) error {
	var bare []QueueItem
	if err := json.Unmarshal(data, &bare); err == nil {
		e.items = bare
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	results, ok := fields["results"]
	if !ok {
		return errors.New("response is neither a queue array nor a results envelope")
	}
	return json.Unmarshal(results, &e.items)
}

// ListPending fetches the pending queue snapshot for one kind, oldest first.
func (c *Client) ListPending(ctx context.Context, kind enums.EntityKind) ([]QueueItem, error) {
	var envelope pendingEnvelope
	path := fmt.Sprintf("/admin/moderation/%s/pending", kind.Plural())
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.items, nil
}

// Approve flips one pending entity to approved. A conflict means another
// moderator already decided the item.
func (c *Client) Approve(ctx context.Context, kind enums.EntityKind, entityID int64) (Decision, error) {
	var decision Decision
	path := fmt.Sprintf("/admin/moderation/%s/%d/approve", kind.Plural(), entityID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// Reject flips one pending entity to rejected. The reason is mandatory and
// the server enforces it.
func (c *Client) Reject(ctx context.Context, kind enums.EntityKind, entityID int64, reason string) (Decision, error) {
	var decision Decision
	path := fmt.Sprintf("/admin/moderation/%s/%d/reject", kind.Plural(), entityID)
	if err := c.doJSON(ctx, http.MethodPost, path, rejectRequest{Reason: reason}, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}
