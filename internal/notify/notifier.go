// Package notify pushes entity-change messages to realtime rooms after a
// mutation commits. Rooms are keyed by uuid: usually an event id, but
// company-wide changes (entity create, pin, delete) go to a room keyed by the
// company id. Delivery is fire-and-forget: failures are logged and never
// surface to the API caller.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/pkg/queue"
)

// Change statuses carried in the message envelope.
const (
	StatusNew    = "new"
	StatusUpdate = "update"
	StatusDelete = "delete"
	StatusClone  = "clone"
)

// Entity type labels carried in the message envelope.
const (
	TypeIncidentDivision = "incident_division"
	TypeIncidentType     = "incident_type"
	TypeDepartment       = "department"
	TypeIncident         = "incident"
	TypeEvent            = "event"
)

// ChunkSize caps how many items one realtime message carries; larger change
// sets are split into multiple messages.
const ChunkSize = 15

const enqueueTimeout = 5 * time.Second

// Message is the envelope delivered to event-room subscribers.
type Message struct {
	Data     interface{} `json:"data"`
	Status   string      `json:"status"`
	Type     string      `json:"type"`
	NewEntry bool        `json:"new_entry"`
}

// Notifier enqueues publish jobs for the background worker.
type Notifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewNotifier creates a notifier backed by the job queue.
func NewNotifier(q *queue.Queue, logger *zap.Logger) *Notifier {
	return &Notifier{queue: q, logger: logger}
}

// EntityChanged publishes a single-entity change to the room.
func (n *Notifier) EntityChanged(roomID uuid.UUID, entityType, status string, newEntry bool, data interface{}) {
	n.publish(roomID, entityType, Message{
		Data:     data,
		Status:   status,
		Type:     entityType,
		NewEntry: newEntry,
	})
}

// BulkChanged publishes a multi-entity change, split into fixed-size chunks
// so no single message grows unbounded.
func (n *Notifier) BulkChanged(roomID uuid.UUID, entityType, status string, items []interface{}) {
	for _, chunk := range chunkItems(items, ChunkSize) {
		n.publish(roomID, entityType, Message{
			Data:     chunk,
			Status:   status,
			Type:     entityType,
			NewEntry: status == StatusNew || status == StatusClone,
		})
	}
}

func chunkItems(items []interface{}, size int) [][]interface{} {
	var chunks [][]interface{}
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func (n *Notifier) publish(roomID uuid.UUID, name string, msg Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		n.logger.Warn("notify: marshal failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()
	if err := n.queue.EnqueuePublish(ctx, queue.PublishPayload{
		EventID: roomID,
		Name:    name,
		Body:    body,
	}); err != nil {
		n.logger.Warn("notify: enqueue failed",
			zap.String("room_id", roomID.String()),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}

// IDList adapts a uuid slice into the interface slice BulkChanged expects.
func IDList(ids []uuid.UUID) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
