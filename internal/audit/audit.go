package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"placements/internal/queue"
)

// Action tags an audit entry.
type Action string

// Audit actions. One entry is written per successful admin mutation.
const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// MessageType marks queue messages carrying audit entries.
const MessageType = "audit"

// Entry is an immutable append-only audit record. OldData is present for
// UPDATE/DELETE, NewData for CREATE/UPDATE; both are full-record snapshots
// captured at mutation time.
type Entry struct {
	ID        string          `json:"id"`
	AdminID   string          `json:"adminId"`
	Action    Action          `json:"action"`
	TableName string          `json:"tableName"`
	RecordID  string          `json:"recordId"`
	OldData   json.RawMessage `json:"oldData,omitempty"`
	NewData   json.RawMessage `json:"newData,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is the persistence surface for audit entries.
type Store interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}

var mutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "placements_mutations_total",
	Help: "Admin mutations recorded in the audit trail, by table and action.",
}, []string{"table", "action"})

// Recorder writes audit entries and fans them out on the queue. Both paths
// are best-effort: a failed write is logged, never propagated, and the entity
// mutation it describes is not rolled back.
type Recorder struct {
	store Store
	q     queue.Queue
}

// NewRecorder creates a recorder. q may be nil to skip fan-out.
func NewRecorder(store Store, q queue.Queue) *Recorder {
	return &Recorder{store: store, q: q}
}

// Record captures one mutation. Snapshots must be marshalable records or nil;
// they are serialized immediately since a deleted record no longer exists by
// the time a consumer would look.
func (r *Recorder) Record(ctx context.Context, adminID string, action Action, table, recordID string, oldData, newData any) {
	if r == nil {
		return
	}
	e := &Entry{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		OldData:   marshalSnapshot(oldData),
		NewData:   marshalSnapshot(newData),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.Insert(ctx, e); err != nil {
		log.Printf("audit: insert failed for %s %s %s: %v", action, table, recordID, err)
		return
	}
	mutations.WithLabelValues(table, string(action)).Inc()

	if r.q == nil {
		return
	}
	body, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := r.q.Publish(ctx, queue.Message{Type: MessageType, Body: body}); err != nil {
		log.Printf("audit: queue publish failed for %s: %v", e.ID, err)
	}
}

func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("audit: snapshot marshal failed: %v", err)
		return nil
	}
	return data
}
