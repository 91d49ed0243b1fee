package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/event"
)

// Entry describes one audited change. Recording is fire-and-forget: a
// failed audit write never affects the operation that produced it.
type Entry struct {
	BusinessUnitID uuid.UUID
	TableName      string
	RecordID       string
	Action         string
	OldValues      map[string]interface{}
	NewValues      map[string]interface{}
	UserID         string
	UserName       string
}

type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// EventRecorder publishes audit entries onto the event bus, where the
// back-office audit consumer persists them.
type EventRecorder struct {
	publisher events.Publisher
	logger    apt.Logger
}

func NewEventRecorder(publisher events.Publisher, logger apt.Logger) *EventRecorder {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventRecorder{publisher: publisher, logger: logger}
}

func (r *EventRecorder) Record(ctx context.Context, e Entry) {
	evt := event.AuditRecordEvent{
		EventType:      event.EventAuditRecord,
		OccurredAt:     time.Now(),
		BusinessUnitID: e.BusinessUnitID.String(),
		TableName:      e.TableName,
		RecordID:       e.RecordID,
		Action:         e.Action,
		OldValues:      e.OldValues,
		NewValues:      e.NewValues,
		UserID:         e.UserID,
		UserName:       e.UserName,
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		r.logger.Errorf("cannot marshal audit record: %v", err)
		return
	}

	if err := r.publisher.Publish(ctx, event.AuditRecordsTopic, msg); err != nil {
		r.logger.Errorf("cannot publish audit record for %s/%s: %v", e.TableName, e.RecordID, err)
	}
}

// Noop discards audit entries.
type Noop struct{}

func (Noop) Record(ctx context.Context, e Entry) {}
