package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/event"
)

type capturePublisher struct {
	topic string
	msg   []byte
	err   error
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	p.topic = topic
	p.msg = msg
	return p.err
}

func TestEventRecorderRecord(t *testing.T) {
	pub := &capturePublisher{}
	rec := NewEventRecorder(pub, apt.NewNoopLogger())

	entry := Entry{
		BusinessUnitID: uuid.New(),
		TableName:      "station_tickets",
		RecordID:       uuid.New().String(),
		Action:         "status_change",
		OldValues:      map[string]interface{}{"status": "pending"},
		NewValues:      map[string]interface{}{"status": "preparing"},
		UserID:         uuid.New().String(),
		UserName:       "Sam",
	}
	rec.Record(context.Background(), entry)

	if pub.topic != event.AuditRecordsTopic {
		t.Errorf("published to %q, want %q", pub.topic, event.AuditRecordsTopic)
	}

	var evt event.AuditRecordEvent
	if err := json.Unmarshal(pub.msg, &evt); err != nil {
		t.Fatalf("cannot decode published event: %v", err)
	}
	if evt.EventType != event.EventAuditRecord {
		t.Errorf("event type = %q, want %q", evt.EventType, event.EventAuditRecord)
	}
	if evt.TableName != entry.TableName || evt.RecordID != entry.RecordID {
		t.Error("event does not carry the entry's record reference")
	}
	if evt.UserName != "Sam" {
		t.Errorf("event user = %q, want %q", evt.UserName, "Sam")
	}
	if evt.NewValues["status"] != "preparing" {
		t.Errorf("event new values = %v", evt.NewValues)
	}
}

func TestEventRecorderPublishFailureIsSwallowed(t *testing.T) {
	pub := &capturePublisher{err: errors.New("nats unavailable")}
	rec := NewEventRecorder(pub, apt.NewNoopLogger())

	// Must not panic or propagate; recording is fire-and-forget.
	rec.Record(context.Background(), Entry{TableName: "station_tickets"})
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.Record(context.Background(), Entry{})
}
