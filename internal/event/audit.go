package event

import "time"

const (
	AuditRecordsTopic = "audit.records"
	EventAuditRecord  = "audit.record"
)

type AuditRecordEvent struct {
	EventType      string                 `json:"event_type"`
	OccurredAt     time.Time              `json:"occurred_at"`
	BusinessUnitID string                 `json:"business_unit_id"`
	TableName      string                 `json:"table_name"`
	RecordID       string                 `json:"record_id"`
	Action         string                 `json:"action"`
	OldValues      map[string]interface{} `json:"old_values,omitempty"`
	NewValues      map[string]interface{} `json:"new_values,omitempty"`
	UserID         string                 `json:"user_id,omitempty"`
	UserName       string                 `json:"user_name,omitempty"`
}
