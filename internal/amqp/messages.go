package amqp

import (
	"encoding/json"
	"time"
)

// Record kinds carried in sync messages.
const (
	KindTrip           = "trip"
	KindEquipment      = "equipment"
	KindExpense        = "expense"
	KindMonthlyExpense = "monthly_employer_expense"
	KindBackup         = "backup"
)

// Mutation operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// RecordSyncMessage is a lightweight change notification: only the record
// kind, id and operation travel over the wire. The worker fetches current
// state from the local store before mirroring anything.
type RecordSyncMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(kind, id, op string) *RecordSyncMessage {
	return &RecordSyncMessage{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
