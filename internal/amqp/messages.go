package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ReceiptSyncMessage asks the worker to mirror one journal entry. It carries
// only the ID and version; the worker reads the entry from the journal.
type ReceiptSyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptSyncMessage(id string, version int64) *ReceiptSyncMessage {
	return &ReceiptSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *ReceiptSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptSyncMessageFromJSON decodes a message; one without an ID is rejected.
func ReceiptSyncMessageFromJSON(data []byte) (*ReceiptSyncMessage, error) {
	var msg ReceiptSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("sync message without receipt id")
	}
	return &msg, nil
}
