package amqp

import (
	"encoding/json"
	"time"
)

// KYCScreeningMessage asks the worker to run the CRB check for a stored
// document. It carries only the ID; the worker reloads the row and skips
// documents that are no longer pending.
type KYCScreeningMessage struct {
	DocumentID int64     `json:"document_id"`
	Filename   string    `json:"filename"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewKYCScreeningMessage creates a screening message stamped with the current time
func NewKYCScreeningMessage(documentID int64, filename string) *KYCScreeningMessage {
	return &KYCScreeningMessage{
		DocumentID: documentID,
		Filename:   filename,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *KYCScreeningMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// KYCScreeningMessageFromJSON parses a message body
func KYCScreeningMessageFromJSON(data []byte) (*KYCScreeningMessage, error) {
	var msg KYCScreeningMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
