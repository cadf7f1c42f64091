// Package events defines the ledger event payloads published to kafka and
// consumed by the auditor.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeUserRegistered  Type = "user_registered"
	TypeCategoryCreated Type = "category_created"
	TypeExpenseCreated  Type = "expense_created"
)

type Event struct {
	Type       Type      `json:"type"`
	UserID     uuid.UUID `json:"userId"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
}

func Marshal(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func Unmarshal(data []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(data, &ev)
	return ev, err
}
