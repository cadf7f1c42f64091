package audit

import (
	"time"

	"github.com/google/uuid"
)

// Record is one row of the audit trail written by the auditor binary.
type Record struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Action     string
	Subject    string
	OccurredAt time.Time
}
