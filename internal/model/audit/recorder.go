package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	entity "github.com/sv1nxmmvt/fincontrol/internal/entity/audit"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/events"
)

type auditStorage interface {
	SaveAuditRecord(ctx context.Context, rec entity.Record) error
}

// Recorder turns consumed ledger events into audit trail rows.
type Recorder struct {
	storage auditStorage
}

func NewRecorder(storage auditStorage) *Recorder {
	return &Recorder{storage: storage}
}

func (r *Recorder) RecordEvent(ctx context.Context, ev events.Event) error {
	rec := entity.Record{
		ID:         uuid.New(),
		UserID:     ev.UserID,
		Action:     string(ev.Type),
		Subject:    ev.Subject,
		OccurredAt: ev.OccurredAt,
	}
	if err := r.storage.SaveAuditRecord(ctx, rec); err != nil {
		return errors.Wrap(err, "record event")
	}

	logger.Info("audit record saved",
		zap.String("action", rec.Action),
		zap.String("userID", rec.UserID.String()))
	return nil
}
