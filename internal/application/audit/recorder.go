package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// Recorder escribe el log de auditoría append-only con snapshots before/after.
// Nunca falla la operación que lo dispara: perder un registro de auditoría es
// preferible a revertir una transacción de negocio ya completada, así que los
// errores de escritura se loguean y se tragan.
type Recorder struct {
	repo repository.AuditLogRepository
	log  *logger.Logger
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record persiste una entrada de auditoría. before/after pueden ser nil
// (create no tiene before; delete no tiene after).
func (r *Recorder) Record(ctx context.Context, companyID, actorID string, action events.Action, collection, documentID string, before, after any) {
	entry := &entity.AuditLogEntry{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		ActorID:    actorID,
		Action:     string(action),
		Collection: collection,
		DocumentID: documentID,
		Before:     snapshot(before),
		After:      snapshot(after),
		CreatedAt:  time.Now(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.log.Error().
			Str("collection", collection).
			Str("document_id", documentID).
			Str("action", string(action)).
			Err(err).
			Msg("no se pudo escribir la entrada de auditoría")
	}
}

// Handle implementa events.Handler: auditoría genérica de toda mutación
// publicada en el bus. Siempre devuelve nil.
func (r *Recorder) Handle(ctx context.Context, ev events.EntityEvent) error {
	r.Record(ctx, ev.CompanyID, ev.ActorID, ev.Action, ev.Collection, ev.DocumentID, ev.Before, ev.After)
	return nil
}

// snapshot convierte la entidad a mapa vía JSON para almacenarla como jsonb.
func snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"_marshal_error": err.Error()}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"_marshal_error": err.Error()}
	}
	return m
}
