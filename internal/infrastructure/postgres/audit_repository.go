package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implementación del puerto AuditLogRepository sobre PostgreSQL.
// Los snapshots before/after se guardan como JSONB.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta un registro de auditoría. Nunca hay UPDATE ni DELETE sobre
// esta tabla.
func (r *AuditLogRepo) Create(ctx context.Context, entry *entity.AuditLogEntry) error {
	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}
	query := `
		INSERT INTO audit_log (id, company_id, actor_id, action, collection, document_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		entry.ID, entry.CompanyID, entry.ActorID, entry.Action, entry.Collection,
		entry.DocumentID, before, after, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByDocument lista el historial de un documento en orden cronológico.
func (r *AuditLogRepo) ListByDocument(ctx context.Context, collection, documentID string) ([]*entity.AuditLogEntry, error) {
	query := `
		SELECT id, company_id, actor_id, action, collection, document_id, before, after, created_at
		FROM audit_log WHERE collection = $1 AND document_id = $2 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, collection, documentID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ActorID, &e.Action, &e.Collection,
			&e.DocumentID, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, fmt.Errorf("unmarshal before snapshot: %w", err)
		}
		if e.After, err = unmarshalSnapshot(after); err != nil {
			return nil, fmt.Errorf("unmarshal after snapshot: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func marshalSnapshot(snap map[string]any) ([]byte, error) {
	if snap == nil {
		return nil, nil
	}
	return json.Marshal(snap)
}

func unmarshalSnapshot(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var snap map[string]any
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}
