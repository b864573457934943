package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

// MessageRepo implementación del puerto MessageRepository sobre PostgreSQL.
type MessageRepo struct {
	q Querier
}

// NewMessageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMessageRepository(q Querier) *MessageRepo {
	return &MessageRepo{q: q}
}

const messageColumns = `id, company_id, recipient, channel, title, content, trigger_event, correlation_id, status, error_detail, created_at`

// Create persiste un intento de notificación.
func (r *MessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		msg.ID, msg.CompanyID, msg.Recipient, msg.Channel, msg.Title, msg.Content,
		msg.TriggerEvent, msg.CorrelationID, msg.Status, msg.ErrorDetail, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListByCompany lista el historial de mensajes por empresa con paginación.
func (r *MessageRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.Message
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Recipient, &m.Channel, &m.Title, &m.Content,
			&m.TriggerEvent, &m.CorrelationID, &m.Status, &m.ErrorDetail, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
