package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

// TicketRepo implementación del puerto TicketRepository sobre PostgreSQL.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

const ticketColumns = `id, company_id, subscriber_id, subject, description, status, priority, work_order_id, created_at, updated_at`

// Create persiste un nuevo ticket.
func (r *TicketRepo) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ticket.ID, ticket.CompanyID, ticket.SubscriberID, ticket.Subject, ticket.Description,
		ticket.Status, ticket.Priority, ticket.WorkOrderID, ticket.CreatedAt, ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetByID obtiene un ticket por ID.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	var t entity.Ticket
	err := r.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id).Scan(
		&t.ID, &t.CompanyID, &t.SubscriberID, &t.Subject, &t.Description,
		&t.Status, &t.Priority, &t.WorkOrderID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

// Update actualiza un ticket existente.
func (r *TicketRepo) Update(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		UPDATE tickets SET subject = $2, description = $3, status = $4, priority = $5, work_order_id = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		ticket.ID, ticket.Subject, ticket.Description, ticket.Status, ticket.Priority,
		ticket.WorkOrderID, ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

// ListByCompany lista tickets por empresa con paginación.
func (r *TicketRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ticket
	for rows.Next() {
		var t entity.Ticket
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.SubscriberID, &t.Subject, &t.Description,
			&t.Status, &t.Priority, &t.WorkOrderID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
