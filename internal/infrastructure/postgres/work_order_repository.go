package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

// WorkOrderRepo implementación del puerto WorkOrderRepository sobre PostgreSQL.
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

const workOrderColumns = `id, company_id, order_type, subscriber_id, status, staff_id, ticket_id, notes, scheduled_for, created_at, updated_at`

// Create persiste una nueva orden de trabajo.
func (r *WorkOrderRepo) Create(ctx context.Context, order *entity.WorkOrder) error {
	query := `
		INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.CompanyID, order.OrderType, order.SubscriberID, order.Status,
		order.StaffID, order.TicketID, order.Notes, order.ScheduledFor,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`, id)
}

// GetBySubscriberAndType devuelve la orden más reciente del tipo dado para el
// abonado, o nil.
func (r *WorkOrderRepo) GetBySubscriberAndType(ctx context.Context, subscriberID, orderType string) (*entity.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders
		WHERE subscriber_id = $1 AND order_type = $2 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, subscriberID, orderType)
}

// Update actualiza una orden existente.
func (r *WorkOrderRepo) Update(ctx context.Context, order *entity.WorkOrder) error {
	query := `
		UPDATE work_orders SET status = $2, staff_id = $3, ticket_id = $4, notes = $5, scheduled_for = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.Status, order.StaffID, order.TicketID, order.Notes,
		order.ScheduledFor, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	return nil
}

// ListByCompany lista órdenes por empresa con paginación.
func (r *WorkOrderRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrder
	for rows.Next() {
		var o entity.WorkOrder
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.OrderType, &o.SubscriberID, &o.Status,
			&o.StaffID, &o.TicketID, &o.Notes, &o.ScheduledFor, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

func (r *WorkOrderRepo) getOne(ctx context.Context, query string, args ...any) (*entity.WorkOrder, error) {
	var o entity.WorkOrder
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.CompanyID, &o.OrderType, &o.SubscriberID, &o.Status,
		&o.StaffID, &o.TicketID, &o.Notes, &o.ScheduledFor, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return &o, nil
}
