package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.SubscriberRepository = (*SubscriberRepo)(nil)

// SubscriberRepo implementación del puerto SubscriberRepository sobre PostgreSQL.
type SubscriberRepo struct {
	q Querier
}

// NewSubscriberRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriberRepository(q Querier) *SubscriberRepo {
	return &SubscriberRepo{q: q}
}

const subscriberColumns = `id, company_id, account_number, first_name, last_name, phone, email, device_token,
	status, service_plan_id, connection_type, assigned_ip_id, radius_username, account_balance,
	next_due_date, lead_id, created_at, updated_at`

// Create persiste un nuevo abonado.
func (r *SubscriberRepo) Create(ctx context.Context, sub *entity.Subscriber) error {
	query := `
		INSERT INTO subscribers (` + subscriberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		sub.ID, sub.CompanyID, sub.AccountNumber, sub.FirstName, sub.LastName,
		sub.Phone, sub.Email, sub.DeviceToken, sub.Status, sub.ServicePlanID,
		sub.ConnectionType, sub.AssignedIPID, sub.RadiusUsername, sub.AccountBalance,
		sub.NextDueDate, sub.LeadID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

// GetByID obtiene un abonado por ID.
func (r *SubscriberRepo) GetByID(ctx context.Context, id string) (*entity.Subscriber, error) {
	return r.getOne(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = $1`, id)
}

// GetByLeadID devuelve el abonado creado a partir del lead, o nil.
func (r *SubscriberRepo) GetByLeadID(ctx context.Context, leadID string) (*entity.Subscriber, error) {
	return r.getOne(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE lead_id = $1`, leadID)
}

// Update actualiza un abonado existente. AccountNumber y CompanyID son
// inmutables y no entran en el SET.
func (r *SubscriberRepo) Update(ctx context.Context, sub *entity.Subscriber) error {
	query := `
		UPDATE subscribers SET first_name = $2, last_name = $3, phone = $4, email = $5, device_token = $6,
			status = $7, service_plan_id = $8, connection_type = $9, assigned_ip_id = $10,
			radius_username = $11, account_balance = $12, next_due_date = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		sub.ID, sub.FirstName, sub.LastName, sub.Phone, sub.Email, sub.DeviceToken,
		sub.Status, sub.ServicePlanID, sub.ConnectionType, sub.AssignedIPID,
		sub.RadiusUsername, sub.AccountBalance, sub.NextDueDate, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	return nil
}

// UpdateIf persiste el abonado completo solo si el estado actual coincide con
// expected. El WHERE condicional hace que la activación sea todo-o-nada: el
// estado, la IP asignada y el próximo vencimiento cambian en la misma fila y
// la misma sentencia.
func (r *SubscriberRepo) UpdateIf(ctx context.Context, sub *entity.Subscriber, expected string) (bool, error) {
	query := `
		UPDATE subscribers SET first_name = $3, last_name = $4, phone = $5, email = $6, device_token = $7,
			status = $8, service_plan_id = $9, connection_type = $10, assigned_ip_id = $11,
			radius_username = $12, account_balance = $13, next_due_date = $14, updated_at = $15
		WHERE id = $1 AND status = $2`
	cmd, err := r.q.Exec(ctx, query,
		sub.ID, expected, sub.FirstName, sub.LastName, sub.Phone, sub.Email, sub.DeviceToken,
		sub.Status, sub.ServicePlanID, sub.ConnectionType, sub.AssignedIPID,
		sub.RadiusUsername, sub.AccountBalance, sub.NextDueDate, sub.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update subscriber if: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// UpdateStatusIf cambia el estado solo si el actual coincide con expected.
// La condición en el WHERE hace la comparación y el cambio atómicos: dos
// transiciones concurrentes nunca ganan ambas.
func (r *SubscriberRepo) UpdateStatusIf(ctx context.Context, id, expected, next string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE subscribers SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, expected, next,
	)
	if err != nil {
		return false, fmt.Errorf("update subscriber status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListByCompany lista abonados por empresa con paginación.
func (r *SubscriberRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SubscriberRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Subscriber, error) {
	row := r.q.QueryRow(ctx, query, args...)
	s, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return s, nil
}

func scanSubscriber(row pgx.Row) (*entity.Subscriber, error) {
	var s entity.Subscriber
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.AccountNumber, &s.FirstName, &s.LastName,
		&s.Phone, &s.Email, &s.DeviceToken, &s.Status, &s.ServicePlanID,
		&s.ConnectionType, &s.AssignedIPID, &s.RadiusUsername, &s.AccountBalance,
		&s.NextDueDate, &s.LeadID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
