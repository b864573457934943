package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

// LeadRepo implementación del puerto LeadRepository sobre PostgreSQL.
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

const leadColumns = `id, company_id, status, name, phone, email, source, plan_id, partner_id, service_location, subscriber_id, created_at, updated_at`

// Create persiste un nuevo lead.
func (r *LeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		lead.ID, lead.CompanyID, lead.Status, lead.Name, lead.Phone, lead.Email,
		lead.Source, lead.PlanID, lead.PartnerID, lead.ServiceLocation,
		lead.SubscriberID, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID obtiene un lead por ID.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	var l entity.Lead
	err := r.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id).Scan(
		&l.ID, &l.CompanyID, &l.Status, &l.Name, &l.Phone, &l.Email, &l.Source,
		&l.PlanID, &l.PartnerID, &l.ServiceLocation, &l.SubscriberID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

// Update actualiza un lead existente.
func (r *LeadRepo) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET status = $2, name = $3, phone = $4, email = $5, source = $6,
			plan_id = $7, partner_id = $8, service_location = $9, subscriber_id = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		lead.ID, lead.Status, lead.Name, lead.Phone, lead.Email, lead.Source,
		lead.PlanID, lead.PartnerID, lead.ServiceLocation, lead.SubscriberID, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return nil
}

// ListByCompany lista leads por empresa con paginación.
func (r *LeadRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lead
	for rows.Next() {
		var l entity.Lead
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Status, &l.Name, &l.Phone, &l.Email, &l.Source,
			&l.PlanID, &l.PartnerID, &l.ServiceLocation, &l.SubscriberID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
