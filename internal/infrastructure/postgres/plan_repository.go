package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

var _ repository.ServicePlanRepository = (*PlanRepo)(nil)

// PlanRepo implementación del puerto ServicePlanRepository sobre PostgreSQL.
type PlanRepo struct {
	q Querier
}

// NewPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPlanRepository(q Querier) *PlanRepo {
	return &PlanRepo{q: q}
}

const planColumns = `id, company_id, name, price, installation_fee, ip_assignment_type, connection_type,
	subnet_id, download_kbps, upload_kbps, created_at, updated_at`

// Create persiste un nuevo plan de servicio.
func (r *PlanRepo) Create(ctx context.Context, plan *entity.ServicePlan) error {
	query := `
		INSERT INTO service_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		plan.ID, plan.CompanyID, plan.Name, plan.Price, plan.InstallationFee,
		plan.IPAssignmentType, plan.ConnectionType, plan.SubnetID,
		plan.DownloadKbps, plan.UploadKbps, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service plan: %w", err)
	}
	return nil
}

// GetByID obtiene un plan por ID.
func (r *PlanRepo) GetByID(ctx context.Context, id string) (*entity.ServicePlan, error) {
	var p entity.ServicePlan
	err := r.q.QueryRow(ctx, `SELECT `+planColumns+` FROM service_plans WHERE id = $1`, id).Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.Price, &p.InstallationFee,
		&p.IPAssignmentType, &p.ConnectionType, &p.SubnetID,
		&p.DownloadKbps, &p.UploadKbps, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service plan: %w", err)
	}
	return &p, nil
}

// Update actualiza un plan existente.
func (r *PlanRepo) Update(ctx context.Context, plan *entity.ServicePlan) error {
	query := `
		UPDATE service_plans SET name = $2, price = $3, installation_fee = $4, ip_assignment_type = $5,
			connection_type = $6, subnet_id = $7, download_kbps = $8, upload_kbps = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		plan.ID, plan.Name, plan.Price, plan.InstallationFee, plan.IPAssignmentType,
		plan.ConnectionType, plan.SubnetID, plan.DownloadKbps, plan.UploadKbps, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service plan: %w", err)
	}
	return nil
}

// ListByCompany lista planes por empresa con paginación.
func (r *PlanRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.ServicePlan, error) {
	query := `SELECT ` + planColumns + ` FROM service_plans WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list service plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServicePlan
	for rows.Next() {
		var p entity.ServicePlan
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Price, &p.InstallationFee,
			&p.IPAssignmentType, &p.ConnectionType, &p.SubnetID,
			&p.DownloadKbps, &p.UploadKbps, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service plan: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
