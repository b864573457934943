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

var (
	_ repository.SubnetRepository    = (*SubnetRepo)(nil)
	_ repository.IPAddressRepository = (*IPAddressRepo)(nil)
	_ repository.VlanRepository      = (*VlanRepo)(nil)
)

// SubnetRepo implementación del puerto SubnetRepository sobre PostgreSQL.
type SubnetRepo struct {
	q Querier
}

// NewSubnetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubnetRepository(q Querier) *SubnetRepo {
	return &SubnetRepo{q: q}
}

// Create persiste una subred.
func (r *SubnetRepo) Create(ctx context.Context, subnet *entity.Subnet) error {
	query := `
		INSERT INTO subnets (id, company_id, cidr, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, subnet.ID, subnet.CompanyID, subnet.CIDR, subnet.Description, subnet.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert subnet: %w", err)
	}
	return nil
}

// GetByID obtiene una subred por ID.
func (r *SubnetRepo) GetByID(ctx context.Context, id string) (*entity.Subnet, error) {
	var s entity.Subnet
	err := r.q.QueryRow(ctx,
		`SELECT id, company_id, cidr, description, created_at FROM subnets WHERE id = $1`, id,
	).Scan(&s.ID, &s.CompanyID, &s.CIDR, &s.Description, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subnet: %w", err)
	}
	return &s, nil
}

// ListByCompany lista las subredes de una empresa.
func (r *SubnetRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Subnet, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, company_id, cidr, description, created_at FROM subnets WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list subnets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Subnet
	for rows.Next() {
		var s entity.Subnet
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.CIDR, &s.Description, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subnet: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// IPAddressRepo implementación del puerto IPAddressRepository sobre PostgreSQL.
type IPAddressRepo struct {
	q Querier
}

// NewIPAddressRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIPAddressRepository(q Querier) *IPAddressRepo {
	return &IPAddressRepo{q: q}
}

const ipColumns = `id, company_id, subnet_id, address, status, subscriber_id, updated_at`

// Create persiste una dirección del pool.
func (r *IPAddressRepo) Create(ctx context.Context, ip *entity.IpAddress) error {
	query := `
		INSERT INTO ip_addresses (` + ipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		ip.ID, ip.CompanyID, ip.SubnetID, ip.Address, ip.Status, ip.SubscriberID, ip.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ip address: %w", err)
	}
	return nil
}

// GetByID obtiene una dirección por ID.
func (r *IPAddressRepo) GetByID(ctx context.Context, id string) (*entity.IpAddress, error) {
	var ip entity.IpAddress
	err := r.q.QueryRow(ctx, `SELECT `+ipColumns+` FROM ip_addresses WHERE id = $1`, id).Scan(
		&ip.ID, &ip.CompanyID, &ip.SubnetID, &ip.Address, &ip.Status, &ip.SubscriberID, &ip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ip address: %w", err)
	}
	return &ip, nil
}

// ClaimLowestAvailable marca assigned la IP disponible de menor dirección en
// la subred, en una sola sentencia. El SKIP LOCKED evita que dos reclamos
// concurrentes se bloqueen o ganen la misma fila. Devuelve nil si el pool
// está agotado.
func (r *IPAddressRepo) ClaimLowestAvailable(ctx context.Context, subnetID, subscriberID string) (*entity.IpAddress, error) {
	query := `
		UPDATE ip_addresses
		SET status = 'assigned', subscriber_id = $2, updated_at = now()
		WHERE id = (
			SELECT id FROM ip_addresses
			WHERE subnet_id = $1 AND status = 'available'
			ORDER BY address
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + ipColumns
	var ip entity.IpAddress
	err := r.q.QueryRow(ctx, query, subnetID, subscriberID).Scan(
		&ip.ID, &ip.CompanyID, &ip.SubnetID, &ip.Address, &ip.Status, &ip.SubscriberID, &ip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim ip address: %w", err)
	}
	return &ip, nil
}

// Release devuelve la IP al pool. Idempotente: si ya estaba disponible el
// UPDATE no afecta filas y no es error.
func (r *IPAddressRepo) Release(ctx context.Context, ipID string) error {
	query := `
		UPDATE ip_addresses SET status = 'available', subscriber_id = NULL, updated_at = now()
		WHERE id = $1 AND status = 'assigned'`
	if _, err := r.q.Exec(ctx, query, ipID); err != nil {
		return fmt.Errorf("release ip address: %w", err)
	}
	return nil
}

// ListBySubnet lista las direcciones de una subred en orden.
func (r *IPAddressRepo) ListBySubnet(ctx context.Context, subnetID string) ([]*entity.IpAddress, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+ipColumns+` FROM ip_addresses WHERE subnet_id = $1 ORDER BY address`, subnetID)
	if err != nil {
		return nil, fmt.Errorf("list ip addresses: %w", err)
	}
	defer rows.Close()
	var list []*entity.IpAddress
	for rows.Next() {
		var ip entity.IpAddress
		if err := rows.Scan(&ip.ID, &ip.CompanyID, &ip.SubnetID, &ip.Address, &ip.Status, &ip.SubscriberID, &ip.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ip address: %w", err)
		}
		list = append(list, &ip)
	}
	return list, rows.Err()
}

// VlanRepo implementación del puerto VlanRepository sobre PostgreSQL.
type VlanRepo struct {
	q Querier
}

// NewVlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVlanRepository(q Querier) *VlanRepo {
	return &VlanRepo{q: q}
}

// Create registra la asignación. El índice único (company_id, vlan_id) hace
// cumplir la unicidad; la violación se mapea a ErrDuplicate para que el
// llamador sortee otro número.
func (r *VlanRepo) Create(ctx context.Context, assignment *entity.VlanAssignment) error {
	query := `
		INSERT INTO vlan_assignments (id, company_id, vlan_id, subscriber_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		assignment.ID, assignment.CompanyID, assignment.VlanID, assignment.SubscriberID, assignment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vlan assignment: %w", err)
	}
	return nil
}

// GetBySubscriber devuelve la VLAN asignada al abonado, o nil si no tiene.
func (r *VlanRepo) GetBySubscriber(ctx context.Context, subscriberID string) (*entity.VlanAssignment, error) {
	row := r.q.QueryRow(ctx,
		`SELECT id, company_id, vlan_id, subscriber_id, created_at FROM vlan_assignments WHERE subscriber_id = $1`,
		subscriberID)
	var a entity.VlanAssignment
	err := row.Scan(&a.ID, &a.CompanyID, &a.VlanID, &a.SubscriberID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get vlan assignment: %w", err)
	}
	return &a, nil
}

// ListByCompany lista las VLAN asignadas de una empresa.
func (r *VlanRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.VlanAssignment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, company_id, vlan_id, subscriber_id, created_at FROM vlan_assignments WHERE company_id = $1 ORDER BY vlan_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list vlan assignments: %w", err)
	}
	defer rows.Close()
	var list []*entity.VlanAssignment
	for rows.Next() {
		var v entity.VlanAssignment
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.VlanID, &v.SubscriberID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vlan assignment: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
