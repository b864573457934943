package repository

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// SubnetRepository define el puerto de persistencia para Subnet.
type SubnetRepository interface {
	Create(ctx context.Context, subnet *entity.Subnet) error
	GetByID(ctx context.Context, id string) (*entity.Subnet, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Subnet, error)
}

// IPAddressRepository define el puerto de persistencia para el pool de IPs.
// ClaimLowestAvailable es la única vía por la que una IP pasa a assigned.
type IPAddressRepository interface {
	Create(ctx context.Context, ip *entity.IpAddress) error
	GetByID(ctx context.Context, id string) (*entity.IpAddress, error)
	// ClaimLowestAvailable toma la IP disponible de menor dirección en la
	// subred y la marca assigned para el abonado, en una sola operación
	// condicional: dos reclamos concurrentes nunca obtienen la misma fila.
	// Devuelve nil (sin error) si el pool está agotado.
	ClaimLowestAvailable(ctx context.Context, subnetID, subscriberID string) (*entity.IpAddress, error)
	// Release devuelve la IP al pool. Idempotente: liberar una IP ya
	// disponible es un no-op.
	Release(ctx context.Context, ipID string) error
	ListBySubnet(ctx context.Context, subnetID string) ([]*entity.IpAddress, error)
}

// VlanRepository define el puerto de persistencia para asignaciones de VLAN.
type VlanRepository interface {
	// Create registra la VLAN; devuelve domain.ErrDuplicate si el número ya
	// está tomado en la empresa (el llamador sortea de nuevo).
	Create(ctx context.Context, assignment *entity.VlanAssignment) error
	// GetBySubscriber devuelve la VLAN ya asignada al abonado, o nil si no
	// tiene ninguna.
	GetBySubscriber(ctx context.Context, subscriberID string) (*entity.VlanAssignment, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.VlanAssignment, error)
}
