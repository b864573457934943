package usecase

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conecta-isp/internal/application/dto"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// maxSubnetBits límite inferior del prefijo: /22 siembra hasta 1022 hosts.
const maxSubnetBits = 22

// NetworkUseCase administración del inventario de red: registrar subredes y
// sembrar su pool de direcciones.
type NetworkUseCase struct {
	subnets repository.SubnetRepository
	ips     repository.IPAddressRepository
}

// NewNetworkUseCase construye el caso de uso.
func NewNetworkUseCase(subnets repository.SubnetRepository, ips repository.IPAddressRepository) *NetworkUseCase {
	return &NetworkUseCase{subnets: subnets, ips: ips}
}

// CreateSubnet registra la subred y siembra cada host del CIDR (sin dirección
// de red ni broadcast) como available. Las direcciones se guardan en formato
// de ancho fijo para que el orden lexicográfico coincida con el numérico.
func (uc *NetworkUseCase) CreateSubnet(ctx context.Context, companyID string, in dto.CreateSubnetRequest) (*dto.SubnetResponse, error) {
	prefix, err := netip.ParsePrefix(in.CIDR)
	if err != nil || !prefix.Addr().Is4() {
		return nil, domain.ErrInvalidInput
	}
	if prefix.Bits() < maxSubnetBits {
		return nil, domain.ErrInvalidInput // subred demasiado grande para sembrar
	}

	subnet := &entity.Subnet{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		CIDR:        prefix.Masked().String(),
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.subnets.Create(ctx, subnet); err != nil {
		return nil, err
	}

	seeded := 0
	for addr := prefix.Masked().Addr().Next(); prefix.Contains(addr); addr = addr.Next() {
		next := addr.Next()
		if !prefix.Contains(next) {
			break // broadcast fuera del pool
		}
		ip := &entity.IpAddress{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			SubnetID:  subnet.ID,
			Address:   fixedWidth(addr),
			Status:    entity.IPStatusAvailable,
			UpdatedAt: time.Now(),
		}
		if err := uc.ips.Create(ctx, ip); err != nil {
			return nil, fmt.Errorf("sembrar %s: %w", addr, err)
		}
		seeded++
	}

	out := toSubnetResponse(subnet)
	out.PoolSize = seeded
	return out, nil
}

// ListSubnets lista las subredes de la empresa.
func (uc *NetworkUseCase) ListSubnets(ctx context.Context, companyID string) (*dto.SubnetListResponse, error) {
	list, err := uc.subnets.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SubnetResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSubnetResponse(s))
	}
	return &dto.SubnetListResponse{Items: items}, nil
}

// ListIPs lista las direcciones de una subred de la empresa.
func (uc *NetworkUseCase) ListIPs(ctx context.Context, companyID, subnetID string) (*dto.IPAddressListResponse, error) {
	subnet, err := uc.subnets.GetByID(ctx, subnetID)
	if err != nil {
		return nil, err
	}
	if subnet == nil {
		return nil, domain.ErrNotFound
	}
	if subnet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	list, err := uc.ips.ListBySubnet(ctx, subnetID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IPAddressResponse, 0, len(list))
	for _, ip := range list {
		items = append(items, dto.IPAddressResponse{
			ID:           ip.ID,
			SubnetID:     ip.SubnetID,
			Address:      ip.Address,
			Status:       ip.Status,
			SubscriberID: ip.SubscriberID,
		})
	}
	return &dto.IPAddressListResponse{Items: items}, nil
}

// fixedWidth normaliza una IPv4 a octetos de tres dígitos (010.020.030.001).
func fixedWidth(addr netip.Addr) string {
	b := addr.As4()
	return fmt.Sprintf("%03d.%03d.%03d.%03d", b[0], b[1], b[2], b[3])
}

func toSubnetResponse(s *entity.Subnet) *dto.SubnetResponse {
	if s == nil {
		return nil
	}
	return &dto.SubnetResponse{
		ID:          s.ID,
		CompanyID:   s.CompanyID,
		CIDR:        s.CIDR,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}
