package ipam

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// VlanRange rango numérico configurado para VLANs asignables.
type VlanRange struct {
	Min int
	Max int
}

// vlanDrawAttempts intentos de sorteo antes de declarar el rango agotado.
const vlanDrawAttempts = 16

// Ledger administra los recursos escasos de red: direcciones IP por subred y
// VLANs del rango configurado. Es el único componente del sistema con
// requisitos de exclusión mutua: los reclamos sobre la misma subred se
// serializan, y el repositorio remata con una actualización condicional para
// que dos procesos tampoco puedan tomar la misma fila.
type Ledger struct {
	ips   repository.IPAddressRepository
	vlans repository.VlanRepository
	vlan  VlanRange

	mu      sync.Mutex
	subnets map[string]*sync.Mutex // candado por subred
}

// NewLedger construye el ledger.
func NewLedger(ips repository.IPAddressRepository, vlans repository.VlanRepository, vlan VlanRange) *Ledger {
	return &Ledger{
		ips:     ips,
		vlans:   vlans,
		vlan:    vlan,
		subnets: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) subnetLock(subnetID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.subnets[subnetID]
	if !ok {
		m = &sync.Mutex{}
		l.subnets[subnetID] = m
	}
	return m
}

// ClaimAvailable toma la IP disponible de menor dirección en la subred y la
// asigna al abonado. Pool agotado devuelve domain.ErrPoolExhausted: resultado
// esperado y no fatal que el coordinador convierte en "sin IP estática
// disponible".
func (l *Ledger) ClaimAvailable(ctx context.Context, subnetID, subscriberID string) (*entity.IpAddress, error) {
	if subnetID == "" || subscriberID == "" {
		return nil, domain.ErrInvalidInput
	}
	lock := l.subnetLock(subnetID)
	lock.Lock()
	defer lock.Unlock()

	ip, err := l.ips.ClaimLowestAvailable(ctx, subnetID, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("reclamar IP en subred %s: %w", subnetID, err)
	}
	if ip == nil {
		return nil, fmt.Errorf("subred %s: %w", subnetID, domain.ErrPoolExhausted)
	}
	return ip, nil
}

// Get devuelve una dirección del pool por su ID, o nil si no existe.
func (l *Ledger) Get(ctx context.Context, ipID string) (*entity.IpAddress, error) {
	if ipID == "" {
		return nil, domain.ErrInvalidInput
	}
	ip, err := l.ips.GetByID(ctx, ipID)
	if err != nil {
		return nil, fmt.Errorf("consultar IP %s: %w", ipID, err)
	}
	return ip, nil
}

// Release devuelve la IP al pool. Idempotente: liberar una IP ya disponible es
// un no-op, no un error.
func (l *Ledger) Release(ctx context.Context, ipID string) error {
	if ipID == "" {
		return domain.ErrInvalidInput
	}
	if err := l.ips.Release(ctx, ipID); err != nil {
		return fmt.Errorf("liberar IP %s: %w", ipID, err)
	}
	return nil
}

// AssignVlan sortea una VLAN del rango configurado y la registra. Una colisión
// con una VLAN ya asignada se resuelve con un nuevo sorteo (no un contador
// secuencial); agotados los intentos devuelve domain.ErrPoolExhausted.
// Idempotente por abonado: si ya tiene una VLAN se devuelve esa misma, así un
// reproceso de la activación no consume otro número del rango.
func (l *Ledger) AssignVlan(ctx context.Context, companyID, subscriberID string) (int, error) {
	if l.vlan.Max < l.vlan.Min {
		return 0, fmt.Errorf("rango de VLAN inválido [%d, %d]: %w", l.vlan.Min, l.vlan.Max, domain.ErrInvalidInput)
	}
	if existing, err := l.vlans.GetBySubscriber(ctx, subscriberID); err != nil {
		return 0, fmt.Errorf("consultar VLAN del abonado %s: %w", subscriberID, err)
	} else if existing != nil {
		return existing.VlanID, nil
	}
	span := l.vlan.Max - l.vlan.Min + 1
	for attempt := 0; attempt < vlanDrawAttempts; attempt++ {
		candidate := l.vlan.Min + rand.Intn(span)
		assignment := &entity.VlanAssignment{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			VlanID:       candidate,
			SubscriberID: subscriberID,
			CreatedAt:    time.Now(),
		}
		err := l.vlans.Create(ctx, assignment)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return 0, fmt.Errorf("registrar VLAN %d: %w", candidate, err)
		}
		// Colisión: volver a sortear.
	}
	return 0, fmt.Errorf("rango VLAN [%d, %d]: %w", l.vlan.Min, l.vlan.Max, domain.ErrPoolExhausted)
}

// AssignedVlan devuelve la VLAN ya asignada al abonado, o 0 si no tiene.
// A diferencia de AssignVlan, nunca sortea una nueva.
func (l *Ledger) AssignedVlan(ctx context.Context, subscriberID string) (int, error) {
	a, err := l.vlans.GetBySubscriber(ctx, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("consultar VLAN del abonado %s: %w", subscriberID, err)
	}
	if a == nil {
		return 0, nil
	}
	return a.VlanID, nil
}
