package ipam_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/ipam"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// memIPRepo imita la semántica del repositorio postgres: el reclamo es una
// operación condicional sobre status=available, con orden por dirección.
type memIPRepo struct {
	mu  sync.Mutex
	ips map[string]*entity.IpAddress
}

func newMemIPRepo() *memIPRepo {
	return &memIPRepo{ips: make(map[string]*entity.IpAddress)}
}

func (r *memIPRepo) Create(_ context.Context, ip *entity.IpAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ips[ip.ID] = ip
	return nil
}

func (r *memIPRepo) GetByID(_ context.Context, id string) (*entity.IpAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ip, ok := r.ips[id]
	if !ok {
		return nil, nil
	}
	cp := *ip
	return &cp, nil
}

func (r *memIPRepo) ClaimLowestAvailable(_ context.Context, subnetID, subscriberID string) (*entity.IpAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*entity.IpAddress
	for _, ip := range r.ips {
		if ip.SubnetID == subnetID && ip.Status == entity.IPStatusAvailable {
			candidates = append(candidates, ip)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Address < candidates[j].Address })
	chosen := candidates[0]
	chosen.Status = entity.IPStatusAssigned
	chosen.SubscriberID = &subscriberID
	chosen.UpdatedAt = time.Now()
	cp := *chosen
	return &cp, nil
}

func (r *memIPRepo) Release(_ context.Context, ipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ip, ok := r.ips[ipID]
	if !ok {
		return domain.ErrNotFound
	}
	ip.Status = entity.IPStatusAvailable
	ip.SubscriberID = nil
	return nil
}

func (r *memIPRepo) ListBySubnet(_ context.Context, subnetID string) ([]*entity.IpAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.IpAddress
	for _, ip := range r.ips {
		if ip.SubnetID == subnetID {
			cp := *ip
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memVlanRepo struct {
	mu           sync.Mutex
	taken        map[int]bool
	bySubscriber map[string]*entity.VlanAssignment
}

func newMemVlanRepo() *memVlanRepo {
	return &memVlanRepo{
		taken:        make(map[int]bool),
		bySubscriber: make(map[string]*entity.VlanAssignment),
	}
}

func (r *memVlanRepo) Create(_ context.Context, a *entity.VlanAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken[a.VlanID] {
		return domain.ErrDuplicate
	}
	r.taken[a.VlanID] = true
	cp := *a
	r.bySubscriber[a.SubscriberID] = &cp
	return nil
}

func (r *memVlanRepo) GetBySubscriber(_ context.Context, subscriberID string) (*entity.VlanAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.bySubscriber[subscriberID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memVlanRepo) ListByCompany(_ context.Context, _ string) ([]*entity.VlanAssignment, error) {
	return nil, nil
}

func seedSubnet(t *testing.T, repo *memIPRepo, subnetID string, addresses ...string) {
	t.Helper()
	for _, addr := range addresses {
		require.NoError(t, repo.Create(context.Background(), &entity.IpAddress{
			ID:       subnetID + "-ip-" + addr,
			SubnetID: subnetID,
			Address:  addr,
			Status:   entity.IPStatusAvailable,
		}))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ClaimAvailable
// ──────────────────────────────────────────────────────────────────────────────

func TestClaimAvailable_TomaLaMenorDireccion(t *testing.T) {
	repo := newMemIPRepo()
	seedSubnet(t, repo, "SN1", "010.020.030.007", "010.020.030.002", "010.020.030.005")
	ledger := ipam.NewLedger(repo, newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 4094})

	ip, err := ledger.ClaimAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)
	assert.Equal(t, "010.020.030.002", ip.Address, "el tie-break es la menor dirección")
	assert.Equal(t, entity.IPStatusAssigned, ip.Status)
	require.NotNil(t, ip.SubscriberID)
	assert.Equal(t, "S1", *ip.SubscriberID)
}

func TestClaimAvailable_PoolAgotado(t *testing.T) {
	repo := newMemIPRepo()
	ledger := ipam.NewLedger(repo, newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 4094})

	_, err := ledger.ClaimAvailable(context.Background(), "SN-vacia", "S1")
	assert.ErrorIs(t, err, domain.ErrPoolExhausted,
		"pool agotado es un resultado esperado, no un crash")
}

// Invariante de unicidad: reclamos concurrentes sobre la misma subred nunca
// devuelven la misma dirección.
func TestClaimAvailable_ConcurrenciaSinDobleAsignacion(t *testing.T) {
	repo := newMemIPRepo()
	const poolSize = 20
	const claimers = 50
	addrs := make([]string, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		addrs = append(addrs, fmt.Sprintf("010.020.030.%03d", i+1))
	}
	seedSubnet(t, repo, "SN1", addrs...)
	ledger := ipam.NewLedger(repo, newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 4094})

	var wg sync.WaitGroup
	results := make(chan string, claimers)
	exhausted := make(chan struct{}, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip, err := ledger.ClaimAvailable(context.Background(), "SN1", "sub")
			if err != nil {
				exhausted <- struct{}{}
				return
			}
			results <- ip.Address
		}(i)
	}
	wg.Wait()
	close(results)
	close(exhausted)

	seen := make(map[string]bool)
	for addr := range results {
		assert.False(t, seen[addr], "dirección %s asignada dos veces", addr)
		seen[addr] = true
	}
	assert.Len(t, seen, poolSize, "todas las IPs del pool deben quedar asignadas")
	assert.Equal(t, claimers-poolSize, len(exhausted), "el resto debe recibir pool agotado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Release
// ──────────────────────────────────────────────────────────────────────────────

func TestRelease_EsIdempotente(t *testing.T) {
	repo := newMemIPRepo()
	seedSubnet(t, repo, "SN1", "010.020.030.001")
	ledger := ipam.NewLedger(repo, newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 4094})

	ip, err := ledger.ClaimAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)

	require.NoError(t, ledger.Release(context.Background(), ip.ID))
	// Liberar de nuevo una IP ya disponible es un no-op, no un error
	require.NoError(t, ledger.Release(context.Background(), ip.ID))

	got, err := repo.GetByID(context.Background(), ip.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.IPStatusAvailable, got.Status)
	assert.Nil(t, got.SubscriberID)
}

func TestRelease_TrasLiberarSePuedeVolverAReclamar(t *testing.T) {
	repo := newMemIPRepo()
	seedSubnet(t, repo, "SN1", "010.020.030.001")
	ledger := ipam.NewLedger(repo, newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 4094})

	first, err := ledger.ClaimAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)
	require.NoError(t, ledger.Release(context.Background(), first.ID))

	second, err := ledger.ClaimAvailable(context.Background(), "SN1", "S2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "S2", *second.SubscriberID)
}

// ──────────────────────────────────────────────────────────────────────────────
// AssignVlan
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignVlan_SorteaDentroDelRango(t *testing.T) {
	ledger := ipam.NewLedger(newMemIPRepo(), newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 110})

	vlan, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, vlan, 100)
	assert.LessOrEqual(t, vlan, 110)
}

func TestAssignVlan_ColisionResorteaYNoRepite(t *testing.T) {
	vlans := newMemVlanRepo()
	// Rango de dos valores: al asignar dos veces deben salir ambos sin repetirse
	ledger := ipam.NewLedger(newMemIPRepo(), vlans, ipam.VlanRange{Min: 200, Max: 201})

	first, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)
	second, err := ledger.AssignVlan(context.Background(), "C1", "S2")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAssignVlan_ReusaLaVlanDelAbonado(t *testing.T) {
	vlans := newMemVlanRepo()
	ledger := ipam.NewLedger(newMemIPRepo(), vlans, ipam.VlanRange{Min: 400, Max: 500})

	first, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)

	// Reprocesar la asignación del mismo abonado no consume otro número
	again, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)
	assert.Equal(t, first, again, "el mismo abonado debe conservar su VLAN")
	assert.Len(t, vlans.taken, 1, "no debe registrarse una segunda VLAN")
}

func TestAssignedVlan_SinAsignacionDevuelveCero(t *testing.T) {
	ledger := ipam.NewLedger(newMemIPRepo(), newMemVlanRepo(), ipam.VlanRange{Min: 100, Max: 110})

	vlan, err := ledger.AssignedVlan(context.Background(), "S-sin-vlan")
	require.NoError(t, err)
	assert.Zero(t, vlan)

	assigned, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)
	got, err := ledger.AssignedVlan(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, assigned, got)
}

func TestAssignVlan_RangoAgotado(t *testing.T) {
	vlans := newMemVlanRepo()
	ledger := ipam.NewLedger(newMemIPRepo(), vlans, ipam.VlanRange{Min: 300, Max: 300})

	_, err := ledger.AssignVlan(context.Background(), "C1", "S1")
	require.NoError(t, err)

	_, err = ledger.AssignVlan(context.Background(), "C1", "S2")
	assert.ErrorIs(t, err, domain.ErrPoolExhausted)
}
