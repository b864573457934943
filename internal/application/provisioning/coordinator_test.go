package provisioning_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/application/ipam"
	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/application/provisioning"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memLeads struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead
}

func newMemLeads() *memLeads { return &memLeads{leads: make(map[string]*entity.Lead)} }

func (r *memLeads) Create(_ context.Context, l *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.leads[l.ID] = &cp
	return nil
}

func (r *memLeads) GetByID(_ context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLeads) Update(_ context.Context, l *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.leads[l.ID] = &cp
	return nil
}

func (r *memLeads) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.Lead, error) {
	return nil, nil
}

type memSubs struct {
	mu   sync.Mutex
	subs map[string]*entity.Subscriber
	// updateIfErr simula un fallo transitorio del almacén en la siguiente
	// llamada a UpdateIf; se consume al usarse.
	updateIfErr error
}

func newMemSubs() *memSubs { return &memSubs{subs: make(map[string]*entity.Subscriber)} }

func (r *memSubs) Create(_ context.Context, s *entity.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *memSubs) GetByID(_ context.Context, id string) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSubs) GetByLeadID(_ context.Context, leadID string) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.LeadID != nil && *s.LeadID == leadID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSubs) Update(_ context.Context, s *entity.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.subs[s.ID] = &cp
	return nil
}

func (r *memSubs) UpdateIf(_ context.Context, s *entity.Subscriber, expected string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateIfErr != nil {
		err := r.updateIfErr
		r.updateIfErr = nil
		return false, err
	}
	cur, ok := r.subs[s.ID]
	if !ok || cur.Status != expected {
		return false, nil
	}
	cp := *s
	r.subs[s.ID] = &cp
	return true, nil
}

func (r *memSubs) UpdateStatusIf(_ context.Context, id, expected, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok || s.Status != expected {
		return false, nil
	}
	s.Status = next
	return true, nil
}

func (r *memSubs) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.Subscriber, error) {
	return nil, nil
}

func (r *memSubs) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

type memPlans struct {
	mu    sync.Mutex
	plans map[string]*entity.ServicePlan
}

func newMemPlans() *memPlans { return &memPlans{plans: make(map[string]*entity.ServicePlan)} }

func (r *memPlans) Create(_ context.Context, p *entity.ServicePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[p.ID] = &cp
	return nil
}

func (r *memPlans) GetByID(_ context.Context, id string) (*entity.ServicePlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPlans) Update(_ context.Context, _ *entity.ServicePlan) error { return nil }

func (r *memPlans) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.ServicePlan, error) {
	return nil, nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*entity.WorkOrder
}

func newMemOrders() *memOrders { return &memOrders{orders: make(map[string]*entity.WorkOrder)} }

func (r *memOrders) Create(_ context.Context, o *entity.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id string) (*entity.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) Update(_ context.Context, o *entity.WorkOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrders) GetBySubscriberAndType(_ context.Context, subscriberID, orderType string) (*entity.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.SubscriberID == subscriberID && o.OrderType == orderType {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrders) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.WorkOrder, error) {
	return nil, nil
}

func (r *memOrders) bySubscriber(subscriberID string) []*entity.WorkOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WorkOrder
	for _, o := range r.orders {
		if o.SubscriberID == subscriberID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out
}

type memInvoices struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
	items    map[string][]*entity.InvoiceItem
}

func newMemInvoices() *memInvoices {
	return &memInvoices{
		invoices: make(map[string]*entity.Invoice),
		items:    make(map[string][]*entity.InvoiceItem),
	}
}

func (r *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoices) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.InvoiceID] = append(r.items[item.InvoiceID], &cp)
	return nil
}

func (r *memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoices) GetItemsByInvoiceID(_ context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.InvoiceItem(nil), r.items[invoiceID]...), nil
}

func (r *memInvoices) Update(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoices) ListBySubscriber(_ context.Context, subscriberID string) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.SubscriberID == subscriberID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInvoices) GetOldestUnpaidBySubscriber(_ context.Context, subscriberID string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *entity.Invoice
	for _, inv := range r.invoices {
		if inv.SubscriberID != subscriberID || inv.Status == entity.InvoiceStatusPaid || inv.Status == entity.InvoiceStatusWaived {
			continue
		}
		if oldest == nil || inv.CreatedAt.Before(oldest.CreatedAt) {
			oldest = inv
		}
	}
	if oldest == nil {
		return nil, nil
	}
	cp := *oldest
	return &cp, nil
}

// memIPRepo imita la semántica del repositorio postgres: reclamo condicional
// sobre status=available con orden por dirección.
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
	cp := *ip
	r.ips[ip.ID] = &cp
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
	var chosen *entity.IpAddress
	for _, ip := range r.ips {
		if ip.SubnetID != subnetID || ip.Status != entity.IPStatusAvailable {
			continue
		}
		if chosen == nil || ip.Address < chosen.Address {
			chosen = ip
		}
	}
	if chosen == nil {
		return nil, nil
	}
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

func (r *memVlanRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.taken)
}

// fakeTx pasa los repos en memoria directo al callback; no hay transacción
// real que simular.
type fakeTx struct {
	subs     *memSubs
	orders   *memOrders
	invoices *memInvoices
	leads    *memLeads
}

func (tx *fakeTx) RunConversion(ctx context.Context, fn func(
	subs repository.SubscriberRepository,
	orders repository.WorkOrderRepository,
	invoices repository.InvoiceRepository,
	leads repository.LeadRepository,
) error) error {
	return fn(tx.subs, tx.orders, tx.invoices, tx.leads)
}

type fakeRadius struct {
	mu             sync.Mutex
	provisionErr   error
	reprovisionErr error
	provisions     []provisioning.ProvisionRequest
	reprovisions   []provisioning.ProvisionRequest
	deprovisions   []string
}

func (f *fakeRadius) Provision(_ context.Context, req provisioning.ProvisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.provisionErr != nil {
		return f.provisionErr
	}
	f.provisions = append(f.provisions, req)
	return nil
}

func (f *fakeRadius) Reprovision(_ context.Context, req provisioning.ProvisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reprovisionErr != nil {
		return f.reprovisionErr
	}
	f.reprovisions = append(f.reprovisions, req)
	return nil
}

func (f *fakeRadius) Deprovision(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deprovisions = append(f.deprovisions, username)
	return nil
}

type memIdem struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemIdem() *memIdem { return &memIdem{keys: make(map[string]bool)} }

func (s *memIdem) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdem) Mark(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Input
}

func (f *fakeNotifier) Send(_ context.Context, in notify.Input) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return notify.Result{Status: notify.StatusSent, MessageID: "M1"}
}

func (f *fakeNotifier) byTrigger(trigger string) []notify.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Input
	for _, in := range f.sent {
		if in.TriggerEvent == trigger {
			out = append(out, in)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	leads    *memLeads
	subs     *memSubs
	plans    *memPlans
	orders   *memOrders
	invoices *memInvoices
	ips      *memIPRepo
	vlans    *memVlanRepo
	radius   *fakeRadius
	idem     *memIdem
	notifier *fakeNotifier
	bus      *events.Bus
}

// newEnv cablea el coordinador a un bus real con las mismas suscripciones que
// el arranque de la aplicación.
func newEnv(policy billing.ReconnectPolicy) *env {
	log := logger.Nop()
	e := &env{
		leads:    newMemLeads(),
		subs:     newMemSubs(),
		plans:    newMemPlans(),
		orders:   newMemOrders(),
		invoices: newMemInvoices(),
		ips:      newMemIPRepo(),
		vlans:    newMemVlanRepo(),
		radius:   &fakeRadius{},
		idem:     newMemIdem(),
		notifier: &fakeNotifier{},
		bus:      events.NewBus(log),
	}
	ledger := ipam.NewLedger(e.ips, e.vlans, ipam.VlanRange{Min: 100, Max: 4094})
	tx := &fakeTx{subs: e.subs, orders: e.orders, invoices: e.invoices, leads: e.leads}
	coord := provisioning.NewCoordinator(
		e.leads, e.subs, e.plans, e.orders, e.invoices,
		tx, ledger, e.radius, e.idem, e.notifier, e.bus, policy, log,
	)
	e.bus.Subscribe(events.CollectionLeads, coord)
	e.bus.Subscribe(events.CollectionWorkOrders, coord)
	e.bus.Subscribe(events.CollectionPayments, coord)
	e.bus.Subscribe(events.CollectionSubscribers, coord)
	return e
}

func (e *env) seedPlan(id string, price, fee string, ipType, subnetID string) *entity.ServicePlan {
	plan := &entity.ServicePlan{
		ID:               id,
		CompanyID:        "C1",
		Name:             "Hogar 10M",
		Price:            mustDec(price),
		InstallationFee:  mustDec(fee),
		IPAssignmentType: ipType,
		ConnectionType:   entity.ConnectionPPPoE,
		SubnetID:         subnetID,
		DownloadKbps:     10240,
		UploadKbps:       2048,
	}
	_ = e.plans.Create(context.Background(), plan)
	return plan
}

func (e *env) seedSubscriber(id, status, planID string, balance string) *entity.Subscriber {
	sub := &entity.Subscriber{
		ID:             id,
		CompanyID:      "C1",
		AccountNumber:  "ACC-1000",
		FirstName:      "Alice",
		LastName:       "Smith",
		Phone:          "+573001112233",
		Status:         status,
		ServicePlanID:  planID,
		ConnectionType: entity.ConnectionPPPoE,
		RadiusUsername: "acc-1000",
		AccountBalance: mustDec(balance),
	}
	_ = e.subs.Create(context.Background(), sub)
	return sub
}

func (e *env) seedIPs(subnetID string, n int) {
	for i := 0; i < n; i++ {
		_ = e.ips.Create(context.Background(), &entity.IpAddress{
			ID:        fmt.Sprintf("%s-ip-%03d", subnetID, i+1),
			CompanyID: "C1",
			SubnetID:  subnetID,
			Address:   fmt.Sprintf("010.020.030.%03d", i+1),
			Status:    entity.IPStatusAvailable,
		})
	}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func completedOrderEvent(order *entity.WorkOrder, fromStatus string) events.EntityEvent {
	before := *order
	before.Status = fromStatus
	after := *order
	after.Status = entity.WorkOrderStatusCompleted
	return events.EntityEvent{
		Collection: events.CollectionWorkOrders,
		Action:     events.ActionUpdate,
		DocumentID: order.ID,
		CompanyID:  order.CompanyID,
		ActorID:    "U1",
		Before:     &before,
		After:      &after,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversión de lead
// ──────────────────────────────────────────────────────────────────────────────

func TestConversionDeLead_CreaAbonadoOrdenYFactura(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "80000", entity.IPAssignStaticPool, "SN1")
	lead := &entity.Lead{
		ID:              "L1",
		CompanyID:       "C1",
		Status:          entity.LeadStatusConverted,
		Name:            "Alice Smith",
		Phone:           "+573001112233",
		Email:           "alice@example.com",
		PlanID:          "P1",
		ServiceLocation: "Nodo Norte, Cra 10 #20-30",
	}
	require.NoError(t, e.leads.Create(context.Background(), lead))

	before := *lead
	before.Status = entity.LeadStatusSiteSurvey
	require.NoError(t, e.bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionLeads,
		Action:     events.ActionUpdate,
		DocumentID: lead.ID,
		CompanyID:  lead.CompanyID,
		ActorID:    "U1",
		Before:     &before,
		After:      lead,
	}))

	sub, err := e.subs.GetByLeadID(context.Background(), "L1")
	require.NoError(t, err)
	require.NotNil(t, sub, "la conversión debe crear el abonado")
	assert.Equal(t, entity.SubscriberStatusPendingInstallation, sub.Status)
	assert.Regexp(t, `^ACC-\d+$`, sub.AccountNumber)
	assert.Equal(t, "Alice", sub.FirstName)
	assert.Equal(t, "Smith", sub.LastName)
	assert.True(t, sub.AccountBalance.Equal(mustDec("125000")), "saldo = plan + instalación, fue %s", sub.AccountBalance)

	orders := e.orders.bySubscriber(sub.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.WorkOrderNewInstallation, orders[0].OrderType)
	assert.Equal(t, entity.WorkOrderStatusPending, orders[0].Status)
	assert.Contains(t, orders[0].Notes, "Nodo Norte")

	invs, err := e.invoices.ListBySubscriber(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	assert.True(t, invs[0].AmountDue.Equal(mustDec("125000")))
	items, _ := e.invoices.GetItemsByInvoiceID(context.Background(), invs[0].ID)
	assert.Len(t, items, 2, "línea del plan + cargo de instalación")

	linked, _ := e.leads.GetByID(context.Background(), "L1")
	require.NotNil(t, linked.SubscriberID)
	assert.Equal(t, sub.ID, *linked.SubscriberID)

	assert.Len(t, e.notifier.byTrigger("lead-converted"), 1, "una sola bienvenida")
}

func TestConversionDeLead_ReprocesoNoDuplicaDocumentos(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	lead := &entity.Lead{
		ID: "L1", CompanyID: "C1", Status: entity.LeadStatusConverted,
		Name: "Bob Rojas", Phone: "+573004445566", PlanID: "P1",
	}
	require.NoError(t, e.leads.Create(context.Background(), lead))

	ev := events.EntityEvent{
		Collection: events.CollectionLeads, Action: events.ActionUpdate,
		DocumentID: lead.ID, CompanyID: lead.CompanyID, After: lead,
	}
	require.NoError(t, e.bus.Publish(context.Background(), ev))
	// Re-disparo del mismo evento con el snapshot original (sin vincular)
	require.NoError(t, e.bus.Publish(context.Background(), ev))

	assert.Equal(t, 1, e.subs.count(), "reprocesar la conversión no crea otro abonado")
	assert.Len(t, e.notifier.byTrigger("lead-converted"), 1)
}

func TestConversionDeLead_EstadoNoConvertedEsNoOp(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	lead := &entity.Lead{ID: "L1", CompanyID: "C1", Status: entity.LeadStatusContacted, PlanID: "P1"}
	require.NoError(t, e.leads.Create(context.Background(), lead))

	require.NoError(t, e.bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionLeads, Action: events.ActionUpdate,
		DocumentID: lead.ID, CompanyID: lead.CompanyID, After: lead,
	}))

	assert.Equal(t, 0, e.subs.count())
}

// ──────────────────────────────────────────────────────────────────────────────
// Activación por instalación completada
// ──────────────────────────────────────────────────────────────────────────────

func TestActivacion_PlanPoolEstatico(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 3)
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))

	require.NoError(t, e.bus.Publish(context.Background(), completedOrderEvent(order, entity.WorkOrderStatusInProgress)))

	got, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusActive, got.Status)
	require.NotNil(t, got.AssignedIPID, "plan static-pool debe reclamar IP")
	ip, _ := e.ips.GetByID(context.Background(), *got.AssignedIPID)
	assert.Equal(t, "010.020.030.001", ip.Address, "se reclama la menor dirección disponible")
	assert.False(t, got.NextDueDate.IsZero())

	require.Len(t, e.radius.provisions, 1)
	assert.Equal(t, "acc-1000", e.radius.provisions[0].Username)
	assert.Equal(t, "010.020.030.001", e.radius.provisions[0].StaticIP)
	assert.False(t, e.radius.provisions[0].Suspended)

	assert.NotEmpty(t, e.notifier.byTrigger("subscriber-activated"))
}

func TestActivacion_PoolAgotadoAbortaYEsReintentable(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	// Sin IPs sembradas: el pool está vacío
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))
	ev := completedOrderEvent(order, entity.WorkOrderStatusInProgress)

	require.NoError(t, e.bus.Publish(context.Background(), ev))

	got, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusPendingInstallation, got.Status,
		"pool agotado aborta la activación sin transicionar")
	assert.Empty(t, e.radius.provisions, "sin IP no se toca RADIUS")

	// El abort no consumió el evento: tras reponer el pool, el re-disparo activa
	e.seedIPs("SN1", 1)
	require.NoError(t, e.bus.Publish(context.Background(), ev))
	got, _ = e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusActive, got.Status)
}

func TestActivacion_FalloDeRadiusDevuelveLaIP(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 1)
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))
	ev := completedOrderEvent(order, entity.WorkOrderStatusInProgress)

	e.radius.provisionErr = domain.ErrAdapterFailure
	require.NoError(t, e.bus.Publish(context.Background(), ev))

	got, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusPendingInstallation, got.Status)
	ips, _ := e.ips.ListBySubnet(context.Background(), "SN1")
	require.Len(t, ips, 1)
	assert.Equal(t, entity.IPStatusAvailable, ips[0].Status, "la IP reclamada vuelve al pool")

	// RADIUS se recupera: el mismo evento ahora completa la activación
	e.radius.provisionErr = nil
	require.NoError(t, e.bus.Publish(context.Background(), ev))
	got, _ = e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusActive, got.Status)
}

func TestActivacion_FalloAlGuardarNoDejaEstadoParcial(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 1)
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))
	ev := completedOrderEvent(order, entity.WorkOrderStatusInProgress)

	e.subs.updateIfErr = fmt.Errorf("conexión perdida con la base")
	require.NoError(t, e.bus.Publish(context.Background(), ev))

	got, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusPendingInstallation, got.Status,
		"un fallo al persistir no deja al abonado a medio activar")
	assert.Nil(t, got.AssignedIPID)
	ips, _ := e.ips.ListBySubnet(context.Background(), "SN1")
	require.Len(t, ips, 1)
	assert.Equal(t, entity.IPStatusAvailable, ips[0].Status, "la IP reclamada vuelve al pool")
	assert.Empty(t, e.notifier.byTrigger("subscriber-activated"))

	// El almacén se recupera: el mismo evento completa la activación entera
	require.NoError(t, e.bus.Publish(context.Background(), ev))
	got, _ = e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusActive, got.Status)
	require.NotNil(t, got.AssignedIPID)
}

func TestActivacion_ConexionDHCPAsignaVlan(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	sub.ConnectionType = entity.ConnectionIPoEDHCP
	require.NoError(t, e.subs.Update(context.Background(), sub))
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))
	ev := completedOrderEvent(order, entity.WorkOrderStatusInProgress)

	require.NoError(t, e.bus.Publish(context.Background(), ev))
	require.NoError(t, e.bus.Publish(context.Background(), ev))

	require.Len(t, e.radius.provisions, 1)
	vlan := e.radius.provisions[0].Vlan
	assert.GreaterOrEqual(t, vlan, 100, "la sesión ipoe-dhcp lleva VLAN del rango configurado")
	assert.LessOrEqual(t, vlan, 4094)
	assert.Equal(t, 1, e.vlans.count(), "reprocesar no consume otra VLAN")
}

func TestActivacion_ReprocesoEsNoOp(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	sub := e.seedSubscriber("S1", entity.SubscriberStatusPendingInstallation, "P1", "45000")
	order := &entity.WorkOrder{
		ID: "WO1", CompanyID: "C1", OrderType: entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID, Status: entity.WorkOrderStatusCompleted,
	}
	require.NoError(t, e.orders.Create(context.Background(), order))
	ev := completedOrderEvent(order, entity.WorkOrderStatusInProgress)

	require.NoError(t, e.bus.Publish(context.Background(), ev))
	require.NoError(t, e.bus.Publish(context.Background(), ev))

	assert.Len(t, e.radius.provisions, 1, "reprocesar no re-aprovisiona")
	assert.Len(t, e.notifier.byTrigger("subscriber-activated"), 2, "SMS y push, una sola vez cada uno")
}

// ──────────────────────────────────────────────────────────────────────────────
// Pago, conciliación y reconexión
// ──────────────────────────────────────────────────────────────────────────────

func paymentEvent(p *entity.Payment) events.EntityEvent {
	return events.EntityEvent{
		Collection: events.CollectionPayments,
		Action:     events.ActionCreate,
		DocumentID: p.ID,
		CompanyID:  p.CompanyID,
		ActorID:    "U1",
		After:      p,
	}
}

func TestPago_ConciliaFacturaYReconecta(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	e.seedSubscriber("S1", entity.SubscriberStatusSuspended, "P1", "45000")
	inv := &entity.Invoice{
		ID: "F1", CompanyID: "C1", SubscriberID: "S1", Number: "FAC-1",
		Status: entity.InvoiceStatusOverdue, AmountDue: mustDec("45000"),
		AmountPaid: decimal.Zero, CreatedAt: time.Now(),
	}
	require.NoError(t, e.invoices.Create(context.Background(), inv))

	payment := &entity.Payment{
		ID: "PG1", CompanyID: "C1", SubscriberID: "S1",
		AmountPaid: mustDec("45000"), Method: entity.PaymentMethodCash,
	}
	require.NoError(t, e.bus.Publish(context.Background(), paymentEvent(payment)))

	gotInv, _ := e.invoices.GetByID(context.Background(), "F1")
	assert.Equal(t, entity.InvoiceStatusPaid, gotInv.Status)
	assert.True(t, gotInv.AmountPaid.Equal(mustDec("45000")))

	sub, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusActive, sub.Status, "any-payment reconecta")
	assert.True(t, sub.AccountBalance.IsZero())

	require.Len(t, e.radius.reprovisions, 1)
	assert.False(t, e.radius.reprovisions[0].Suspended)
	assert.Len(t, e.notifier.byTrigger("subscriber-reconnected"), 1, "una sola notificación de reconexión")
}

func TestPago_LaReconexionConservaLaIPEstatica(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 1)
	ip, err := e.ips.ClaimLowestAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)
	sub := e.seedSubscriber("S1", entity.SubscriberStatusSuspended, "P1", "45000")
	sub.AssignedIPID = &ip.ID
	require.NoError(t, e.subs.Update(context.Background(), sub))

	payment := &entity.Payment{
		ID: "PG1", CompanyID: "C1", SubscriberID: "S1",
		AmountPaid: mustDec("45000"), Method: entity.PaymentMethodCash,
	}
	require.NoError(t, e.bus.Publish(context.Background(), paymentEvent(payment)))

	require.Len(t, e.radius.reprovisions, 1)
	// Reprovision es un upsert del lado del servidor: omitir la IP la borraría
	assert.Equal(t, "010.020.030.001", e.radius.reprovisions[0].StaticIP,
		"la reconexión debe reenviar la IP ya asignada al abonado")
	assert.False(t, e.radius.reprovisions[0].Suspended)
}

func TestPago_PoliticaFullBalanceNoReconectaConParcial(t *testing.T) {
	e := newEnv(billing.ReconnectFullBalance)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	e.seedSubscriber("S1", entity.SubscriberStatusSuspended, "P1", "45000")

	payment := &entity.Payment{
		ID: "PG1", CompanyID: "C1", SubscriberID: "S1",
		AmountPaid: mustDec("20000"), Method: entity.PaymentMethodTransfer,
	}
	require.NoError(t, e.bus.Publish(context.Background(), paymentEvent(payment)))

	sub, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Equal(t, entity.SubscriberStatusSuspended, sub.Status, "queda saldo: sigue suspendido")
	assert.True(t, sub.AccountBalance.Equal(mustDec("25000")))
	assert.Empty(t, e.radius.reprovisions)
	assert.Empty(t, e.notifier.byTrigger("subscriber-reconnected"))
}

func TestPago_ReprocesoNoDuplicaMontos(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	e.seedSubscriber("S1", entity.SubscriberStatusActive, "P1", "45000")
	inv := &entity.Invoice{
		ID: "F1", CompanyID: "C1", SubscriberID: "S1", Number: "FAC-1",
		Status: entity.InvoiceStatusUnpaid, AmountDue: mustDec("45000"),
		AmountPaid: decimal.Zero, CreatedAt: time.Now(),
	}
	require.NoError(t, e.invoices.Create(context.Background(), inv))

	payment := &entity.Payment{
		ID: "PG1", CompanyID: "C1", SubscriberID: "S1",
		AmountPaid: mustDec("20000"), Method: entity.PaymentMethodCash,
	}
	require.NoError(t, e.bus.Publish(context.Background(), paymentEvent(payment)))
	require.NoError(t, e.bus.Publish(context.Background(), paymentEvent(payment)))

	gotInv, _ := e.invoices.GetByID(context.Background(), "F1")
	assert.True(t, gotInv.AmountPaid.Equal(mustDec("20000")), "el mismo pago no se concilia dos veces")
	sub, _ := e.subs.GetByID(context.Background(), "S1")
	assert.True(t, sub.AccountBalance.Equal(mustDec("25000")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Suspensión y baja
// ──────────────────────────────────────────────────────────────────────────────

func TestSuspension_AplicaPerfilYNotifica(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignDynamic, "")
	sub := e.seedSubscriber("S1", entity.SubscriberStatusSuspended, "P1", "45000")
	before := *sub
	before.Status = entity.SubscriberStatusActive

	require.NoError(t, e.bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, Before: &before, After: sub,
	}))

	require.Len(t, e.radius.reprovisions, 1)
	assert.True(t, e.radius.reprovisions[0].Suspended, "la suspensión aplica el perfil restringido")
	assert.Len(t, e.notifier.byTrigger("subscriber-suspended"), 1)
}

func TestSuspension_ReenviaLaIPAsignadaEnElPerfil(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 1)
	ip, err := e.ips.ClaimLowestAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)
	sub := e.seedSubscriber("S1", entity.SubscriberStatusSuspended, "P1", "45000")
	sub.AssignedIPID = &ip.ID
	require.NoError(t, e.subs.Update(context.Background(), sub))
	before := *sub
	before.Status = entity.SubscriberStatusActive

	require.NoError(t, e.bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, Before: &before, After: sub,
	}))

	require.Len(t, e.radius.reprovisions, 1)
	assert.True(t, e.radius.reprovisions[0].Suspended)
	assert.Equal(t, "010.020.030.001", e.radius.reprovisions[0].StaticIP,
		"el perfil de suspensión conserva la IP de la sesión")
}

func TestBaja_LiberaIPYDesaprovisiona(t *testing.T) {
	e := newEnv(billing.ReconnectAnyPayment)
	e.seedPlan("P1", "45000", "0", entity.IPAssignStaticPool, "SN1")
	e.seedIPs("SN1", 1)
	ip, err := e.ips.ClaimLowestAvailable(context.Background(), "SN1", "S1")
	require.NoError(t, err)

	sub := e.seedSubscriber("S1", entity.SubscriberStatusDeactivated, "P1", "0")
	sub.AssignedIPID = &ip.ID
	require.NoError(t, e.subs.Update(context.Background(), sub))
	before := *sub
	before.Status = entity.SubscriberStatusActive

	require.NoError(t, e.bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, Before: &before, After: sub,
	}))

	got, _ := e.ips.GetByID(context.Background(), ip.ID)
	assert.Equal(t, entity.IPStatusAvailable, got.Status, "la IP vuelve al pool")
	assert.Equal(t, []string{"acc-1000"}, e.radius.deprovisions)

	final, _ := e.subs.GetByID(context.Background(), "S1")
	assert.Nil(t, final.AssignedIPID)
	assert.Len(t, e.notifier.byTrigger("subscriber-deactivated"), 1)
}
