package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conecta-isp/internal/application/billing"
	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/internal/application/ipam"
	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	fsm "github.com/jhoicas/conecta-isp/internal/domain/provisioning"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// Coordinator orquesta el ciclo de vida del abonado reaccionando a eventos del
// bus: conversión de lead, finalización de instalación, suspensión, pago y
// baja. Cada manejador es rejugable: la combinación de claves de idempotencia
// y actualizaciones condicionales de estado hace que re-disparar un evento ya
// procesado sea un no-op.
type Coordinator struct {
	leads       repository.LeadRepository
	subscribers repository.SubscriberRepository
	plans       repository.ServicePlanRepository
	orders      repository.WorkOrderRepository
	invoices    repository.InvoiceRepository
	txRunner    ConversionTxRunner
	ledger      *ipam.Ledger
	radius      RadiusClient
	idem        IdempotencyStore
	notifier    Notifier
	bus         *events.Bus
	reconnect   billing.ReconnectPolicy
	log         *logger.Logger
}

// NewCoordinator construye el coordinador.
func NewCoordinator(
	leads repository.LeadRepository,
	subscribers repository.SubscriberRepository,
	plans repository.ServicePlanRepository,
	orders repository.WorkOrderRepository,
	invoices repository.InvoiceRepository,
	txRunner ConversionTxRunner,
	ledger *ipam.Ledger,
	radius RadiusClient,
	idem IdempotencyStore,
	notifier Notifier,
	bus *events.Bus,
	reconnect billing.ReconnectPolicy,
	log *logger.Logger,
) *Coordinator {
	return &Coordinator{
		leads:       leads,
		subscribers: subscribers,
		plans:       plans,
		orders:      orders,
		invoices:    invoices,
		txRunner:    txRunner,
		ledger:      ledger,
		radius:      radius,
		idem:        idem,
		notifier:    notifier,
		bus:         bus,
		reconnect:   reconnect,
		log:         log,
	}
}

// Handle implementa events.Handler. El coordinador registra el resultado pero
// nunca devuelve error al publicador: un abort deja el evento reintentable y la
// mutación que lo originó ya está confirmada.
func (c *Coordinator) Handle(ctx context.Context, ev events.EntityEvent) error {
	var out Outcome
	switch {
	case ev.Collection == events.CollectionLeads && ev.Action == events.ActionUpdate:
		out = c.HandleLeadConverted(ctx, ev)
	case ev.Collection == events.CollectionWorkOrders && ev.Action == events.ActionUpdate:
		out = c.HandleWorkOrderCompleted(ctx, ev)
	case ev.Collection == events.CollectionPayments && ev.Action == events.ActionCreate:
		out = c.HandlePaymentReceived(ctx, ev)
	case ev.Collection == events.CollectionSubscribers && ev.Action == events.ActionUpdate:
		out = c.HandleSubscriberTransition(ctx, ev)
	default:
		return nil
	}

	evt := c.log.Debug()
	if out.Status == OutcomeAborted {
		evt = c.log.Warn().Err(out.Err)
	}
	evt.
		Str("collection", ev.Collection).
		Str("document_id", ev.DocumentID).
		Str("outcome", out.Status).
		Str("reason", out.Reason).
		Msg("evento de ciclo de vida procesado")
	return nil
}

// ── Conversión de lead ────────────────────────────────────────────────────────

// HandleLeadConverted reacciona al paso de un lead a converted: crea el
// abonado (pending-installation), la orden de instalación y la factura inicial
// en una transacción, y vincula el lead con el abonado creado.
func (c *Coordinator) HandleLeadConverted(ctx context.Context, ev events.EntityEvent) Outcome {
	lead, ok := ev.After.(*entity.Lead)
	if !ok || lead == nil {
		return Skipped("evento sin lead")
	}
	if lead.Status != entity.LeadStatusConverted {
		return Skipped("el lead no está en converted")
	}
	if lead.SubscriberID != nil {
		return Skipped("lead ya vinculado a un abonado")
	}

	key := "lead-converted:" + lead.ID
	if seen, err := c.idem.Seen(ctx, key); err != nil {
		return Aborted("consultar idempotencia", err)
	} else if seen {
		return Skipped("conversión ya procesada")
	}

	// Segunda línea de defensa: el repositorio es la fuente de verdad.
	if existing, err := c.subscribers.GetByLeadID(ctx, lead.ID); err != nil {
		return Aborted("verificar conversión previa", err)
	} else if existing != nil {
		return Skipped("el lead ya tiene abonado " + existing.ID)
	}

	plan, err := c.plans.GetByID(ctx, lead.PlanID)
	if err != nil || plan == nil {
		return Aborted("el plan del lead no existe", err)
	}

	now := time.Now()
	first, last := splitName(lead.Name)
	account := fmt.Sprintf("ACC-%d", now.UnixNano())
	sub := &entity.Subscriber{
		ID:             uuid.New().String(),
		CompanyID:      lead.CompanyID,
		AccountNumber:  account,
		FirstName:      first,
		LastName:       last,
		Phone:          lead.Phone,
		Email:          lead.Email,
		Status:         entity.SubscriberStatusPendingInstallation,
		ServicePlanID:  plan.ID,
		ConnectionType: plan.ConnectionType,
		RadiusUsername: strings.ToLower(account),
		LeadID:         &lead.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order := &entity.WorkOrder{
		ID:           uuid.New().String(),
		CompanyID:    lead.CompanyID,
		OrderType:    entity.WorkOrderNewInstallation,
		SubscriberID: sub.ID,
		Status:       entity.WorkOrderStatusPending,
		Notes:        "Instalación en " + lead.ServiceLocation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var oneOff []billing.Charge
	if plan.InstallationFee.IsPositive() {
		oneOff = append(oneOff, billing.Charge{
			Description: "Cargo de instalación",
			Quantity:    decimal.NewFromInt(1),
			Price:       plan.InstallationFee,
		})
	}
	inv, items := billing.BuildInitialInvoice(sub, plan, oneOff, now)
	sub.AccountBalance = inv.AmountDue

	linked := *lead
	linked.SubscriberID = &sub.ID
	linked.UpdatedAt = now

	err = c.txRunner.RunConversion(ctx, func(
		subs repository.SubscriberRepository,
		orders repository.WorkOrderRepository,
		invoices repository.InvoiceRepository,
		leads repository.LeadRepository,
	) error {
		if err := subs.Create(ctx, sub); err != nil {
			return fmt.Errorf("crear abonado: %w", err)
		}
		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("crear orden de instalación: %w", err)
		}
		if err := invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("crear factura inicial: %w", err)
		}
		for _, item := range items {
			if err := invoices.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("crear línea de factura: %w", err)
			}
		}
		if err := leads.Update(ctx, &linked); err != nil {
			return fmt.Errorf("vincular lead: %w", err)
		}
		return nil
	})
	if err != nil {
		return Aborted("transacción de conversión", err)
	}

	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionCreate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, ActorID: ev.ActorID, After: sub,
	})
	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionWorkOrders, Action: events.ActionCreate,
		DocumentID: order.ID, CompanyID: order.CompanyID, ActorID: ev.ActorID, After: order,
	})
	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionInvoices, Action: events.ActionCreate,
		DocumentID: inv.ID, CompanyID: inv.CompanyID, ActorID: ev.ActorID, After: inv,
	})
	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionLeads, Action: events.ActionUpdate,
		DocumentID: lead.ID, CompanyID: lead.CompanyID, ActorID: ev.ActorID, Before: lead, After: &linked,
	})

	if err := c.idem.Mark(ctx, key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("no se pudo marcar la conversión como procesada")
	}

	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         "Bienvenido",
		Content:       fmt.Sprintf("Bienvenido a bordo, %s. Su cuenta es %s; pronto coordinaremos la instalación.", sub.FullName(), sub.AccountNumber),
		TriggerEvent:  "lead-converted",
		CorrelationID: sub.ID,
	})
	return Applied()
}

// ── Activación por instalación completada ────────────────────────────────────

// HandleWorkOrderCompleted reacciona a la finalización de una orden
// new-installation: reclama IP si el plan es de pool estático, aprovisiona en
// RADIUS y transiciona el abonado a active. Si RADIUS falla, la IP reclamada
// vuelve al pool y el evento queda reintentable.
func (c *Coordinator) HandleWorkOrderCompleted(ctx context.Context, ev events.EntityEvent) Outcome {
	order, ok := ev.After.(*entity.WorkOrder)
	if !ok || order == nil {
		return Skipped("evento sin orden")
	}
	if order.Status != entity.WorkOrderStatusCompleted {
		return Skipped("la orden no está completada")
	}
	if before, ok := ev.Before.(*entity.WorkOrder); ok && before != nil && before.Status == entity.WorkOrderStatusCompleted {
		return Skipped("la orden ya estaba completada")
	}
	if order.OrderType != entity.WorkOrderNewInstallation {
		return Skipped("solo new-installation dispara activación")
	}

	key := "work-order-completed:" + order.ID
	if seen, err := c.idem.Seen(ctx, key); err != nil {
		return Aborted("consultar idempotencia", err)
	} else if seen {
		return Skipped("activación ya procesada")
	}

	sub, err := c.subscribers.GetByID(ctx, order.SubscriberID)
	if err != nil || sub == nil {
		return Aborted("el abonado de la orden no existe", err)
	}
	if !fsm.CanFire(sub.Status, fsm.EventInstallationCompleted) {
		return Skipped("estado " + sub.Status + " no admite activación")
	}
	plan, err := c.plans.GetByID(ctx, sub.ServicePlanID)
	if err != nil || plan == nil {
		return Aborted("el plan del abonado no existe", err)
	}

	var ip *entity.IpAddress
	if plan.IPAssignmentType == entity.IPAssignStaticPool {
		ip, err = c.ledger.ClaimAvailable(ctx, plan.SubnetID, sub.ID)
		if err != nil {
			if errors.Is(err, domain.ErrPoolExhausted) {
				return Aborted("sin IP estática disponible en la subred del plan", err)
			}
			return Aborted("reclamar IP", err)
		}
	}

	// Las conexiones ipoe-dhcp y hotspot viajan en una VLAN propia. El sorteo
	// es idempotente por abonado: un reproceso recibe el mismo número.
	var vlan int
	if usesDedicatedVlan(sub.ConnectionType) {
		vlan, err = c.ledger.AssignVlan(ctx, sub.CompanyID, sub.ID)
		if err != nil {
			if ip != nil {
				_ = c.ledger.Release(ctx, ip.ID)
			}
			if errors.Is(err, domain.ErrPoolExhausted) {
				return Aborted("sin VLAN disponible en el rango configurado", err)
			}
			return Aborted("asignar VLAN", err)
		}
	}

	req := radiusRequest(sub, plan, ip, vlan, false)
	if err := c.radius.Provision(ctx, req); err != nil {
		// Revertir el reclamo antes de rendirse: el evento se puede re-disparar.
		if ip != nil {
			if relErr := c.ledger.Release(ctx, ip.ID); relErr != nil {
				c.log.Error().Str("ip_id", ip.ID).Err(relErr).Msg("no se pudo devolver la IP tras fallo de RADIUS")
			}
		}
		return Aborted("aprovisionar en RADIUS", err)
	}

	next, err := fsm.Next(sub.Status, fsm.EventInstallationCompleted)
	if err != nil {
		return Aborted("transición de activación", err)
	}

	before := *sub
	sub.Status = next
	if ip != nil {
		sub.AssignedIPID = &ip.ID
	}
	sub.NextDueDate = time.Now().AddDate(0, 1, 0)
	sub.UpdatedAt = time.Now()
	// Estado, IP asignada y próximo vencimiento se persisten en una sola
	// escritura condicional: o la activación queda completa o no queda nada.
	applied, err := c.subscribers.UpdateIf(ctx, sub, before.Status)
	if err != nil {
		if ip != nil {
			if relErr := c.ledger.Release(ctx, ip.ID); relErr != nil {
				c.log.Error().Str("ip_id", ip.ID).Err(relErr).Msg("no se pudo devolver la IP tras fallo al guardar la activación")
			}
		}
		return Aborted("guardar la activación", err)
	}
	if !applied {
		// Otra unidad de trabajo ganó la carrera; devolver nuestro reclamo.
		if ip != nil {
			_ = c.ledger.Release(ctx, ip.ID)
		}
		return Skipped("el abonado ya no estaba en " + before.Status)
	}

	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, ActorID: ev.ActorID, Before: &before, After: sub,
	})
	if ip != nil {
		c.publish(ctx, events.EntityEvent{
			Collection: events.CollectionIPAddresses, Action: events.ActionUpdate,
			DocumentID: ip.ID, CompanyID: ip.CompanyID, ActorID: ev.ActorID, After: ip,
		})
	}

	if err := c.idem.Mark(ctx, key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("no se pudo marcar la activación como procesada")
	}

	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         "Servicio activado",
		Content:       fmt.Sprintf("Su servicio %s quedó activo. Cuenta %s.", plan.Name, sub.AccountNumber),
		TriggerEvent:  "subscriber-activated",
		CorrelationID: sub.ID,
	})
	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.DeviceToken,
		Channel:       entity.ChannelPush,
		Title:         "Servicio activado",
		Content:       "Su conexión a internet ya está operativa.",
		TriggerEvent:  "subscriber-activated",
		CorrelationID: sub.ID,
	})
	return Applied()
}

// ── Conciliación de pagos y reconexión ───────────────────────────────────────

// HandlePaymentReceived concilia el pago contra su factura (o la impaga más
// antigua), descuenta el saldo del abonado y, si estaba suspendido y la
// política lo permite, lo reconecta. La conciliación se marca como procesada
// por pago, así un abort posterior de la reconexión no duplica montos al
// reprocesar.
func (c *Coordinator) HandlePaymentReceived(ctx context.Context, ev events.EntityEvent) Outcome {
	payment, ok := ev.After.(*entity.Payment)
	if !ok || payment == nil {
		return Skipped("evento sin pago")
	}
	sub, err := c.subscribers.GetByID(ctx, payment.SubscriberID)
	if err != nil || sub == nil {
		return Aborted("el abonado del pago no existe", err)
	}

	key := "payment:" + payment.ID
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		return Aborted("consultar idempotencia", err)
	}

	if !seen {
		inv, err := c.resolveInvoice(ctx, payment)
		if err != nil {
			return Aborted("resolver factura del pago", err)
		}
		if inv != nil {
			rec := billing.Reconcile(inv, payment.AmountPaid)
			if rec.NewStatus != inv.Status || !rec.NewAmountPaid.Equal(inv.AmountPaid) {
				beforeInv := *inv
				inv.Status = rec.NewStatus
				inv.AmountPaid = rec.NewAmountPaid
				inv.UpdatedAt = time.Now()
				if err := c.invoices.Update(ctx, inv); err != nil {
					return Aborted("actualizar factura conciliada", err)
				}
				c.publish(ctx, events.EntityEvent{
					Collection: events.CollectionInvoices, Action: events.ActionUpdate,
					DocumentID: inv.ID, CompanyID: inv.CompanyID, ActorID: ev.ActorID, Before: &beforeInv, After: inv,
				})
			}
		}

		beforeSub := *sub
		sub.AccountBalance = sub.AccountBalance.Sub(payment.AmountPaid)
		sub.UpdatedAt = time.Now()
		if err := c.subscribers.Update(ctx, sub); err != nil {
			return Aborted("descontar saldo del abonado", err)
		}
		c.publish(ctx, events.EntityEvent{
			Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
			DocumentID: sub.ID, CompanyID: sub.CompanyID, ActorID: ev.ActorID, Before: &beforeSub, After: sub,
		})

		if err := c.idem.Mark(ctx, key); err != nil {
			c.log.Warn().Str("key", key).Err(err).Msg("no se pudo marcar el pago como conciliado")
		}
	}

	if sub.Status != entity.SubscriberStatusSuspended {
		return Applied()
	}
	if !c.reconnect.Satisfied(payment.AmountPaid, sub.AccountBalance) {
		return Skipped("la política de reconexión no se cumple")
	}
	return c.reconnectSubscriber(ctx, sub, ev.ActorID)
}

// reconnectSubscriber reaplica el perfil normal en RADIUS y transiciona
// suspended→active. La actualización condicional garantiza una sola
// notificación aunque lleguen dos pagos concurrentes.
func (c *Coordinator) reconnectSubscriber(ctx context.Context, sub *entity.Subscriber, actorID string) Outcome {
	plan, err := c.plans.GetByID(ctx, sub.ServicePlanID)
	if err != nil || plan == nil {
		return Aborted("el plan del abonado no existe", err)
	}
	next, err := fsm.Next(sub.Status, fsm.EventPaymentReceived)
	if err != nil {
		return Skipped("estado " + sub.Status + " no admite reconexión")
	}

	ip, vlan, err := c.sessionResources(ctx, sub)
	if err != nil {
		return Aborted("resolver recursos de sesión del abonado", err)
	}
	req := radiusRequest(sub, plan, ip, vlan, false)
	if err := c.radius.Reprovision(ctx, req); err != nil {
		return Aborted("reaprovisionar en RADIUS", err)
	}

	applied, err := c.subscribers.UpdateStatusIf(ctx, sub.ID, entity.SubscriberStatusSuspended, next)
	if err != nil {
		return Aborted("reconectar abonado", err)
	}
	if !applied {
		return Skipped("el abonado ya no estaba suspendido")
	}

	before := *sub
	sub.Status = next
	c.publish(ctx, events.EntityEvent{
		Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
		DocumentID: sub.ID, CompanyID: sub.CompanyID, ActorID: actorID, Before: &before, After: sub,
	})

	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         "Servicio reconectado",
		Content:       "Recibimos su pago y su servicio fue reconectado. Gracias.",
		TriggerEvent:  "subscriber-reconnected",
		CorrelationID: sub.ID,
	})
	return Applied()
}

// resolveInvoice devuelve la factura objetivo del pago: la referida
// explícitamente o la impaga más antigua del abonado; nil si no hay ninguna
// (abono a cuenta).
func (c *Coordinator) resolveInvoice(ctx context.Context, payment *entity.Payment) (*entity.Invoice, error) {
	if payment.InvoiceID != nil {
		return c.invoices.GetByID(ctx, *payment.InvoiceID)
	}
	return c.invoices.GetOldestUnpaidBySubscriber(ctx, payment.SubscriberID)
}

// ── Efectos de suspensión y baja ─────────────────────────────────────────────

// HandleSubscriberTransition aplica los efectos de red de las transiciones
// decididas por los casos de uso: suspended aplica el perfil de suspensión en
// RADIUS; deactivated libera la IP y desaprovisiona la sesión.
func (c *Coordinator) HandleSubscriberTransition(ctx context.Context, ev events.EntityEvent) Outcome {
	after, ok := ev.After.(*entity.Subscriber)
	if !ok || after == nil {
		return Skipped("evento sin abonado")
	}
	before, ok := ev.Before.(*entity.Subscriber)
	if !ok || before == nil || before.Status == after.Status {
		return Skipped("sin cambio de estado")
	}

	switch after.Status {
	case entity.SubscriberStatusSuspended:
		return c.applySuspension(ctx, after)
	case entity.SubscriberStatusDeactivated:
		return c.applyDeactivation(ctx, after, ev.ActorID)
	default:
		return Skipped("transición sin efectos de red pendientes")
	}
}

func (c *Coordinator) applySuspension(ctx context.Context, sub *entity.Subscriber) Outcome {
	key := fmt.Sprintf("suspend:%s:%d", sub.ID, sub.UpdatedAt.Unix())
	if seen, err := c.idem.Seen(ctx, key); err != nil {
		return Aborted("consultar idempotencia", err)
	} else if seen {
		return Skipped("suspensión ya aplicada")
	}

	plan, err := c.plans.GetByID(ctx, sub.ServicePlanID)
	if err != nil || plan == nil {
		return Aborted("el plan del abonado no existe", err)
	}
	ip, vlan, err := c.sessionResources(ctx, sub)
	if err != nil {
		return Aborted("resolver recursos de sesión del abonado", err)
	}
	req := radiusRequest(sub, plan, ip, vlan, true)
	if err := c.radius.Reprovision(ctx, req); err != nil {
		return Aborted("aplicar perfil de suspensión en RADIUS", err)
	}

	if err := c.idem.Mark(ctx, key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("no se pudo marcar la suspensión como aplicada")
	}

	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         "Servicio suspendido",
		Content:       "Su servicio fue suspendido por saldo pendiente. Regularice su pago para reconectarse.",
		TriggerEvent:  "subscriber-suspended",
		CorrelationID: sub.ID,
	})
	return Applied()
}

func (c *Coordinator) applyDeactivation(ctx context.Context, sub *entity.Subscriber, actorID string) Outcome {
	key := "deactivate:" + sub.ID
	if seen, err := c.idem.Seen(ctx, key); err != nil {
		return Aborted("consultar idempotencia", err)
	} else if seen {
		return Skipped("baja ya aplicada")
	}

	if sub.AssignedIPID != nil {
		ipID := *sub.AssignedIPID
		if err := c.ledger.Release(ctx, ipID); err != nil {
			return Aborted("devolver la IP al pool", err)
		}
		before := *sub
		sub.AssignedIPID = nil
		sub.UpdatedAt = time.Now()
		if err := c.subscribers.Update(ctx, sub); err != nil {
			return Aborted("desvincular la IP del abonado", err)
		}
		c.publish(ctx, events.EntityEvent{
			Collection: events.CollectionSubscribers, Action: events.ActionUpdate,
			DocumentID: sub.ID, CompanyID: sub.CompanyID, ActorID: actorID, Before: &before, After: sub,
		})
		c.publish(ctx, events.EntityEvent{
			Collection: events.CollectionIPAddresses, Action: events.ActionUpdate,
			DocumentID: ipID, CompanyID: sub.CompanyID, ActorID: actorID,
		})
	}

	if err := c.radius.Deprovision(ctx, sub.RadiusUsername); err != nil {
		return Aborted("desaprovisionar en RADIUS", err)
	}

	if err := c.idem.Mark(ctx, key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("no se pudo marcar la baja como aplicada")
	}

	c.notifier.Send(ctx, notify.Input{
		CompanyID:     sub.CompanyID,
		Recipient:     sub.Phone,
		Channel:       entity.ChannelSMS,
		Title:         "Servicio dado de baja",
		Content:       "Su servicio fue dado de baja. Gracias por habernos acompañado.",
		TriggerEvent:  "subscriber-deactivated",
		CorrelationID: sub.ID,
	})
	return Applied()
}

// ── Auxiliares ───────────────────────────────────────────────────────────────

// publish entrega un evento derivado al bus; un error de suscriptor se loguea
// sin interrumpir la orquestación en curso.
func (c *Coordinator) publish(ctx context.Context, ev events.EntityEvent) {
	if err := c.bus.Publish(ctx, ev); err != nil {
		c.log.Warn().
			Str("collection", ev.Collection).
			Str("document_id", ev.DocumentID).
			Err(err).
			Msg("suscriptor falló al procesar evento derivado")
	}
}

// radiusRequest arma la petición de aprovisionamiento a partir del abonado y
// su plan.
func radiusRequest(sub *entity.Subscriber, plan *entity.ServicePlan, ip *entity.IpAddress, vlan int, suspended bool) ProvisionRequest {
	req := ProvisionRequest{
		Username:     sub.RadiusUsername,
		Profile:      plan.Name,
		DownloadKbps: plan.DownloadKbps,
		UploadKbps:   plan.UploadKbps,
		Vlan:         vlan,
		Suspended:    suspended,
	}
	if ip != nil {
		req.StaticIP = ip.Address
	}
	return req
}

// sessionResources resuelve la IP estática y la VLAN ya vinculadas al abonado.
// Reprovision es un upsert en el servidor RADIUS: una petición sin estos
// atributos los borraría de la sesión.
func (c *Coordinator) sessionResources(ctx context.Context, sub *entity.Subscriber) (*entity.IpAddress, int, error) {
	var ip *entity.IpAddress
	if sub.AssignedIPID != nil {
		var err error
		ip, err = c.ledger.Get(ctx, *sub.AssignedIPID)
		if err != nil {
			return nil, 0, err
		}
	}
	vlan, err := c.ledger.AssignedVlan(ctx, sub.ID)
	if err != nil {
		return nil, 0, err
	}
	return ip, vlan, nil
}

// usesDedicatedVlan indica si el tipo de conexión viaja en una VLAN propia.
func usesDedicatedVlan(connectionType string) bool {
	return connectionType == entity.ConnectionIPoEDHCP || connectionType == entity.ConnectionHotspot
}

// splitName separa un nombre comercial "Nombre Apellidos" en sus dos partes.
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, ""
}
