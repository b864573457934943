package events

import (
	"context"
	"sync"

	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// Action es el tipo de mutación publicada.
type Action string

// Acciones publicables.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Colecciones del dominio (nombres estables usados en eventos y auditoría).
const (
	CollectionLeads       = "leads"
	CollectionSubscribers = "subscribers"
	CollectionWorkOrders  = "work_orders"
	CollectionInvoices    = "invoices"
	CollectionPayments    = "payments"
	CollectionIPAddresses = "ip_addresses"
	CollectionTickets     = "tickets"
	CollectionPlans       = "service_plans"

	// CollectionAll suscribe a todas las colecciones (auditoría genérica).
	CollectionAll = "*"
)

// EntityEvent es la mutación tipada de una entidad. Before y After llevan los
// punteros de entidad (nil en create/delete respectivamente); cada suscriptor
// hace el type assert de la colección que le interesa.
type EntityEvent struct {
	Collection string
	Action     Action
	DocumentID string
	CompanyID  string
	ActorID    string
	Before     any
	After      any
}

// Handler procesa un evento. Un error de un handler corta el fan-out y sube al
// publicador; los suscriptores no críticos (auditoría, notificación) devuelven
// siempre nil y gestionan sus fallos internamente.
type Handler interface {
	Handle(ctx context.Context, ev EntityEvent) error
}

// HandlerFunc adapta una función a Handler.
type HandlerFunc func(ctx context.Context, ev EntityEvent) error

// Handle implementa Handler.
func (f HandlerFunc) Handle(ctx context.Context, ev EntityEvent) error {
	return f(ctx, ev)
}

// Bus entrega eventos de mutación de entidades a suscriptores registrados,
// de forma síncrona y en orden de registro dentro de la unidad de trabajo que
// publica. Reemplaza el registro global de hooks por colección: el orden de
// efectos queda explícito en el cableado.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
	log  *logger.Logger
}

// NewBus construye el bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]Handler),
		log:  log,
	}
}

// Subscribe registra un handler para la colección dada (CollectionAll = todas).
// Pensado para el arranque de la aplicación; no para registro dinámico.
func (b *Bus) Subscribe(collection string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[collection] = append(b.subs[collection], h)
}

// Publish entrega el evento a los suscriptores de su colección y luego a los
// de CollectionAll. Devuelve el primer error de un handler; los handlers
// posteriores de ese publish no se ejecutan.
func (b *Bus) Publish(ctx context.Context, ev EntityEvent) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Collection])+len(b.subs[CollectionAll]))
	handlers = append(handlers, b.subs[ev.Collection]...)
	handlers = append(handlers, b.subs[CollectionAll]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, ev); err != nil {
			b.log.Warn().
				Str("collection", ev.Collection).
				Str("action", string(ev.Action)).
				Str("document_id", ev.DocumentID).
				Err(err).
				Msg("suscriptor del bus reportó error")
			return err
		}
	}
	return nil
}
