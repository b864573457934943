package provisioning

import (
	"fmt"

	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
)

// Event es un disparador externo del ciclo de vida del abonado.
type Event string

// Eventos del ciclo de vida.
const (
	EventInstallationCompleted Event = "installation-completed"
	EventSuspend               Event = "suspend"
	EventPaymentReceived       Event = "payment-received"
	EventDeactivate            Event = "deactivate"
)

// transitions es la tabla (estado origen, evento) -> estado destino.
// Cualquier par ausente es una transición ilegal. El estado actual del abonado
// es la fuente de verdad: una precondición que ya no se cumple es un no-op del
// lado del coordinador, no un error fatal.
var transitions = map[string]map[Event]string{
	entity.SubscriberStatusPendingInstallation: {
		EventInstallationCompleted: entity.SubscriberStatusActive,
		EventDeactivate:            entity.SubscriberStatusDeactivated,
	},
	entity.SubscriberStatusActive: {
		EventSuspend:    entity.SubscriberStatusSuspended,
		EventDeactivate: entity.SubscriberStatusDeactivated,
	},
	entity.SubscriberStatusSuspended: {
		EventPaymentReceived: entity.SubscriberStatusActive,
		EventDeactivate:      entity.SubscriberStatusDeactivated,
	},
	// deactivated es terminal: sin salidas.
	entity.SubscriberStatusDeactivated: {},
}

// Next devuelve el estado destino para (from, event) o ErrIllegalTransition
// si el par no está en la tabla.
func Next(from string, event Event) (string, error) {
	byEvent, ok := transitions[from]
	if !ok {
		return "", fmt.Errorf("estado desconocido %q: %w", from, domain.ErrIllegalTransition)
	}
	to, ok := byEvent[event]
	if !ok {
		return "", fmt.Errorf("%s + %s: %w", from, event, domain.ErrIllegalTransition)
	}
	return to, nil
}

// CanFire indica si el evento es disparable desde el estado dado.
func CanFire(from string, event Event) bool {
	_, err := Next(from, event)
	return err == nil
}

// IsTerminal indica si el estado no tiene transiciones de salida.
func IsTerminal(state string) bool {
	byEvent, ok := transitions[state]
	return ok && len(byEvent) == 0
}
