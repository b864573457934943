package provisioning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/provisioning"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones válidas
// ──────────────────────────────────────────────────────────────────────────────

func TestNext_TransicionesValidas(t *testing.T) {
	cases := []struct {
		from  string
		event provisioning.Event
		to    string
	}{
		{entity.SubscriberStatusPendingInstallation, provisioning.EventInstallationCompleted, entity.SubscriberStatusActive},
		{entity.SubscriberStatusActive, provisioning.EventSuspend, entity.SubscriberStatusSuspended},
		{entity.SubscriberStatusSuspended, provisioning.EventPaymentReceived, entity.SubscriberStatusActive},
		{entity.SubscriberStatusActive, provisioning.EventDeactivate, entity.SubscriberStatusDeactivated},
		{entity.SubscriberStatusSuspended, provisioning.EventDeactivate, entity.SubscriberStatusDeactivated},
		{entity.SubscriberStatusPendingInstallation, provisioning.EventDeactivate, entity.SubscriberStatusDeactivated},
	}
	for _, c := range cases {
		to, err := provisioning.Next(c.from, c.event)
		require.NoError(t, err, "%s + %s debe ser válida", c.from, c.event)
		assert.Equal(t, c.to, to)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones ilegales
// ──────────────────────────────────────────────────────────────────────────────

func TestNext_TransicionesIlegales(t *testing.T) {
	cases := []struct {
		from  string
		event provisioning.Event
	}{
		// No se puede suspender antes de activar
		{entity.SubscriberStatusPendingInstallation, provisioning.EventSuspend},
		// Un pago sobre un abonado activo no cambia estado
		{entity.SubscriberStatusActive, provisioning.EventPaymentReceived},
		// deactivated es terminal
		{entity.SubscriberStatusDeactivated, provisioning.EventPaymentReceived},
		{entity.SubscriberStatusDeactivated, provisioning.EventInstallationCompleted},
		// Completar instalación dos veces: la segunda parte de "active" y es ilegal
		{entity.SubscriberStatusActive, provisioning.EventInstallationCompleted},
	}
	for _, c := range cases {
		_, err := provisioning.Next(c.from, c.event)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition,
			"%s + %s debe ser ilegal", c.from, c.event)
	}
}

func TestNext_EstadoDesconocido(t *testing.T) {
	_, err := provisioning.Next("limbo", provisioning.EventSuspend)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestCanFire(t *testing.T) {
	assert.True(t, provisioning.CanFire(entity.SubscriberStatusSuspended, provisioning.EventPaymentReceived))
	assert.False(t, provisioning.CanFire(entity.SubscriberStatusActive, provisioning.EventPaymentReceived))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, provisioning.IsTerminal(entity.SubscriberStatusDeactivated))
	assert.False(t, provisioning.IsTerminal(entity.SubscriberStatusActive))
	assert.False(t, provisioning.IsTerminal("limbo"), "estado desconocido no es terminal")
}
