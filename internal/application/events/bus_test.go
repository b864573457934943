package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/events"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

func TestBus_EntregaEnOrdenDeRegistro(t *testing.T) {
	bus := events.NewBus(logger.Nop())
	var order []string

	bus.Subscribe(events.CollectionLeads, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		order = append(order, "primero")
		return nil
	}))
	bus.Subscribe(events.CollectionLeads, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		order = append(order, "segundo")
		return nil
	}))
	// El suscriptor comodín (auditoría) recibe después de los específicos
	bus.Subscribe(events.CollectionAll, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		order = append(order, "comodin")
		return nil
	}))

	err := bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionLeads,
		Action:     events.ActionUpdate,
		DocumentID: "L1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"primero", "segundo", "comodin"}, order)
}

func TestBus_ColeccionSinSuscriptores(t *testing.T) {
	bus := events.NewBus(logger.Nop())
	err := bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionPayments,
		Action:     events.ActionCreate,
	})
	assert.NoError(t, err, "publicar sin suscriptores es un no-op")
}

func TestBus_ErrorDeHandlerCortaElFanout(t *testing.T) {
	bus := events.NewBus(logger.Nop())
	boom := errors.New("boom")
	reached := false

	bus.Subscribe(events.CollectionWorkOrders, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		return boom
	}))
	bus.Subscribe(events.CollectionWorkOrders, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		reached = true
		return nil
	}))

	err := bus.Publish(context.Background(), events.EntityEvent{
		Collection: events.CollectionWorkOrders,
		Action:     events.ActionUpdate,
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, reached, "el segundo handler no debe ejecutarse tras el error")
}

func TestBus_ComodinRecibeTodasLasColecciones(t *testing.T) {
	bus := events.NewBus(logger.Nop())
	var seen []string
	bus.Subscribe(events.CollectionAll, events.HandlerFunc(func(ctx context.Context, ev events.EntityEvent) error {
		seen = append(seen, ev.Collection)
		return nil
	}))

	for _, col := range []string{events.CollectionLeads, events.CollectionInvoices, events.CollectionTickets} {
		require.NoError(t, bus.Publish(context.Background(), events.EntityEvent{Collection: col}))
	}
	assert.Equal(t, []string{events.CollectionLeads, events.CollectionInvoices, events.CollectionTickets}, seen)
}
