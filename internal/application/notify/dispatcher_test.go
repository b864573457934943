package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de gateways y repositorio
// ──────────────────────────────────────────────────────────────────────────────

type fakeGateway struct {
	calls int
	err   error
	last  string
}

func (g *fakeGateway) SendSMS(_ context.Context, to, _ string) error {
	g.calls++
	g.last = to
	return g.err
}

func (g *fakeGateway) SendEmail(_ context.Context, to, _, _ string) error {
	g.calls++
	g.last = to
	return g.err
}

func (g *fakeGateway) SendPush(_ context.Context, token, _, _ string) error {
	g.calls++
	g.last = token
	return g.err
}

type fakeMessageRepo struct {
	msgs    []*entity.Message
	failing bool
}

func (f *fakeMessageRepo) Create(_ context.Context, m *entity.Message) error {
	if f.failing {
		return errors.New("db caída")
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeMessageRepo) ListByCompany(_ context.Context, _ string, _, _ int) ([]*entity.Message, error) {
	return f.msgs, nil
}

func newDispatcher(sms, email, push *fakeGateway, repo *fakeMessageRepo) *notify.Dispatcher {
	return notify.NewDispatcher(sms, email, push, repo, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSend_SMSExitosoRegistraMensaje(t *testing.T) {
	sms := &fakeGateway{}
	repo := &fakeMessageRepo{}
	d := newDispatcher(sms, &fakeGateway{}, &fakeGateway{}, repo)

	res := d.Send(context.Background(), notify.Input{
		CompanyID:     "C1",
		Recipient:     "254700000000",
		Channel:       entity.ChannelSMS,
		Content:       "Su servicio fue activado",
		TriggerEvent:  "subscriber-activated",
		CorrelationID: "S1",
	})

	assert.Equal(t, notify.StatusSent, res.Status)
	assert.Equal(t, 1, sms.calls)
	require.Len(t, repo.msgs, 1)
	assert.Equal(t, entity.MessageStatusSent, repo.msgs[0].Status)
	assert.Equal(t, "subscriber-activated", repo.msgs[0].TriggerEvent)
	assert.Equal(t, "S1", repo.msgs[0].CorrelationID)
}

func TestSend_FalloDeGatewayRegistraFailed(t *testing.T) {
	email := &fakeGateway{err: errors.New("smtp timeout")}
	repo := &fakeMessageRepo{}
	d := newDispatcher(&fakeGateway{}, email, &fakeGateway{}, repo)

	res := d.Send(context.Background(), notify.Input{
		Recipient:    "alice@example.com",
		Channel:      entity.ChannelEmail,
		Title:        "Factura vencida",
		Content:      "...",
		TriggerEvent: "invoice-overdue",
	})

	// El fallo se registra pero no se propaga como error al llamador
	assert.Equal(t, notify.StatusFailed, res.Status)
	require.Len(t, repo.msgs, 1, "el intento fallido también se persiste para historial")
	assert.Equal(t, entity.MessageStatusFailed, repo.msgs[0].Status)
	assert.Contains(t, repo.msgs[0].ErrorDetail, "smtp timeout")
}

func TestSend_PushSinTokenSeOmiteSinRegistro(t *testing.T) {
	push := &fakeGateway{}
	repo := &fakeMessageRepo{}
	d := newDispatcher(&fakeGateway{}, &fakeGateway{}, push, repo)

	res := d.Send(context.Background(), notify.Input{
		Recipient:    "", // abonado sin app instalada
		Channel:      entity.ChannelPush,
		TriggerEvent: "invoice-created",
	})

	assert.Equal(t, notify.StatusSkipped, res.Status)
	assert.Zero(t, push.calls, "no debe intentarse la entrega")
	assert.Empty(t, repo.msgs, "un push omitido no genera registro de historial")
}

func TestSend_FalloDePersistenciaNoBloquea(t *testing.T) {
	sms := &fakeGateway{}
	repo := &fakeMessageRepo{failing: true}
	d := newDispatcher(sms, &fakeGateway{}, &fakeGateway{}, repo)

	var res notify.Result
	assert.NotPanics(t, func() {
		res = d.Send(context.Background(), notify.Input{
			Recipient: "254700000000",
			Channel:   entity.ChannelSMS,
			Content:   "hola",
		})
	})
	// La entrega fue exitosa aunque el historial no se pudo guardar
	assert.Equal(t, notify.StatusSent, res.Status)
	assert.Equal(t, 1, sms.calls)
}

func TestSend_CanalDesconocidoQuedaComoFallo(t *testing.T) {
	repo := &fakeMessageRepo{}
	d := newDispatcher(&fakeGateway{}, &fakeGateway{}, &fakeGateway{}, repo)

	res := d.Send(context.Background(), notify.Input{
		Recipient: "x",
		Channel:   "paloma-mensajera",
	})
	assert.Equal(t, notify.StatusFailed, res.Status)
	require.Len(t, repo.msgs, 1)
	assert.Equal(t, entity.MessageStatusFailed, repo.msgs[0].Status)
}
