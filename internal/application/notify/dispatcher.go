package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/conecta-isp/internal/domain/entity"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
	"github.com/jhoicas/conecta-isp/pkg/logger"
)

// Estados del resultado de un envío.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped" // push sin device token: sin registro
)

// Input describe una notificación a despachar.
type Input struct {
	CompanyID     string
	Recipient     string // teléfono, email o device token según el canal
	Channel       string // entity.ChannelSMS | ChannelEmail | ChannelPush
	Title         string
	Content       string
	TriggerEvent  string // evento de negocio (ej. "subscriber-activated")
	CorrelationID string // id del documento relacionado
}

// Result resultado del despacho.
type Result struct {
	Status    string
	MessageID string // id del Message persistido; vacío si skipped
}

// SMSGateway puerto del gateway de SMS.
type SMSGateway interface {
	SendSMS(ctx context.Context, to, content string) error
}

// EmailGateway puerto del gateway de correo.
type EmailGateway interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// PushGateway puerto del gateway de push.
type PushGateway interface {
	SendPush(ctx context.Context, deviceToken, title, content string) error
}

// Dispatcher entrega mensajes por el canal pedido y persiste el resultado como
// Message para historial. Fire-and-forget desde la perspectiva del llamador:
// fallos de gateway o de persistencia se loguean, nunca se propagan.
type Dispatcher struct {
	sms      SMSGateway
	email    EmailGateway
	push     PushGateway
	messages repository.MessageRepository
	log      *logger.Logger
}

// NewDispatcher construye el dispatcher.
func NewDispatcher(sms SMSGateway, email EmailGateway, push PushGateway, messages repository.MessageRepository, log *logger.Logger) *Dispatcher {
	return &Dispatcher{sms: sms, email: email, push: push, messages: messages, log: log}
}

// Send entrega la notificación y registra el intento. Un push sin device token
// se omite (log, sin registro): no es un fallo de entrega.
func (d *Dispatcher) Send(ctx context.Context, in Input) Result {
	if in.Channel == entity.ChannelPush && in.Recipient == "" {
		d.log.Debug().
			Str("trigger", in.TriggerEvent).
			Str("correlation_id", in.CorrelationID).
			Msg("push omitido: abonado sin device token")
		return Result{Status: StatusSkipped}
	}

	sendErr := d.deliver(ctx, in)

	msg := &entity.Message{
		ID:            uuid.New().String(),
		CompanyID:     in.CompanyID,
		Recipient:     in.Recipient,
		Channel:       in.Channel,
		Title:         in.Title,
		Content:       in.Content,
		TriggerEvent:  in.TriggerEvent,
		CorrelationID: in.CorrelationID,
		Status:        entity.MessageStatusSent,
		CreatedAt:     time.Now(),
	}
	if sendErr != nil {
		msg.Status = entity.MessageStatusFailed
		msg.ErrorDetail = sendErr.Error()
		d.log.Warn().
			Str("channel", in.Channel).
			Str("trigger", in.TriggerEvent).
			Err(sendErr).
			Msg("entrega de notificación falló")
	}

	if err := d.messages.Create(ctx, msg); err != nil {
		// El registro de historial no bloquea la transacción del llamador.
		d.log.Error().
			Str("channel", in.Channel).
			Str("trigger", in.TriggerEvent).
			Err(err).
			Msg("no se pudo persistir el mensaje de notificación")
	}

	status := StatusSent
	if sendErr != nil {
		status = StatusFailed
	}
	return Result{Status: status, MessageID: msg.ID}
}

func (d *Dispatcher) deliver(ctx context.Context, in Input) error {
	switch in.Channel {
	case entity.ChannelSMS:
		return d.sms.SendSMS(ctx, in.Recipient, in.Content)
	case entity.ChannelEmail:
		return d.email.SendEmail(ctx, in.Recipient, in.Title, in.Content)
	case entity.ChannelPush:
		return d.push.SendPush(ctx, in.Recipient, in.Title, in.Content)
	default:
		// Canal desconocido: tratar como fallo de entrega registrable.
		return fmt.Errorf("canal de notificación desconocido: %q", in.Channel)
	}
}
