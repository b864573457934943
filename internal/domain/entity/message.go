package entity

import "time"

// Canales de notificación.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Estados de entrega de un mensaje.
const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// Message representa un intento de notificación persistido para historial.
// Se guarda tanto el envío exitoso como el fallido; un push sin device token
// se omite sin registro.
type Message struct {
	ID            string
	CompanyID     string
	Recipient     string // teléfono, email o device token según el canal
	Channel       string // ver constantes Channel*
	Title         string
	Content       string
	TriggerEvent  string // evento de negocio que originó el mensaje
	CorrelationID string // id del documento relacionado (factura, abonado...)
	Status        string // ver constantes MessageStatus*
	ErrorDetail   string // motivo del fallo, si Status = failed
	CreatedAt     time.Time
}
