package entity

import "time"

// Estados del ticket de soporte.
const (
	TicketStatusOpen      = "open"
	TicketStatusEscalated = "escalated" // generó una orden de reparación
	TicketStatusResolved  = "resolved"
	TicketStatusClosed    = "closed"
)

// Ticket representa un caso de soporte de un abonado. Al escalarlo se crea una
// WorkOrder de tipo repair enlazada.
type Ticket struct {
	ID           string
	CompanyID    string
	SubscriberID string
	Subject      string
	Description  string
	Status       string // ver constantes TicketStatus*
	Priority     string // low, medium, high
	WorkOrderID  *string // orden de reparación creada al escalar
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
