package dto

import "time"

// CreateTicketRequest entrada para abrir un caso de soporte.
type CreateTicketRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required,uuid"`
	Subject      string `json:"subject" validate:"required,min=1,max=200"`
	Description  string `json:"description"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateTicketRequest entrada para cerrar o resolver un ticket.
type UpdateTicketRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=open resolved closed"`
	Description *string `json:"description"`
}

// TicketResponse salida de un ticket.
type TicketResponse struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	SubscriberID string    `json:"subscriber_id"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	WorkOrderID  *string   `json:"work_order_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EscalateTicketResponse salida de escalar: el ticket y la orden de reparación creada.
type EscalateTicketResponse struct {
	Ticket    TicketResponse    `json:"ticket"`
	WorkOrder WorkOrderResponse `json:"work_order"`
}

// TicketListResponse lista paginada de tickets.
type TicketListResponse struct {
	Items []TicketResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
