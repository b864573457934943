package dto

import "time"

// CreateWorkOrderRequest entrada para crear una orden de trabajo manual
// (site-survey o repair; las de instalación las crea la conversión del lead).
type CreateWorkOrderRequest struct {
	OrderType    string     `json:"order_type" validate:"required,oneof=new-installation repair site-survey"`
	SubscriberID string     `json:"subscriber_id" validate:"required,uuid"`
	StaffID      *string    `json:"staff_id" validate:"omitempty,uuid"`
	Notes        string     `json:"notes"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// UpdateWorkOrderRequest entrada para avanzar una orden de trabajo.
type UpdateWorkOrderRequest struct {
	Status       *string    `json:"status" validate:"omitempty,oneof=pending scheduled in-progress completed failed"`
	StaffID      *string    `json:"staff_id" validate:"omitempty,uuid"`
	Notes        *string    `json:"notes"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// WorkOrderResponse salida de una orden de trabajo. Warning informa que la
// activación posterior no se aplicó (pool agotado, RADIUS caído) y la orden
// puede re-dispararse.
type WorkOrderResponse struct {
	ID           string     `json:"id"`
	CompanyID    string     `json:"company_id"`
	OrderType    string     `json:"order_type"`
	SubscriberID string     `json:"subscriber_id"`
	Status       string     `json:"status"`
	StaffID      *string    `json:"staff_id,omitempty"`
	TicketID     *string    `json:"ticket_id,omitempty"`
	Notes        string     `json:"notes"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Warning      string     `json:"warning,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// WorkOrderListResponse lista paginada de órdenes.
type WorkOrderListResponse struct {
	Items []WorkOrderResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
