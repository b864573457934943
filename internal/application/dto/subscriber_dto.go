package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriberResponse salida de un abonado.
type SubscriberResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	AccountNumber  string          `json:"account_number"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Status         string          `json:"status"`
	ServicePlanID  string          `json:"service_plan_id"`
	ConnectionType string          `json:"connection_type"`
	AssignedIPID   *string         `json:"assigned_ip_id,omitempty"`
	RadiusUsername string          `json:"radius_username"`
	AccountBalance decimal.Decimal `json:"account_balance"`
	NextDueDate    time.Time       `json:"next_due_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// UpdateSubscriberRequest entrada para editar datos de contacto del abonado.
// El estado no se edita por aquí: suspensión y baja son operaciones propias.
type UpdateSubscriberRequest struct {
	Phone       *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Email       *string `json:"email" validate:"omitempty,email"`
	DeviceToken *string `json:"device_token"`
}

// SubscriberActionResponse salida de suspender/reactivar/dar de baja. Warning
// informa efectos diferidos (ej. RADIUS no disponible: reintentar).
type SubscriberActionResponse struct {
	Subscriber SubscriberResponse `json:"subscriber"`
	Warning    string             `json:"warning,omitempty"`
}

// SubscriberListResponse lista paginada de abonados.
type SubscriberListResponse struct {
	Items []SubscriberResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
