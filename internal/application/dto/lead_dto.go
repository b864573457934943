package dto

import "time"

// CreateLeadRequest entrada para registrar un prospecto.
type CreateLeadRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=200"`
	Phone           string  `json:"phone" validate:"required,min=7,max=20"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Source          string  `json:"source"`
	PlanID          string  `json:"plan_id" validate:"omitempty,uuid"`
	PartnerID       *string `json:"partner_id" validate:"omitempty,uuid"`
	ServiceLocation string  `json:"service_location"`
}

// UpdateLeadRequest entrada para avanzar un lead en el embudo comercial.
// converted no se acepta aquí: la conversión tiene su propio endpoint.
type UpdateLeadRequest struct {
	Status          *string `json:"status" validate:"omitempty,oneof=new contacted site-survey lost"`
	PlanID          *string `json:"plan_id" validate:"omitempty,uuid"`
	ServiceLocation *string `json:"service_location"`
}

// LeadResponse salida de un lead.
type LeadResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	Status          string    `json:"status"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Source          string    `json:"source"`
	PlanID          string    `json:"plan_id"`
	PartnerID       *string   `json:"partner_id,omitempty"`
	ServiceLocation string    `json:"service_location"`
	SubscriberID    *string   `json:"subscriber_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ConvertLeadResponse salida de la conversión: el lead queda converted y la
// orquestación crea el abonado aguas abajo.
type ConvertLeadResponse struct {
	Lead       LeadResponse        `json:"lead"`
	Subscriber *SubscriberResponse `json:"subscriber,omitempty"`
	Warning    string              `json:"warning,omitempty"`
}

// LeadListResponse lista paginada de leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
