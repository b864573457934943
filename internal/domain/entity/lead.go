package entity

import "time"

// Estados del lead. converted y lost son terminales.
const (
	LeadStatusNew        = "new"
	LeadStatusContacted  = "contacted"
	LeadStatusSiteSurvey = "site-survey"
	LeadStatusConverted  = "converted"
	LeadStatusLost       = "lost"
)

// Lead representa un prospecto comercial antes de la activación del servicio.
// Convertir un lead es el único disparador que crea un Subscriber (1:1, irreversible).
type Lead struct {
	ID              string
	CompanyID       string
	Status          string // ver constantes LeadStatus*
	Name            string
	Phone           string
	Email           string
	Source          string // referido, web, punto de venta...
	PlanID          string  // plan elegido durante la venta; requerido para convertir
	PartnerID       *string // aliado comercial que refirió, si aplica
	ServiceLocation string  // dirección/nodo donde se instalaría el servicio
	SubscriberID    *string // abonado creado al convertir (nil mientras no se convierta)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
