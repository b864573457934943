package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del abonado. Las transiciones válidas viven en domain/provisioning.
const (
	SubscriberStatusPendingInstallation = "pending-installation"
	SubscriberStatusActive              = "active"
	SubscriberStatusSuspended           = "suspended"
	SubscriberStatusDeactivated         = "deactivated"
)

// Tipos de conexión soportados.
const (
	ConnectionPPPoE    = "pppoe"
	ConnectionIPoEDHCP = "ipoe-dhcp"
	ConnectionStaticIP = "static-ip"
	ConnectionHotspot  = "hotspot"
)

// Subscriber representa un abonado facturable del ISP.
// AccountNumber es único e inmutable; CompanyID se hereda del actor creador y
// no cambia después.
type Subscriber struct {
	ID             string
	CompanyID      string
	AccountNumber  string
	FirstName      string
	LastName       string
	Phone          string
	Email          string
	DeviceToken    string // token push del app del abonado; vacío = sin app
	Status         string // ver constantes SubscriberStatus*
	ServicePlanID  string
	ConnectionType string  // ver constantes Connection*
	AssignedIPID   *string // IP reclamada del pool (solo planes static-pool)
	RadiusUsername string
	AccountBalance decimal.Decimal // saldo pendiente (positivo = debe)
	NextDueDate    time.Time
	LeadID         *string // lead de origen, si vino de conversión
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName nombre completo para notificaciones y PDF.
func (s *Subscriber) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
