package entity

import "time"

// Estados de una dirección IP del pool.
const (
	IPStatusAvailable = "available"
	IPStatusAssigned  = "assigned"
	IPStatusReserved  = "reserved"
)

// Subnet representa un bloque de direcciones administrado por el ISP.
type Subnet struct {
	ID          string
	CompanyID   string
	CIDR        string // ej. 10.20.30.0/24
	Description string
	CreatedAt   time.Time
}

// IpAddress representa una dirección del pool. Solo el Resource Ledger la muta
// vía claim/release. Invariante: status=assigned ⟺ SubscriberID != nil.
type IpAddress struct {
	ID           string
	CompanyID    string
	SubnetID     string
	Address      string // única; el orden lexicográfico del formato normalizado decide el tie-break
	Status       string // ver constantes IPStatus*
	SubscriberID *string
	UpdatedAt    time.Time
}

// VlanAssignment registra una VLAN tomada del rango configurado.
type VlanAssignment struct {
	ID           string
	CompanyID    string
	VlanID       int // único dentro de la empresa
	SubscriberID string
	CreatedAt    time.Time
}
