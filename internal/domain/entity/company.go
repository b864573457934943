package entity

import "time"

// Company representa una organización/tenant del sistema (ISP multi-tenant).
// Toda entidad del workflow hereda el CompanyID del actor que la crea y es
// inmutable después.
type Company struct {
	ID        string
	Name      string
	TaxID     string // NIT o identificación tributaria
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
