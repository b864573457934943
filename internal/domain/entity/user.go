package entity

import "time"

// Roles de staff disponibles.
const (
	RoleAdmin   = "admin"
	RoleVentas  = "ventas"  // gestiona leads y conversiones
	RoleSoporte = "soporte" // tickets y reconexiones
	RoleTecnico = "tecnico" // órdenes de trabajo en campo
)

// User representa un usuario de staff del ISP.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // ver constantes Role*
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
