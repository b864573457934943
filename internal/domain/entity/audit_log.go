package entity

import "time"

// Acciones auditables.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// AuditLogEntry representa un registro inmutable de auditoría con snapshots
// before/after. Append-only: nunca se actualiza ni elimina.
type AuditLogEntry struct {
	ID         string
	CompanyID  string
	ActorID    string // usuario que ejecutó la mutación; vacío = proceso del sistema
	Action     string // ver constantes AuditAction*
	Collection string // nombre de la colección mutada
	DocumentID string
	Before     map[string]any // snapshot previo (nil en create)
	After      map[string]any // snapshot posterior (nil en delete)
	CreatedAt  time.Time
}
