package entity

import "time"

// Tipos de orden de trabajo.
const (
	WorkOrderNewInstallation = "new-installation"
	WorkOrderRepair          = "repair"
	WorkOrderSiteSurvey      = "site-survey"
)

// Estados de la orden de trabajo.
const (
	WorkOrderStatusPending    = "pending"
	WorkOrderStatusScheduled  = "scheduled"
	WorkOrderStatusInProgress = "in-progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusFailed     = "failed"
)

// WorkOrder representa una tarea de campo programable. La finalización de una
// orden new-installation es el disparador de la activación de red del abonado.
type WorkOrder struct {
	ID           string
	CompanyID    string
	OrderType    string // ver constantes WorkOrder*
	SubscriberID string
	Status       string // ver constantes WorkOrderStatus*
	StaffID      *string // técnico asignado
	TicketID     *string // ticket que escaló a reparación, si aplica
	Notes        string
	ScheduledFor *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
