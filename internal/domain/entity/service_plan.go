package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Políticas de asignación de IP del plan.
const (
	IPAssignStaticPool = "static-pool" // reclama una IP fija del pool de la subred del plan
	IPAssignDynamic    = "dynamic"     // el concentrador asigna por DHCP/PPPoE, sin reclamo
)

// ServicePlan representa un plan de servicio contratable.
type ServicePlan struct {
	ID               string
	CompanyID        string
	Name             string
	Price            decimal.Decimal // tarifa mensual
	InstallationFee  decimal.Decimal // cargo único de instalación
	IPAssignmentType string          // ver constantes IPAssign*
	ConnectionType   string          // ver constantes Connection* (subscriber.go)
	SubnetID         string          // subred del pool estático (si IPAssignmentType = static-pool)
	DownloadKbps     int
	UploadKbps       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
