package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePlanRequest entrada para crear un plan de servicio.
type CreatePlanRequest struct {
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	Price            decimal.Decimal `json:"price"`
	InstallationFee  decimal.Decimal `json:"installation_fee"`
	IPAssignmentType string          `json:"ip_assignment_type" validate:"required,oneof=static-pool dynamic"`
	ConnectionType   string          `json:"connection_type" validate:"required,oneof=pppoe ipoe-dhcp static-ip hotspot"`
	SubnetID         string          `json:"subnet_id" validate:"omitempty,uuid"`
	DownloadKbps     int             `json:"download_kbps" validate:"required,min=64"`
	UploadKbps       int             `json:"upload_kbps" validate:"required,min=64"`
}

// PlanResponse salida de un plan.
type PlanResponse struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	InstallationFee  decimal.Decimal `json:"installation_fee"`
	IPAssignmentType string          `json:"ip_assignment_type"`
	ConnectionType   string          `json:"connection_type"`
	SubnetID         string          `json:"subnet_id,omitempty"`
	DownloadKbps     int             `json:"download_kbps"`
	UploadKbps       int             `json:"upload_kbps"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PlanListResponse lista paginada de planes.
type PlanListResponse struct {
	Items []PlanResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
