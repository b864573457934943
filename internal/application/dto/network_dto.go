package dto

import "time"

// CreateSubnetRequest entrada para registrar una subred y sembrar su pool.
// Cada host del CIDR (sin red ni broadcast) entra al pool como available.
type CreateSubnetRequest struct {
	CIDR        string `json:"cidr" validate:"required,cidrv4"`
	Description string `json:"description"`
}

// SubnetResponse salida de una subred con el tamaño del pool sembrado.
type SubnetResponse struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	CIDR        string    `json:"cidr"`
	Description string    `json:"description"`
	PoolSize    int       `json:"pool_size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IPAddressResponse salida de una dirección del pool.
type IPAddressResponse struct {
	ID           string  `json:"id"`
	SubnetID     string  `json:"subnet_id"`
	Address      string  `json:"address"`
	Status       string  `json:"status"`
	SubscriberID *string `json:"subscriber_id,omitempty"`
}

// SubnetListResponse subredes de la empresa.
type SubnetListResponse struct {
	Items []SubnetResponse `json:"items"`
}

// IPAddressListResponse direcciones de una subred.
type IPAddressListResponse struct {
	Items []IPAddressResponse `json:"items"`
}
