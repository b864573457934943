package provisioning

import (
	"context"

	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/internal/domain/repository"
)

// ProvisionRequest describe la sesión a aprovisionar en el NAS/RADIUS.
type ProvisionRequest struct {
	Username     string
	Profile      string // nombre del plan, usado como perfil de velocidad
	DownloadKbps int
	UploadKbps   int
	StaticIP     string // vacía = asignación dinámica del concentrador
	Vlan         int    // 0 = sin VLAN dedicada (solo conexiones ipoe-dhcp/hotspot)
	Suspended    bool   // true aplica el perfil de suspensión (walled garden)
}

// RadiusClient puerto del servidor de acceso a red. Los fallos se reportan
// envueltos en domain.ErrAdapterFailure; el llamador decide si aborta o
// reintenta re-disparando el evento.
type RadiusClient interface {
	Provision(ctx context.Context, req ProvisionRequest) error
	// Reprovision reaplica el perfil de una sesión existente (suspender,
	// reconectar, cambio de plan). Idempotente del lado del servidor.
	Reprovision(ctx context.Context, req ProvisionRequest) error
	Deprovision(ctx context.Context, username string) error
}

// IdempotencyStore marca eventos ya procesados para que el reproceso de un
// mismo disparador sea un no-op. Dos fases a propósito: Seen consulta sin
// consumir y Mark se ejecuta solo tras aplicar los efectos, de modo que un
// evento abortado (RADIUS caído, pool agotado) siga siendo reintentable.
type IdempotencyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Notifier es el contrato mínimo del despachador de notificaciones que el
// coordinador necesita. *notify.Dispatcher lo satisface.
type Notifier interface {
	Send(ctx context.Context, in notify.Input) notify.Result
}

// ConversionTxRunner ejecuta la conversión de lead dentro de una transacción,
// pasando repositorios atados a esa tx: el abonado, la orden de instalación y
// la factura inicial se crean todos o ninguno.
type ConversionTxRunner interface {
	RunConversion(ctx context.Context, fn func(
		subs repository.SubscriberRepository,
		orders repository.WorkOrderRepository,
		invoices repository.InvoiceRepository,
		leads repository.LeadRepository,
	) error) error
}
