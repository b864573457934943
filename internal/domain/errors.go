package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrPoolExhausted: no quedan IPs disponibles en la subred (o VLANs en el rango).
	// Resultado esperado y no fatal: el llamador aborta la activación y reporta.
	ErrPoolExhausted = errors.New("no hay recursos disponibles en el pool")

	// ErrAdapterFailure: el servicio externo (RADIUS, gateway de mensajes) falló.
	// Reintentable re-disparando el mismo evento.
	ErrAdapterFailure = errors.New("fallo del adaptador externo")

	// ErrIllegalTransition: la transición de estado solicitada no existe en la
	// tabla de la máquina de estados del abonado.
	ErrIllegalTransition = errors.New("transición de estado no permitida")
)
