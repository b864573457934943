package billing

import "github.com/shopspring/decimal"

// ReconnectPolicy decide si un pago habilita la reconexión de un abonado
// suspendido. El comportamiento histórico del sistema reconecta con cualquier
// pago; la política estricta exige que el pago deje el saldo en cero. Se
// modela como parámetro con nombre en vez de replicar en silencio el
// "cualquier pago reconecta".
type ReconnectPolicy string

// Políticas disponibles.
const (
	// ReconnectAnyPayment reconecta al recibir cualquier pago (reconexión por
	// gracia, comportamiento por defecto).
	ReconnectAnyPayment ReconnectPolicy = "any-payment"
	// ReconnectFullBalance reconecta solo si el saldo queda totalmente cubierto.
	ReconnectFullBalance ReconnectPolicy = "full-balance"
)

// ParseReconnectPolicy normaliza el valor de configuración; desconocido cae en
// any-payment.
func ParseReconnectPolicy(s string) ReconnectPolicy {
	if ReconnectPolicy(s) == ReconnectFullBalance {
		return ReconnectFullBalance
	}
	return ReconnectAnyPayment
}

// Satisfied evalúa la política: amountPaid es el pago recibido y balanceAfter
// el saldo del abonado después de aplicarlo (positivo = aún debe).
func (p ReconnectPolicy) Satisfied(amountPaid, balanceAfter decimal.Decimal) bool {
	switch p {
	case ReconnectFullBalance:
		return balanceAfter.LessThanOrEqual(decimal.Zero)
	default:
		return amountPaid.GreaterThan(decimal.Zero)
	}
}
