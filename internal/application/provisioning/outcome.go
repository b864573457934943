package provisioning

// Estados del resultado de procesar un evento del ciclo de vida.
const (
	// OutcomeApplied: los efectos se aplicaron completos.
	OutcomeApplied = "applied"
	// OutcomeAborted: un efecto falló y los aplicados se revirtieron; el
	// evento sigue siendo reintentable (no se marcó como procesado).
	OutcomeAborted = "aborted"
	// OutcomeSkipped: el evento no aplica (ya procesado, precondición perdida,
	// estado no admite la transición). No es un error.
	OutcomeSkipped = "skipped"
)

// Outcome es el resultado estructurado de un manejador del coordinador. El
// coordinador nunca deja subir un pánico ni un error crudo al publicador: todo
// camino termina en un Outcome con su razón.
type Outcome struct {
	Status string
	Reason string
	Err    error // causa subyacente de un abort, si existe
}

// Applied efectos aplicados.
func Applied() Outcome {
	return Outcome{Status: OutcomeApplied}
}

// Skipped el evento no aplica, con la razón.
func Skipped(reason string) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: reason}
}

// Aborted el procesamiento se detuvo, con razón y causa.
func Aborted(reason string, err error) Outcome {
	return Outcome{Status: OutcomeAborted, Reason: reason, Err: err}
}
