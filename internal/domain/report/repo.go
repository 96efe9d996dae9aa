package report

import "context"

// Repository runs the counting queries behind the general report.
type Repository interface {
	CountPacientes(ctx context.Context) (int, error)
	CountUsuarios(ctx context.Context) (int, error)
	// CirugiasPorEstado groups surgeries by estado, ordered by estado so
	// the bucket order is deterministic.
	CirugiasPorEstado(ctx context.Context) ([]ConteoPorEstado, error)
}
