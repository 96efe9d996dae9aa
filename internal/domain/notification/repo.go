package notification

import (
	"context"
	"time"
)

// CancelledSurgery is the slice of a surgery row a cancellation alert needs.
type CancelledSurgery struct {
	ID         int64
	Tipo       string
	PacienteID int64
}

// PendingRoom is a room awaiting cleaning, with how long ago it was last
// occupied.
type PendingRoom struct {
	Nombre                string
	UltimaVezOcupadoHasta *time.Time
}

// Repository runs the time-windowed source queries the synthesizer reads.
type Repository interface {
	// CancelledSurgeries returns surgeries cancelled since the given
	// instant, newest modification first.
	CancelledSurgeries(ctx context.Context, since time.Time) ([]CancelledSurgery, error)
	// PendingCleaningRooms returns rooms in estado "Limpieza Pendiente",
	// oldest occupied first (most urgent).
	PendingCleaningRooms(ctx context.Context) ([]PendingRoom, error)
}
