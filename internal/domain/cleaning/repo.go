package cleaning

import (
	"context"
	"time"
)

// Repository persists per-room cleaning state keyed by room name.
type Repository interface {
	GetByName(ctx context.Context, name string) (*RoomState, error)
	ListAll(ctx context.Context) ([]*RoomState, error)
	// Upsert applies the sparse update to the named room, inserting the row
	// when no row exists yet. A non-nil limpiezaAt also sets
	// ultima_limpieza_realizada_dt to that instant.
	Upsert(ctx context.Context, name string, in *UpdateInput, limpiezaAt *time.Time) error
}
