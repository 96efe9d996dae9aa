package surgery

import (
	"context"
	"time"
)

// Repository is the store access contract for surgeries.
type Repository interface {
	Create(ctx context.Context, s *Surgery) (*Surgery, error)
	GetByID(ctx context.Context, id int64) (*Surgery, error)
	List(ctx context.Context, f Filters, limit, skip int) ([]*Surgery, int, error)
	// Update executes the partial update, stamping the last-modified
	// timestamp alongside the caller's fields.
	Update(ctx context.Context, id int64, in *UpdateInput, modifiedAt time.Time) error
	Delete(ctx context.Context, id int64) (int64, error)
}
