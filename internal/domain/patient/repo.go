package patient

import "context"

// Repository is the store access contract for patients.
type Repository interface {
	Create(ctx context.Context, in *CreateInput) (*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	// RUTExists reports whether another patient (excluding excludeID)
	// already holds the given rut. Pass 0 to check all rows.
	RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error)
	List(ctx context.Context, limit, skip int) ([]*Patient, int, error)
	Update(ctx context.Context, id int64, in *UpdateInput) error
	// Delete returns the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
}
