package staff

import (
	"context"
)

// Repository is the store access contract for staff users. It also
// backs store-mode logins through the credential lookups.
type Repository interface {
	Create(ctx context.Context, in *CreateInput) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	List(ctx context.Context, limit, skip int) ([]*User, int, error)
	Update(ctx context.Context, id int64, in *UpdateInput) error
	Delete(ctx context.Context, id int64) (int64, error)
}
