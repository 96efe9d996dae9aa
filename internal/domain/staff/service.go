package staff

import (
	"context"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
)

// Service implements the staff-user use cases. Both unique fields (rut,
// email) are pre-checked before writes; the store constraints remain
// the authoritative guarantee.
type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created *User
	err := s.tx(ctx, func(ctx context.Context) error {
		taken, err := s.repo.RUTExists(ctx, in.RUT, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("El RUT '%s' ya está registrado para otro usuario.", in.RUT)
		}
		taken, err = s.repo.EmailExists(ctx, in.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("El email '%s' ya está registrado para otro usuario.", in.Email)
		}
		created, err = s.repo.Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("Usuario con ID %d no encontrado.", id)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, limit, skip int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, skip)
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdateInput) (*User, error) {
	if in.Empty() {
		return nil, apperror.BadRequest("No hay datos proporcionados para actualizar.")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *User
	err := s.tx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.NotFound("Usuario con ID %d no encontrado para actualizar.", id)
			}
			return err
		}
		if in.RUT.Set && *in.RUT.Value != current.RUT {
			taken, err := s.repo.RUTExists(ctx, *in.RUT.Value, id)
			if err != nil {
				return err
			}
			if taken {
				return apperror.Conflict("El RUT '%s' ya está en uso por otro usuario.", *in.RUT.Value)
			}
		}
		if in.Email.Set && *in.Email.Value != current.Email {
			taken, err := s.repo.EmailExists(ctx, *in.Email.Value, id)
			if err != nil {
				return err
			}
			if taken {
				return apperror.Conflict("El email '%s' ya está en uso por otro usuario.", *in.Email.Value)
			}
		}
		if err := s.repo.Update(ctx, id, in); err != nil {
			return err
		}
		updated, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.NotFound("Usuario con ID %d no encontrado para eliminar.", id)
			}
			return err
		}
		n, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("No se eliminó el usuario (inesperado).")
		}
		return nil
	})
}
