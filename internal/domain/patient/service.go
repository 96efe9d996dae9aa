package patient

import (
	"context"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
)

// Service implements the patient use cases. Every multi-statement write
// runs inside one transaction via the TxRunner; the uniqueness pre-check
// is advisory, the authoritative guarantee is the unique constraint.
type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created *Patient
	err := s.tx(ctx, func(ctx context.Context) error {
		taken, err := s.repo.RUTExists(ctx, in.RUT, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("El RUT '%s' ya está registrado para otro paciente.", in.RUT)
		}
		created, err = s.repo.Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("Paciente con ID %d no encontrado.", id)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, limit, skip int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, skip)
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdateInput) (*Patient, error) {
	if in.Empty() {
		return nil, apperror.BadRequest("No hay datos proporcionados para actualizar.")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *Patient
	err := s.tx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.NotFound("Paciente con ID %d no encontrado para actualizar.", id)
			}
			return err
		}
		if in.RUT.Set && *in.RUT.Value != current.RUT {
			taken, err := s.repo.RUTExists(ctx, *in.RUT.Value, id)
			if err != nil {
				return err
			}
			if taken {
				return apperror.Conflict("El RUT '%s' ya está en uso por otro paciente.", *in.RUT.Value)
			}
		}
		if err := s.repo.Update(ctx, id, in); err != nil {
			return err
		}
		// Re-select so the response reflects exactly what the store holds.
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
				return apperror.NotFound("Paciente con ID %d no encontrado para eliminar.", id)
			}
			return err
		}
		n, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		// Lost race with a concurrent delete: surface it, never a
		// silent success.
		if n == 0 {
			return apperror.NotFound("No se eliminó el paciente (inesperado).")
		}
		return nil
	})
}
