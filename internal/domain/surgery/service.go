package surgery

import (
	"context"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
)

// Service implements the surgery scheduling use cases. Referential
// integrity (patient, staff) is enforced by the store's foreign keys
// and surfaces as a conflict, never a crash.
type Service struct {
	repo Repository
	tx   db.TxRunner
	now  func() time.Time
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, in *CreateInput) (*Surgery, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sg := &Surgery{
		PacienteID:        in.PacienteID,
		MedicoPrincipalID: in.MedicoPrincipalID,
		QuirofanoID:       in.QuirofanoID,
		NombreQuirofano:   in.NombreQuirofano,
		FechaHoraInicio:   in.FechaHoraInicio,
		DuracionMinutos:   in.DuracionMinutos,
		FechaHoraFin:      in.FechaHoraFin,
		TipoCirugia:       in.TipoCirugia,
		Estado:            in.Estado,
		NotasPre:          in.NotasPre,
		NotasPost:         in.NotasPost,
	}
	if sg.Estado == "" {
		sg.Estado = EstadoProgramada
	}
	// Derive the scheduled end when only a duration was given.
	if sg.FechaHoraFin == nil && sg.DuracionMinutos != nil {
		fin := sg.FechaHoraInicio.Add(time.Duration(*sg.DuracionMinutos) * time.Minute)
		sg.FechaHoraFin = &fin
	}

	var created *Surgery
	err := s.tx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, sg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Surgery, error) {
	sg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("Cirugía con ID %d no encontrada.", id)
		}
		return nil, err
	}
	return sg, nil
}

func (s *Service) List(ctx context.Context, f Filters, limit, skip int) ([]*Surgery, int, error) {
	return s.repo.List(ctx, f, limit, skip)
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdateInput) (*Surgery, error) {
	if in.Empty() {
		return nil, apperror.BadRequest("No hay datos proporcionados para actualizar.")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *Surgery
	err := s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.NotFound("Cirugía con ID %d no encontrada para actualizar.", id)
			}
			return err
		}
		// Every update refreshes the last-modified stamp.
		if err := s.repo.Update(ctx, id, in, s.now()); err != nil {
			return err
		}
		var err error
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
				return apperror.NotFound("Cirugía con ID %d no encontrada para eliminar.", id)
			}
			return err
		}
		n, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("No se eliminó la cirugía (inesperado).")
		}
		return nil
	})
}
