package cleaning

import (
	"context"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
)

// Service resolves room state against a fixed registry of room names. A
// registered room with no stored row reports the synthesized default
// estado "No Registrado" instead of 404; only names outside the registry
// are not found.
type Service struct {
	repo     Repository
	tx       db.TxRunner
	registry []string
	now      func() time.Time
}

func NewService(repo Repository, tx db.TxRunner, rooms []string) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		registry: rooms,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) registered(name string) bool {
	for _, r := range s.registry {
		if r == name {
			return true
		}
	}
	return false
}

func defaultState(name string) *RoomState {
	return &RoomState{NombreQuirofano: name, EstadoLimpieza: EstadoNoRegistrado}
}

// ListEstados returns one entry per registered room, in registry order,
// synthesizing the default state for rooms without a stored row.
func (s *Service) ListEstados(ctx context.Context) ([]*RoomState, int, error) {
	stored, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	byName := make(map[string]*RoomState, len(stored))
	for _, rs := range stored {
		byName[rs.NombreQuirofano] = rs
	}
	items := make([]*RoomState, 0, len(s.registry))
	for _, name := range s.registry {
		if rs, ok := byName[name]; ok {
			items = append(items, rs)
		} else {
			items = append(items, defaultState(name))
		}
	}
	return items, len(items), nil
}

func (s *Service) Get(ctx context.Context, name string) (*RoomState, error) {
	if !s.registered(name) {
		return nil, apperror.NotFound("Quirófano '%s' no encontrado.", name)
	}
	rs, err := s.repo.GetByName(ctx, name)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return defaultState(name), nil
	}
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (s *Service) Update(ctx context.Context, name string, in *UpdateInput) (*RoomState, error) {
	if !s.registered(name) {
		return nil, apperror.NotFound("Quirófano '%s' no encontrado.", name)
	}
	if in.Empty() {
		return nil, apperror.BadRequest("No hay datos proporcionados para actualizar.")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	// Transitioning into a clean state closes the cleaning cycle: the
	// completion instant is stamped server-side, never taken from the caller.
	var limpiezaAt *time.Time
	if in.EstadoLimpieza.Set && cleanEstados[*in.EstadoLimpieza.Value] {
		t := s.now()
		limpiezaAt = &t
	}

	var out *RoomState
	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Upsert(ctx, name, in, limpiezaAt); err != nil {
			return err
		}
		rs, err := s.repo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		out = rs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
