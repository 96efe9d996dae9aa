package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultLimit and bounds for the list window.
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100

	cancellationWindow = 24 * time.Hour
)

// Service synthesizes the notification feed on every read. Nothing is
// persisted: each call re-derives the entries and mints fresh identifiers,
// so the same underlying event yields a different id on every call.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func strPtr(s string) *string { return &s }

// List returns at most limit notifications, newest first, plus the unread
// count over the full untruncated set.
func (s *Service) List(ctx context.Context, limit int) ([]*Notification, int, error) {
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	now := s.now()

	items := []*Notification{}

	cancelled, err := s.repo.CancelledSurgeries(ctx, now.Add(-cancellationWindow))
	if err != nil {
		return nil, 0, err
	}
	for _, cs := range cancelled {
		items = append(items, &Notification{
			ID:            s.newID(),
			Mensaje:       fmt.Sprintf("Cirugía '%s' (ID: %d) para paciente ID %d fue cancelada.", cs.Tipo, cs.ID, cs.PacienteID),
			Tipo:          TipoAlerta,
			FechaCreacion: now,
			EntidadTipo:   strPtr("Cirugia"),
			EntidadID:     cs.ID,
		})
	}

	pending, err := s.repo.PendingCleaningRooms(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, pr := range pending {
		msg := fmt.Sprintf("Quirófano '%s' requiere limpieza urgente.", pr.Nombre)
		if pr.UltimaVezOcupadoHasta != nil {
			msg += fmt.Sprintf(" (últ. ocupado: %s)", pr.UltimaVezOcupadoHasta.Format("2006-01-02 15:04"))
		}
		items = append(items, &Notification{
			ID:            s.newID(),
			Mensaje:       msg,
			Tipo:          TipoAlerta,
			FechaCreacion: now,
			EntidadTipo:   strPtr("QuirofanoLimpieza"),
			EntidadID:     pr.Nombre,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FechaCreacion.After(items[j].FechaCreacion)
	})

	unread := 0
	for _, n := range items {
		if !n.Leida {
			unread++
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, unread, nil
}

// MarkRead acknowledges a notification id. Entries never persist, so there
// is nothing to update; the call always succeeds.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	s.logger.Debug().Str("notification_id", id).Msg("notificación marcada como leída (sin efecto persistente)")
	return nil
}
