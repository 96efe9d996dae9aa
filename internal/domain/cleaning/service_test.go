package cleaning

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	items map[string]*RoomState
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[string]*RoomState{}}
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*RoomState, error) {
	rs, ok := m.items[name]
	if !ok {
		return nil, apperror.NotFound("no encontrado")
	}
	cp := *rs
	return &cp, nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]*RoomState, error) {
	out := []*RoomState{}
	for _, rs := range m.items {
		cp := *rs
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepo) Upsert(_ context.Context, name string, in *UpdateInput, limpiezaAt *time.Time) error {
	rs, ok := m.items[name]
	if !ok {
		rs = &RoomState{NombreQuirofano: name, EstadoLimpieza: EstadoNoRegistrado}
		m.items[name] = rs
	}
	if in.EstadoLimpieza.Set {
		rs.EstadoLimpieza = *in.EstadoLimpieza.Value
	}
	if in.UltimaVezOcupadoHasta.Set {
		rs.UltimaVezOcupadoHasta = in.UltimaVezOcupadoHasta.Value
	}
	if in.NotasLimpieza.Set {
		rs.NotasLimpieza = in.NotasLimpieza.Value
	}
	if limpiezaAt != nil {
		rs.UltimaLimpiezaRealizada = limpiezaAt
	}
	return nil
}

var testRooms = []string{"Pabellón 1", "Pabellón 2", "Pabellón 3"}

func TestListEstados_SynthesizesDefaults(t *testing.T) {
	repo := newMockRepo()
	estado := EstadoOcupado
	repo.items["Pabellón 2"] = &RoomState{NombreQuirofano: "Pabellón 2", EstadoLimpieza: estado}
	svc := NewService(repo, passthroughTx, testRooms)

	items, total, err := svc.ListEstados(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != len(testRooms) || len(items) != len(testRooms) {
		t.Fatalf("expected %d rooms, got total=%d len=%d", len(testRooms), total, len(items))
	}
	for i, name := range testRooms {
		if items[i].NombreQuirofano != name {
			t.Errorf("expected registry order, got %q at %d", items[i].NombreQuirofano, i)
		}
	}
	if items[0].EstadoLimpieza != EstadoNoRegistrado {
		t.Errorf("expected synthesized default for missing row, got %q", items[0].EstadoLimpieza)
	}
	if items[1].EstadoLimpieza != EstadoOcupado {
		t.Errorf("expected stored estado, got %q", items[1].EstadoLimpieza)
	}
}

func TestGet_UnknownRoom(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)

	_, err := svc.Get(context.Background(), "Pabellón 9")
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "Quirófano 'Pabellón 9' no encontrado." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestGet_RegisteredWithoutRow(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)

	rs, err := svc.Get(context.Background(), "Pabellón 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.EstadoLimpieza != EstadoNoRegistrado {
		t.Errorf("expected %q default, got %q", EstadoNoRegistrado, rs.EstadoLimpieza)
	}
}

func TestUpdate_CreatesRow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx, testRooms)

	rs, err := svc.Update(context.Background(), "Pabellón 1", &UpdateInput{EstadoLimpieza: query.Some(EstadoOcupado)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.EstadoLimpieza != EstadoOcupado {
		t.Errorf("expected estado %q, got %q", EstadoOcupado, rs.EstadoLimpieza)
	}
	if _, ok := repo.items["Pabellón 1"]; !ok {
		t.Error("expected upsert to create the row")
	}
}

func TestUpdate_CleanTransitionStampsCompletion(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)
	stamp := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	for _, estado := range []string{EstadoDisponible, EstadoLimpio} {
		rs, err := svc.Update(context.Background(), "Pabellón 2", &UpdateInput{EstadoLimpieza: query.Some(estado)})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", estado, err)
		}
		if rs.UltimaLimpiezaRealizada == nil || !rs.UltimaLimpiezaRealizada.Equal(stamp) {
			t.Errorf("%s: expected completion stamp %v, got %v", estado, stamp, rs.UltimaLimpiezaRealizada)
		}
	}
}

func TestUpdate_DirtyTransitionDoesNotStamp(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)

	rs, err := svc.Update(context.Background(), "Pabellón 3", &UpdateInput{EstadoLimpieza: query.Some(EstadoLimpiezaPendiente)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.UltimaLimpiezaRealizada != nil {
		t.Errorf("expected no completion stamp, got %v", rs.UltimaLimpiezaRealizada)
	}
}

func TestUpdate_NotesOnlyPreservesEstado(t *testing.T) {
	repo := newMockRepo()
	repo.items["Pabellón 1"] = &RoomState{NombreQuirofano: "Pabellón 1", EstadoLimpieza: EstadoOcupado}
	svc := NewService(repo, passthroughTx, testRooms)

	notas := "revisar instrumental"
	rs, err := svc.Update(context.Background(), "Pabellón 1", &UpdateInput{NotasLimpieza: query.Some(notas)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.EstadoLimpieza != EstadoOcupado {
		t.Errorf("expected estado preserved, got %q", rs.EstadoLimpieza)
	}
	if rs.NotasLimpieza == nil || *rs.NotasLimpieza != notas {
		t.Errorf("expected notas set, got %v", rs.NotasLimpieza)
	}
}

func TestUpdate_NullClearsNullableFields(t *testing.T) {
	repo := newMockRepo()
	ocupado := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	notas := "derrame en piso"
	repo.items["Pabellón 1"] = &RoomState{
		NombreQuirofano:       "Pabellón 1",
		EstadoLimpieza:        EstadoLimpiezaPendiente,
		UltimaVezOcupadoHasta: &ocupado,
		NotasLimpieza:         &notas,
	}
	svc := NewService(repo, passthroughTx, testRooms)

	var upd UpdateInput
	if err := json.Unmarshal([]byte(`{"ultima_vez_ocupado_hasta": null, "notas_limpieza": null}`), &upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.Empty() {
		t.Fatal("a null-only payload carries data and must not read as empty")
	}
	rs, err := svc.Update(context.Background(), "Pabellón 1", &upd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.UltimaVezOcupadoHasta != nil {
		t.Errorf("expected ultima_vez_ocupado_hasta cleared, got %v", rs.UltimaVezOcupadoHasta)
	}
	if rs.NotasLimpieza != nil {
		t.Errorf("expected notas_limpieza cleared, got %q", *rs.NotasLimpieza)
	}
	if rs.EstadoLimpieza != EstadoLimpiezaPendiente {
		t.Errorf("expected estado preserved, got %q", rs.EstadoLimpieza)
	}
}

func TestUpdate_NullEstadoRejected(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)

	var upd UpdateInput
	if err := json.Unmarshal([]byte(`{"estado_limpieza": null}`), &upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Update(context.Background(), "Pabellón 1", &upd); !apperror.IsKind(err, apperror.KindBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestUpdate_EmptyAndUnknown(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx, testRooms)

	if _, err := svc.Update(context.Background(), "Pabellón 1", &UpdateInput{}); !apperror.IsKind(err, apperror.KindBadRequest) {
		t.Errorf("expected bad request for empty payload, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "Sala Desconocida", &UpdateInput{EstadoLimpieza: query.Some(EstadoOcupado)}); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for unknown room, got %v", err)
	}
}
