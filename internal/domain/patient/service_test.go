package patient

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	seq       int64
	items     map[int64]*Patient
	raceOnDel bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[int64]*Patient{}}
}

func (m *mockRepo) Create(_ context.Context, in *CreateInput) (*Patient, error) {
	m.seq++
	p := &Patient{
		ID: m.seq, Nombre: in.Nombre, Apellido: in.Apellido, RUT: in.RUT,
		FechaNacimiento: in.FechaNacimiento, Telefono: in.Telefono, Email: in.Email,
		Direccion: in.Direccion, Prevision: in.Prevision, NumeroFicha: in.NumeroFicha,
		FechaRegistro: time.Now().UTC(),
	}
	m.items[p.ID] = p
	return p, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperror.NotFound("no encontrado")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) RUTExists(_ context.Context, rut string, excludeID int64) (bool, error) {
	for _, p := range m.items {
		if p.RUT == rut && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) List(_ context.Context, limit, skip int) ([]*Patient, int, error) {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var page []*Patient
	for i, id := range ids {
		if i < skip || len(page) >= limit {
			continue
		}
		page = append(page, m.items[id])
	}
	return page, len(m.items), nil
}

func (m *mockRepo) Update(_ context.Context, id int64, in *UpdateInput) error {
	p, ok := m.items[id]
	if !ok {
		return nil
	}
	if in.Nombre.Set {
		p.Nombre = *in.Nombre.Value
	}
	if in.Apellido.Set {
		p.Apellido = *in.Apellido.Value
	}
	if in.RUT.Set {
		p.RUT = *in.RUT.Value
	}
	if in.FechaNacimiento.Set {
		p.FechaNacimiento = *in.FechaNacimiento.Value
	}
	if in.Telefono.Set {
		p.Telefono = in.Telefono.Value
	}
	if in.Email.Set {
		p.Email = in.Email.Value
	}
	if in.Direccion.Set {
		p.Direccion = in.Direccion.Value
	}
	if in.Prevision.Set {
		p.Prevision = in.Prevision.Value
	}
	if in.NumeroFicha.Set {
		p.NumeroFicha = in.NumeroFicha.Value
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) (int64, error) {
	if m.raceOnDel {
		return 0, nil
	}
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func birthDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return Date{Time: d}
}

func validCreateInput(t *testing.T) *CreateInput {
	return &CreateInput{
		Nombre: "Ana", Apellido: "Soto", RUT: "11.111.111-1",
		FechaNacimiento: birthDate(t, "1990-01-01"),
	}
}

func TestCreate_AssignsIDAndRegistro(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	p, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected assigned id")
	}
	if p.FechaRegistro.IsZero() {
		t.Error("expected fecha_registro set at insert")
	}
}

func TestCreate_DuplicateRUT(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	if _, err := svc.Create(context.Background(), validCreateInput(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := validCreateInput(t)
	in.Nombre = "Otra"
	_, err := svc.Create(context.Background(), in)
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("expected conflict for duplicate rut, got %v", err)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty nombre", func(in *CreateInput) { in.Nombre = "" }},
		{"empty apellido", func(in *CreateInput) { in.Apellido = "" }},
		{"malformed rut", func(in *CreateInput) { in.RUT = "not-a-rut" }},
		{"wrong check digit", func(in *CreateInput) { in.RUT = "11.111.111-2" }},
		{"zero birth date", func(in *CreateInput) { in.FechaNacimiento = Date{} }},
		{"bad email", func(in *CreateInput) { email := "nope"; in.Email = &email }},
	}
	for _, tt := range tests {
		in := validCreateInput(t)
		tt.mutate(in)
		_, err := svc.Create(context.Background(), in)
		if !apperror.IsKind(err, apperror.KindBadRequest) {
			t.Errorf("%s: expected bad request, got %v", tt.name, err)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	_, err := svc.Get(context.Background(), 99)
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_EmptyPayload(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	_, err := svc.Update(context.Background(), 1, &UpdateInput{})
	if !apperror.IsKind(err, apperror.KindBadRequest) {
		t.Errorf("expected bad request for empty payload, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	_, err := svc.Update(context.Background(), 42, &UpdateInput{Nombre: query.Some("Nuevo")})
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_SparseFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	created, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	telefono := "+56 9 1234 5678"
	updated, err := svc.Update(context.Background(), created.ID, &UpdateInput{Telefono: query.Some(telefono)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Telefono == nil || *updated.Telefono != telefono {
		t.Errorf("expected telefono updated, got %v", updated.Telefono)
	}
	if updated.Nombre != "Ana" || updated.RUT != "11.111.111-1" {
		t.Errorf("expected untouched fields preserved, got %+v", updated)
	}
}

func TestUpdate_NullClearsNullableField(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	in := validCreateInput(t)
	telefono := "+56 9 1234 5678"
	in.Telefono = &telefono
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var upd UpdateInput
	if err := json.Unmarshal([]byte(`{"telefono": null}`), &upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.Empty() {
		t.Fatal("a null-only payload carries data and must not read as empty")
	}
	updated, err := svc.Update(context.Background(), created.ID, &upd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Telefono != nil {
		t.Errorf("expected telefono cleared, got %q", *updated.Telefono)
	}
	if updated.Nombre != "Ana" {
		t.Errorf("expected untouched fields preserved, got %+v", updated)
	}
}

func TestUpdate_NullOnMandatoryFieldRejected(t *testing.T) {
	svc := NewService(newMockRepo(), passthroughTx)

	for _, payload := range []string{`{"nombre": null}`, `{"rut": null}`, `{"fecha_nacimiento": null}`} {
		var upd UpdateInput
		if err := json.Unmarshal([]byte(payload), &upd); err != nil {
			t.Fatalf("%s: unexpected error: %v", payload, err)
		}
		if _, err := svc.Update(context.Background(), 1, &upd); !apperror.IsKind(err, apperror.KindBadRequest) {
			t.Errorf("%s: expected bad request, got %v", payload, err)
		}
	}
}

func TestUpdate_RUTConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	first, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := validCreateInput(t)
	second.RUT = "7.654.321-6"
	other, err := svc.Create(context.Background(), second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Update(context.Background(), other.ID, &UpdateInput{RUT: query.Some(first.RUT)})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	// Re-sending the current value is not a conflict.
	if _, err := svc.Update(context.Background(), other.ID, &UpdateInput{RUT: query.Some("7.654.321-6")}); err != nil {
		t.Errorf("unexpected error re-sending own rut: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	p, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found for second delete, got %v", err)
	}
}

func TestDelete_LostRace(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	p, err := svc.Create(context.Background(), validCreateInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.raceOnDel = true
	if err := svc.Delete(context.Background(), p.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found when delete affects zero rows, got %v", err)
	}
}

func TestList_TotalIndependentOfWindow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, passthroughTx)

	ruts := []string{"11.111.111-1", "7.654.321-6", "5.126.663-3"}
	for _, r := range ruts {
		in := validCreateInput(t)
		in.RUT = r
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	page, total, err := svc.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
	if total != 3 {
		t.Errorf("expected total 3 independent of window, got %d", total)
	}
}
