package patient

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
	"github.com/thebakclinic/clinic-api/pkg/rut"
)

// Date is a calendar date serialized as "2006-01-02". Birth dates carry
// no time-of-day component.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// Accept full timestamps too, keeping only the date.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
		}
	}
	d.Time = t.Truncate(24 * time.Hour)
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Patient maps to the pacientes table.
type Patient struct {
	ID              int64     `db:"id_paciente" json:"id_paciente"`
	Nombre          string    `db:"nombre" json:"nombre"`
	Apellido        string    `db:"apellido" json:"apellido"`
	RUT             string    `db:"rut" json:"rut"`
	FechaNacimiento Date      `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	Telefono        *string   `db:"telefono" json:"telefono,omitempty"`
	Email           *string   `db:"email" json:"email,omitempty"`
	Direccion       *string   `db:"direccion" json:"direccion,omitempty"`
	Prevision       *string   `db:"prevision" json:"prevision,omitempty"`
	NumeroFicha     *string   `db:"numero_ficha" json:"numero_ficha,omitempty"`
	FechaRegistro   time.Time `db:"fecha_registro" json:"fecha_registro"`
}

// Validate checks a row read back from the store. Failures are data
// integrity problems, not client errors.
func (p *Patient) Validate() error {
	if p.Nombre == "" || p.Apellido == "" {
		return apperror.Validation("paciente %d: nombre y apellido son obligatorios", p.ID)
	}
	if !rut.ValidFormat(p.RUT) {
		return apperror.Validation("paciente %d: rut %q con formato inválido", p.ID, p.RUT)
	}
	if p.Email != nil && *p.Email != "" && !emailPattern.MatchString(*p.Email) {
		return apperror.Validation("paciente %d: email %q inválido", p.ID, *p.Email)
	}
	return nil
}

// CreateInput is the creation payload.
type CreateInput struct {
	Nombre          string  `json:"nombre"`
	Apellido        string  `json:"apellido"`
	RUT             string  `json:"rut"`
	FechaNacimiento Date    `json:"fecha_nacimiento"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email"`
	Direccion       *string `json:"direccion"`
	Prevision       *string `json:"prevision"`
	NumeroFicha     *string `json:"numero_ficha"`
}

func (in *CreateInput) Validate() error {
	if in.Nombre == "" {
		return apperror.BadRequest("el nombre es obligatorio")
	}
	if in.Apellido == "" {
		return apperror.BadRequest("el apellido es obligatorio")
	}
	if !rut.Valid(in.RUT) {
		return apperror.BadRequest("RUT '%s' inválido (formato esperado: XX.XXX.XXX-X)", in.RUT)
	}
	if in.FechaNacimiento.IsZero() {
		return apperror.BadRequest("la fecha de nacimiento es obligatoria")
	}
	if in.Email != nil && *in.Email != "" && !emailPattern.MatchString(*in.Email) {
		return apperror.BadRequest("email '%s' inválido", *in.Email)
	}
	return nil
}

// UpdateInput carries presence per field: an unset field is left
// untouched, while an explicit null clears the column. Mandatory
// columns reject null.
type UpdateInput struct {
	Nombre          query.Opt[string] `json:"nombre"`
	Apellido        query.Opt[string] `json:"apellido"`
	RUT             query.Opt[string] `json:"rut"`
	FechaNacimiento query.Opt[Date]   `json:"fecha_nacimiento"`
	Telefono        query.Opt[string] `json:"telefono"`
	Email           query.Opt[string] `json:"email"`
	Direccion       query.Opt[string] `json:"direccion"`
	Prevision       query.Opt[string] `json:"prevision"`
	NumeroFicha     query.Opt[string] `json:"numero_ficha"`
}

func (in *UpdateInput) Empty() bool {
	return !in.Nombre.Set && !in.Apellido.Set && !in.RUT.Set &&
		!in.FechaNacimiento.Set && !in.Telefono.Set && !in.Email.Set &&
		!in.Direccion.Set && !in.Prevision.Set && !in.NumeroFicha.Set
}

func (in *UpdateInput) Validate() error {
	if in.Nombre.Set && (in.Nombre.Null() || *in.Nombre.Value == "") {
		return apperror.BadRequest("el nombre no puede quedar vacío")
	}
	if in.Apellido.Set && (in.Apellido.Null() || *in.Apellido.Value == "") {
		return apperror.BadRequest("el apellido no puede quedar vacío")
	}
	if in.RUT.Null() {
		return apperror.BadRequest("el RUT no puede quedar vacío")
	}
	if in.RUT.Set && !rut.Valid(*in.RUT.Value) {
		return apperror.BadRequest("RUT '%s' inválido (formato esperado: XX.XXX.XXX-X)", *in.RUT.Value)
	}
	if in.FechaNacimiento.Null() {
		return apperror.BadRequest("la fecha de nacimiento no puede quedar vacía")
	}
	if in.Email.Set && in.Email.Value != nil && *in.Email.Value != "" && !emailPattern.MatchString(*in.Email.Value) {
		return apperror.BadRequest("email '%s' inválido", *in.Email.Value)
	}
	return nil
}

// apply copies every set field into the update builder, in declaration
// order so the generated SQL is deterministic. Nullable columns pass the
// raw pointer so an explicit null becomes SET col = NULL.
func (in *UpdateInput) apply(u *query.Update) {
	if in.Nombre.Set {
		u.Set("nombre", *in.Nombre.Value)
	}
	if in.Apellido.Set {
		u.Set("apellido", *in.Apellido.Value)
	}
	if in.RUT.Set {
		u.Set("rut", *in.RUT.Value)
	}
	if in.FechaNacimiento.Set {
		u.Set("fecha_nacimiento", in.FechaNacimiento.Value.Time)
	}
	if in.Telefono.Set {
		u.Set("telefono", in.Telefono.Value)
	}
	if in.Email.Set {
		u.Set("email", in.Email.Value)
	}
	if in.Direccion.Set {
		u.Set("direccion", in.Direccion.Value)
	}
	if in.Prevision.Set {
		u.Set("prevision", in.Prevision.Value)
	}
	if in.NumeroFicha.Set {
		u.Set("numero_ficha", in.NumeroFicha.Value)
	}
}
