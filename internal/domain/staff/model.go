package staff

import (
	"regexp"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
	"github.com/thebakclinic/clinic-api/pkg/rut"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User maps to the usuarios table. Contrasena never leaves the API: it
// is excluded from every serialized response.
type User struct {
	ID           int64      `db:"id_usuario" json:"id_usuario"`
	Nombre       string     `db:"nombre" json:"nombre"`
	Apellido     string     `db:"apellido" json:"apellido"`
	RUT          string     `db:"rut" json:"rut"`
	Email        string     `db:"email" json:"email"`
	Telefono     *string    `db:"telefono" json:"telefono,omitempty"`
	Rol          string     `db:"rol" json:"rol"`
	Especialidad *string    `db:"especialidad" json:"especialidad,omitempty"`
	Activo       bool       `db:"activo" json:"activo"`
	Contrasena   string     `db:"contrasena" json:"-"`
	FechaCreacion time.Time `db:"fecha_creacion" json:"fecha_creacion"`
	UltimoAcceso *time.Time `db:"ultimo_acceso" json:"ultimo_acceso,omitempty"`
}

func (u *User) Validate() error {
	if u.Nombre == "" || u.Apellido == "" {
		return apperror.Validation("usuario %d: nombre y apellido son obligatorios", u.ID)
	}
	if !rut.ValidFormat(u.RUT) {
		return apperror.Validation("usuario %d: rut %q con formato inválido", u.ID, u.RUT)
	}
	if !emailPattern.MatchString(u.Email) {
		return apperror.Validation("usuario %d: email %q inválido", u.ID, u.Email)
	}
	if u.Rol == "" {
		return apperror.Validation("usuario %d: rol es obligatorio", u.ID)
	}
	return nil
}

// CreateInput is the creation payload. Contrasena is accepted only here
// and stored as an opaque credential.
type CreateInput struct {
	Nombre       string  `json:"nombre"`
	Apellido     string  `json:"apellido"`
	RUT          string  `json:"rut"`
	Email        string  `json:"email"`
	Telefono     *string `json:"telefono"`
	Rol          string  `json:"rol"`
	Especialidad *string `json:"especialidad"`
	Activo       *bool   `json:"activo"`
	Contrasena   string  `json:"contrasena"`
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
	if !emailPattern.MatchString(in.Email) {
		return apperror.BadRequest("email '%s' inválido", in.Email)
	}
	if in.Rol == "" {
		return apperror.BadRequest("el rol es obligatorio")
	}
	if in.Contrasena == "" {
		return apperror.BadRequest("la contraseña es obligatoria")
	}
	return nil
}

// UpdateInput carries presence per field: an unset field is left
// untouched, while an explicit null clears the column. Contrasena is
// deliberately absent: credentials are not updatable through this
// surface.
type UpdateInput struct {
	Nombre       query.Opt[string] `json:"nombre"`
	Apellido     query.Opt[string] `json:"apellido"`
	RUT          query.Opt[string] `json:"rut"`
	Email        query.Opt[string] `json:"email"`
	Telefono     query.Opt[string] `json:"telefono"`
	Rol          query.Opt[string] `json:"rol"`
	Especialidad query.Opt[string] `json:"especialidad"`
	Activo       query.Opt[bool]   `json:"activo"`
}

func (in *UpdateInput) Empty() bool {
	return !in.Nombre.Set && !in.Apellido.Set && !in.RUT.Set &&
		!in.Email.Set && !in.Telefono.Set && !in.Rol.Set &&
		!in.Especialidad.Set && !in.Activo.Set
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
	if in.Email.Null() {
		return apperror.BadRequest("el email no puede quedar vacío")
	}
	if in.Email.Set && !emailPattern.MatchString(*in.Email.Value) {
		return apperror.BadRequest("email '%s' inválido", *in.Email.Value)
	}
	if in.Rol.Set && (in.Rol.Null() || *in.Rol.Value == "") {
		return apperror.BadRequest("el rol no puede quedar vacío")
	}
	if in.Activo.Null() {
		return apperror.BadRequest("activo no puede quedar vacío")
	}
	return nil
}

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
	if in.Email.Set {
		u.Set("email", *in.Email.Value)
	}
	if in.Telefono.Set {
		u.Set("telefono", in.Telefono.Value)
	}
	if in.Rol.Set {
		u.Set("rol", *in.Rol.Value)
	}
	if in.Especialidad.Set {
		u.Set("especialidad", in.Especialidad.Value)
	}
	if in.Activo.Set {
		u.Set("activo", *in.Activo.Value)
	}
}
