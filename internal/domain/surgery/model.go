package surgery

import (
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

// Estados válidos para una cirugía.
const (
	EstadoProgramada = "Programada"
	EstadoConfirmada = "Confirmada"
	EstadoEnPabellon = "En Pabellón"
	EstadoCompletada = "Completada"
	EstadoCancelada  = "Cancelada"
	EstadoPostergada = "Postergada"
)

var validEstados = map[string]bool{
	EstadoProgramada: true, EstadoConfirmada: true, EstadoEnPabellon: true,
	EstadoCompletada: true, EstadoCancelada: true, EstadoPostergada: true,
}

// Surgery maps to the cirugias table. The scheduled end is derived from
// start plus duration when not given explicitly.
type Surgery struct {
	ID                int64      `db:"id_cirugia" json:"id_cirugia"`
	PacienteID        int64      `db:"id_paciente" json:"id_paciente"`
	MedicoPrincipalID int64      `db:"id_medico_principal" json:"id_medico_principal"`
	QuirofanoID       *int64     `db:"id_quirofano" json:"id_quirofano,omitempty"`
	NombreQuirofano   *string    `db:"nombre_quirofano" json:"nombre_quirofano,omitempty"`
	FechaHoraInicio   time.Time  `db:"fecha_hora_inicio_programada" json:"fecha_hora_inicio_programada"`
	DuracionMinutos   *int       `db:"duracion_estimada_minutos" json:"duracion_estimada_minutos,omitempty"`
	FechaHoraFin      *time.Time `db:"fecha_hora_fin_programada" json:"fecha_hora_fin_programada,omitempty"`
	TipoCirugia       string     `db:"tipo_cirugia" json:"tipo_cirugia"`
	Estado            string     `db:"estado_cirugia" json:"estado_cirugia"`
	NotasPre          *string    `db:"notas_preoperatorias" json:"notas_preoperatorias,omitempty"`
	NotasPost         *string    `db:"notas_postoperatorias" json:"notas_postoperatorias,omitempty"`
	FechaCreacion     time.Time  `db:"fecha_creacion_registro" json:"fecha_creacion_registro"`
	FechaUltimaMod    time.Time  `db:"fecha_ultima_modificacion" json:"fecha_ultima_modificacion"`
}

func (s *Surgery) Validate() error {
	if s.PacienteID <= 0 || s.MedicoPrincipalID <= 0 {
		return apperror.Validation("cirugía %d: referencias a paciente y médico son obligatorias", s.ID)
	}
	if s.FechaHoraInicio.IsZero() {
		return apperror.Validation("cirugía %d: fecha de inicio programada es obligatoria", s.ID)
	}
	if s.DuracionMinutos != nil && *s.DuracionMinutos <= 0 {
		return apperror.Validation("cirugía %d: duración estimada debe ser positiva", s.ID)
	}
	if s.TipoCirugia == "" {
		return apperror.Validation("cirugía %d: tipo de cirugía es obligatorio", s.ID)
	}
	return nil
}

// CreateInput is the scheduling payload.
type CreateInput struct {
	PacienteID        int64      `json:"id_paciente"`
	MedicoPrincipalID int64      `json:"id_medico_principal"`
	QuirofanoID       *int64     `json:"id_quirofano"`
	NombreQuirofano   *string    `json:"nombre_quirofano"`
	FechaHoraInicio   time.Time  `json:"fecha_hora_inicio_programada"`
	DuracionMinutos   *int       `json:"duracion_estimada_minutos"`
	FechaHoraFin      *time.Time `json:"fecha_hora_fin_programada"`
	TipoCirugia       string     `json:"tipo_cirugia"`
	Estado            string     `json:"estado_cirugia"`
	NotasPre          *string    `json:"notas_preoperatorias"`
	NotasPost         *string    `json:"notas_postoperatorias"`
}

func (in *CreateInput) Validate() error {
	if in.PacienteID <= 0 {
		return apperror.BadRequest("id_paciente es obligatorio")
	}
	if in.MedicoPrincipalID <= 0 {
		return apperror.BadRequest("id_medico_principal es obligatorio")
	}
	if in.FechaHoraInicio.IsZero() {
		return apperror.BadRequest("fecha_hora_inicio_programada es obligatoria")
	}
	if in.DuracionMinutos != nil && *in.DuracionMinutos <= 0 {
		return apperror.BadRequest("duracion_estimada_minutos debe ser un entero positivo")
	}
	if in.TipoCirugia == "" {
		return apperror.BadRequest("tipo_cirugia es obligatorio")
	}
	if in.Estado != "" && !validEstados[in.Estado] {
		return apperror.BadRequest("estado_cirugia '%s' inválido", in.Estado)
	}
	return nil
}

// UpdateInput carries presence per field: an unset field is left
// untouched, while an explicit null clears the column. Mandatory
// columns reject null.
type UpdateInput struct {
	PacienteID        query.Opt[int64]     `json:"id_paciente"`
	MedicoPrincipalID query.Opt[int64]     `json:"id_medico_principal"`
	QuirofanoID       query.Opt[int64]     `json:"id_quirofano"`
	NombreQuirofano   query.Opt[string]    `json:"nombre_quirofano"`
	FechaHoraInicio   query.Opt[time.Time] `json:"fecha_hora_inicio_programada"`
	DuracionMinutos   query.Opt[int]       `json:"duracion_estimada_minutos"`
	FechaHoraFin      query.Opt[time.Time] `json:"fecha_hora_fin_programada"`
	TipoCirugia       query.Opt[string]    `json:"tipo_cirugia"`
	Estado            query.Opt[string]    `json:"estado_cirugia"`
	NotasPre          query.Opt[string]    `json:"notas_preoperatorias"`
	NotasPost         query.Opt[string]    `json:"notas_postoperatorias"`
}

func (in *UpdateInput) Empty() bool {
	return !in.PacienteID.Set && !in.MedicoPrincipalID.Set && !in.QuirofanoID.Set &&
		!in.NombreQuirofano.Set && !in.FechaHoraInicio.Set && !in.DuracionMinutos.Set &&
		!in.FechaHoraFin.Set && !in.TipoCirugia.Set && !in.Estado.Set &&
		!in.NotasPre.Set && !in.NotasPost.Set
}

func (in *UpdateInput) Validate() error {
	if in.PacienteID.Set && (in.PacienteID.Null() || *in.PacienteID.Value <= 0) {
		return apperror.BadRequest("id_paciente debe ser un entero positivo")
	}
	if in.MedicoPrincipalID.Set && (in.MedicoPrincipalID.Null() || *in.MedicoPrincipalID.Value <= 0) {
		return apperror.BadRequest("id_medico_principal debe ser un entero positivo")
	}
	if in.FechaHoraInicio.Null() {
		return apperror.BadRequest("fecha_hora_inicio_programada no puede quedar vacía")
	}
	if in.DuracionMinutos.Set && in.DuracionMinutos.Value != nil && *in.DuracionMinutos.Value <= 0 {
		return apperror.BadRequest("duracion_estimada_minutos debe ser un entero positivo")
	}
	if in.TipoCirugia.Set && (in.TipoCirugia.Null() || *in.TipoCirugia.Value == "") {
		return apperror.BadRequest("tipo_cirugia no puede quedar vacío")
	}
	if in.Estado.Set && (in.Estado.Null() || !validEstados[*in.Estado.Value]) {
		estado := ""
		if in.Estado.Value != nil {
			estado = *in.Estado.Value
		}
		return apperror.BadRequest("estado_cirugia '%s' inválido", estado)
	}
	return nil
}

func (in *UpdateInput) apply(u *query.Update) {
	if in.PacienteID.Set {
		u.Set("id_paciente", *in.PacienteID.Value)
	}
	if in.MedicoPrincipalID.Set {
		u.Set("id_medico_principal", *in.MedicoPrincipalID.Value)
	}
	if in.QuirofanoID.Set {
		u.Set("id_quirofano", in.QuirofanoID.Value)
	}
	if in.NombreQuirofano.Set {
		u.Set("nombre_quirofano", in.NombreQuirofano.Value)
	}
	if in.FechaHoraInicio.Set {
		u.Set("fecha_hora_inicio_programada", *in.FechaHoraInicio.Value)
	}
	if in.DuracionMinutos.Set {
		u.Set("duracion_estimada_minutos", in.DuracionMinutos.Value)
	}
	if in.FechaHoraFin.Set {
		u.Set("fecha_hora_fin_programada", in.FechaHoraFin.Value)
	}
	if in.TipoCirugia.Set {
		u.Set("tipo_cirugia", *in.TipoCirugia.Value)
	}
	if in.Estado.Set {
		u.Set("estado_cirugia", *in.Estado.Value)
	}
	if in.NotasPre.Set {
		u.Set("notas_preoperatorias", in.NotasPre.Value)
	}
	if in.NotasPost.Set {
		u.Set("notas_postoperatorias", in.NotasPost.Value)
	}
}

// Filters are the list predicates. Date bounds compare against the
// calendar date of the scheduled start.
type Filters struct {
	FechaDesde *time.Time
	FechaHasta *time.Time
	PacienteID *int64
	MedicoID   *int64
	Estado     *string
}
