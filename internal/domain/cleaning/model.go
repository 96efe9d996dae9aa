package cleaning

import (
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

// Estados conocidos del panel de limpieza. El estado es texto libre en la
// tabla; estas constantes solo nombran los valores que el panel usa.
const (
	EstadoDisponible        = "Disponible"
	EstadoOcupado           = "Ocupado"
	EstadoLimpiezaPendiente = "Limpieza Pendiente"
	EstadoEnLimpieza        = "En Limpieza"
	EstadoNoDisponible      = "No Disponible"
	EstadoLimpio            = "Limpio"
	EstadoNoRegistrado      = "No Registrado"
)

// cleanEstados are the states that close a cleaning cycle: transitioning
// into one of them stamps ultima_limpieza_realizada_dt.
var cleanEstados = map[string]bool{
	EstadoDisponible: true,
	EstadoLimpio:     true,
}

// RoomState maps to estado_limpieza_quirofanos. The room name is the
// natural key; a room known to the registry may have no row at all.
type RoomState struct {
	NombreQuirofano         string     `db:"nombre_quirofano" json:"nombre_quirofano"`
	EstadoLimpieza          string     `db:"estado_limpieza" json:"estado_limpieza"`
	UltimaVezOcupadoHasta   *time.Time `db:"ultima_vez_ocupado_hasta" json:"ultima_vez_ocupado_hasta,omitempty"`
	UltimaLimpiezaRealizada *time.Time `db:"ultima_limpieza_realizada_dt" json:"ultima_limpieza_realizada_dt,omitempty"`
	NotasLimpieza           *string    `db:"notas_limpieza" json:"notas_limpieza,omitempty"`
	QuirofanoID             *int64     `db:"id_quirofano_fk" json:"id_quirofano_fk,omitempty"`
}

// UpdateInput carries presence per field: an unset field is left
// untouched, while an explicit null clears the column.
// ultima_limpieza_realizada_dt is deliberately absent: the service
// stamps it on clean transitions and the caller never controls it.
type UpdateInput struct {
	EstadoLimpieza        query.Opt[string]    `json:"estado_limpieza"`
	UltimaVezOcupadoHasta query.Opt[time.Time] `json:"ultima_vez_ocupado_hasta"`
	NotasLimpieza         query.Opt[string]    `json:"notas_limpieza"`
}

func (in *UpdateInput) Empty() bool {
	return !in.EstadoLimpieza.Set && !in.UltimaVezOcupadoHasta.Set && !in.NotasLimpieza.Set
}

func (in *UpdateInput) Validate() error {
	if in.EstadoLimpieza.Set && (in.EstadoLimpieza.Null() || *in.EstadoLimpieza.Value == "") {
		return apperror.BadRequest("estado_limpieza no puede quedar vacío")
	}
	return nil
}

func (in *UpdateInput) apply(u *query.Update) {
	if in.EstadoLimpieza.Set {
		u.Set("estado_limpieza", *in.EstadoLimpieza.Value)
	}
	if in.UltimaVezOcupadoHasta.Set {
		u.Set("ultima_vez_ocupado_hasta", in.UltimaVezOcupadoHasta.Value)
	}
	if in.NotasLimpieza.Set {
		u.Set("notas_limpieza", in.NotasLimpieza.Value)
	}
}
