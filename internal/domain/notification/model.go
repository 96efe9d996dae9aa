package notification

import "time"

// Tipos de notificación.
const (
	TipoInfo   = "info"
	TipoAlerta = "alerta"
)

// Notification is ephemeral: entries are synthesized on every read from
// time-windowed queries, so identifiers are fresh per call and "leída"
// never persists. EntidadID holds an int64 for surgeries and the room
// name string for cleaning alerts.
type Notification struct {
	ID            string      `json:"id_notificacion"`
	Mensaje       string      `json:"mensaje"`
	Tipo          string      `json:"tipo"`
	FechaCreacion time.Time   `json:"fecha_creacion"`
	Leida         bool        `json:"leida"`
	EntidadTipo   *string     `json:"entidad_tipo,omitempty"`
	EntidadID     interface{} `json:"entidad_id,omitempty"`
}

// ListResponse: total_no_leidas counts the untruncated set, not the page.
type ListResponse struct {
	Notificaciones []*Notification `json:"notificaciones"`
	TotalNoLeidas  int             `json:"total_no_leidas"`
}
