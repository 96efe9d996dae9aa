package report

// ConteoPorEstado is one (estado, count) bucket of the surgery grouping.
type ConteoPorEstado struct {
	Estado   string `json:"estado"`
	Cantidad int    `json:"cantidad"`
}

// GeneralReport is the on-demand summary. It is never persisted; each
// read recomputes it from three independent queries.
type GeneralReport struct {
	TotalPacientes  int               `json:"total_pacientes_registrados"`
	TotalUsuarios   int               `json:"total_usuarios_personal"`
	CirugiasEstados []ConteoPorEstado `json:"conteo_cirugias_por_estado"`
}
