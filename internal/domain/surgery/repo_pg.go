package surgery

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const surgeryCols = `id_cirugia, id_paciente, id_medico_principal, id_quirofano, nombre_quirofano,
	fecha_hora_inicio_programada, duracion_estimada_minutos, fecha_hora_fin_programada,
	tipo_cirugia, estado_cirugia, notas_preoperatorias, notas_postoperatorias,
	fecha_creacion_registro, fecha_ultima_modificacion`

func scanSurgery(row pgx.Row) (*Surgery, error) {
	var s Surgery
	err := row.Scan(&s.ID, &s.PacienteID, &s.MedicoPrincipalID, &s.QuirofanoID, &s.NombreQuirofano,
		&s.FechaHoraInicio, &s.DuracionMinutos, &s.FechaHoraFin,
		&s.TipoCirugia, &s.Estado, &s.NotasPre, &s.NotasPost,
		&s.FechaCreacion, &s.FechaUltimaMod)
	if err != nil {
		return nil, err
	}
	if s.FechaCreacion.IsZero() {
		s.FechaCreacion = time.Now().UTC()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Surgery) (*Surgery, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO cirugias (id_paciente, id_medico_principal, id_quirofano, nombre_quirofano,
			fecha_hora_inicio_programada, duracion_estimada_minutos, fecha_hora_fin_programada,
			tipo_cirugia, estado_cirugia, notas_preoperatorias, notas_postoperatorias,
			fecha_creacion_registro, fecha_ultima_modificacion)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now(), now())
		RETURNING `+surgeryCols,
		s.PacienteID, s.MedicoPrincipalID, s.QuirofanoID, s.NombreQuirofano,
		s.FechaHoraInicio, s.DuracionMinutos, s.FechaHoraFin,
		s.TipoCirugia, s.Estado, s.NotasPre, s.NotasPost)
	created, err := scanSurgery(row)
	if err != nil {
		return nil, apperror.FromPgInsert(err, "agendar cirugía")
	}
	return created, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Surgery, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+surgeryCols+` FROM cirugias WHERE id_cirugia = $1`, id)
	s, err := scanSurgery(row)
	if err != nil {
		return nil, apperror.FromPg(err, "obtener cirugía")
	}
	return s, nil
}

func (r *repoPG) List(ctx context.Context, flt Filters, limit, skip int) ([]*Surgery, int, error) {
	f := query.NewFilter("cirugias", surgeryCols)
	if flt.FechaDesde != nil {
		f.Add("fecha_hora_inicio_programada::date >= $%d", *flt.FechaDesde)
	}
	if flt.FechaHasta != nil {
		f.Add("fecha_hora_inicio_programada::date <= $%d", *flt.FechaHasta)
	}
	if flt.PacienteID != nil {
		f.Add("id_paciente = $%d", *flt.PacienteID)
	}
	if flt.MedicoID != nil {
		f.Add("id_medico_principal = $%d", *flt.MedicoID)
	}
	if flt.Estado != nil {
		f.Add("estado_cirugia = $%d", *flt.Estado)
	}
	f.OrderBy("fecha_hora_inicio_programada")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, f.CountSQL(), f.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, apperror.FromPg(err, "listar cirugías")
	}
	rows, err := r.conn(ctx).Query(ctx, f.DataSQL(), f.DataArgs(limit, skip)...)
	if err != nil {
		return nil, 0, apperror.FromPg(err, "listar cirugías")
	}
	defer rows.Close()
	items := []*Surgery{}
	for rows.Next() {
		s, err := scanSurgery(rows)
		if err != nil {
			return nil, 0, apperror.FromPg(err, "listar cirugías")
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, in *UpdateInput, modifiedAt time.Time) error {
	u := query.NewUpdate()
	in.apply(u)
	u.Set("fecha_ultima_modificacion", modifiedAt)
	sql, args := u.SQL("cirugias", "id_cirugia", id)
	if _, err := r.conn(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.FromPg(err, "actualizar cirugía")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM cirugias WHERE id_cirugia = $1`, id)
	if err != nil {
		return 0, apperror.FromPg(err, "eliminar cirugía")
	}
	return tag.RowsAffected(), nil
}
