package notification

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
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

func (r *repoPG) CancelledSurgeries(ctx context.Context, since time.Time) ([]CancelledSurgery, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id_cirugia, tipo_cirugia, id_paciente
		FROM cirugias
		WHERE estado_cirugia = 'Cancelada' AND fecha_ultima_modificacion >= $1
		ORDER BY fecha_ultima_modificacion DESC`, since)
	if err != nil {
		return nil, apperror.FromPg(err, "consultar cirugías canceladas")
	}
	defer rows.Close()
	items := []CancelledSurgery{}
	for rows.Next() {
		var cs CancelledSurgery
		if err := rows.Scan(&cs.ID, &cs.Tipo, &cs.PacienteID); err != nil {
			return nil, apperror.FromPg(err, "consultar cirugías canceladas")
		}
		items = append(items, cs)
	}
	return items, nil
}

func (r *repoPG) PendingCleaningRooms(ctx context.Context) ([]PendingRoom, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT nombre_quirofano, ultima_vez_ocupado_hasta
		FROM estado_limpieza_quirofanos
		WHERE estado_limpieza = 'Limpieza Pendiente'
		ORDER BY ultima_vez_ocupado_hasta ASC`)
	if err != nil {
		return nil, apperror.FromPg(err, "consultar quirófanos con limpieza pendiente")
	}
	defer rows.Close()
	items := []PendingRoom{}
	for rows.Next() {
		var pr PendingRoom
		if err := rows.Scan(&pr.Nombre, &pr.UltimaVezOcupadoHasta); err != nil {
			return nil, apperror.FromPg(err, "consultar quirófanos con limpieza pendiente")
		}
		items = append(items, pr)
	}
	return items, nil
}
