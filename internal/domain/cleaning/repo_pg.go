package cleaning

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

const roomCols = `nombre_quirofano, estado_limpieza, ultima_vez_ocupado_hasta, ultima_limpieza_realizada_dt, notas_limpieza, id_quirofano_fk`

func scanRoom(row pgx.Row) (*RoomState, error) {
	var rs RoomState
	err := row.Scan(&rs.NombreQuirofano, &rs.EstadoLimpieza, &rs.UltimaVezOcupadoHasta,
		&rs.UltimaLimpiezaRealizada, &rs.NotasLimpieza, &rs.QuirofanoID)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*RoomState, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+roomCols+` FROM estado_limpieza_quirofanos WHERE nombre_quirofano = $1`, name)
	rs, err := scanRoom(row)
	if err != nil {
		return nil, apperror.FromPg(err, "obtener estado de quirófano")
	}
	return rs, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*RoomState, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+roomCols+` FROM estado_limpieza_quirofanos ORDER BY nombre_quirofano`)
	if err != nil {
		return nil, apperror.FromPg(err, "listar estados de quirófanos")
	}
	defer rows.Close()
	items := []*RoomState{}
	for rows.Next() {
		rs, err := scanRoom(rows)
		if err != nil {
			return nil, apperror.FromPg(err, "listar estados de quirófanos")
		}
		items = append(items, rs)
	}
	return items, nil
}

func (r *repoPG) Upsert(ctx context.Context, name string, in *UpdateInput, limpiezaAt *time.Time) error {
	u := query.NewUpdate()
	in.apply(u)
	if limpiezaAt != nil {
		u.Set("ultima_limpieza_realizada_dt", limpiezaAt)
	}
	sql, args := u.SQL("estado_limpieza_quirofanos", "nombre_quirofano", name)
	tag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.FromPg(err, "actualizar estado de quirófano")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// First update for this room name: create the row with the same
	// field set (upsert-by-name).
	sql, args = u.InsertSQL("estado_limpieza_quirofanos", "nombre_quirofano", name)
	if _, err := r.conn(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.FromPg(err, "registrar estado de quirófano")
	}
	return nil
}
