package report

import (
	"context"

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

func (r *repoPG) CountPacientes(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pacientes`).Scan(&n); err != nil {
		return 0, apperror.FromPg(err, "contar pacientes")
	}
	return n, nil
}

func (r *repoPG) CountUsuarios(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&n); err != nil {
		return 0, apperror.FromPg(err, "contar usuarios")
	}
	return n, nil
}

func (r *repoPG) CirugiasPorEstado(ctx context.Context) ([]ConteoPorEstado, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT estado_cirugia, COUNT(*) AS cantidad
		FROM cirugias
		GROUP BY estado_cirugia
		ORDER BY estado_cirugia`)
	if err != nil {
		return nil, apperror.FromPg(err, "agrupar cirugías por estado")
	}
	defer rows.Close()
	items := []ConteoPorEstado{}
	for rows.Next() {
		var c ConteoPorEstado
		if err := rows.Scan(&c.Estado, &c.Cantidad); err != nil {
			return nil, apperror.FromPg(err, "agrupar cirugías por estado")
		}
		items = append(items, c)
	}
	return items, nil
}
