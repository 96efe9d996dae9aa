package patient

import (
	"context"
	"errors"
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

const patientCols = `id_paciente, nombre, apellido, rut, fecha_nacimiento, telefono, email, direccion, prevision, numero_ficha, fecha_registro`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Nombre, &p.Apellido, &p.RUT, &p.FechaNacimiento.Time,
		&p.Telefono, &p.Email, &p.Direccion, &p.Prevision, &p.NumeroFicha, &p.FechaRegistro)
	if err != nil {
		return nil, err
	}
	if p.FechaRegistro.IsZero() {
		p.FechaRegistro = time.Now().UTC()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, in *CreateInput) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pacientes (nombre, apellido, rut, fecha_nacimiento, telefono, email, direccion, prevision, numero_ficha, fecha_registro)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		RETURNING `+patientCols,
		in.Nombre, in.Apellido, in.RUT, in.FechaNacimiento.Time,
		in.Telefono, in.Email, in.Direccion, in.Prevision, in.NumeroFicha)
	p, err := scanPatient(row)
	if err != nil {
		return nil, apperror.FromPgInsert(err, "crear paciente")
	}
	return p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM pacientes WHERE id_paciente = $1`, id)
	p, err := scanPatient(row)
	if err != nil {
		return nil, apperror.FromPg(err, "obtener paciente")
	}
	return p, nil
}

func (r *repoPG) RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id_paciente FROM pacientes WHERE rut = $1 AND id_paciente <> $2`, rut, excludeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.FromPg(err, "verificar rut")
	}
	return true, nil
}

func (r *repoPG) List(ctx context.Context, limit, skip int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pacientes`).Scan(&total); err != nil {
		return nil, 0, apperror.FromPg(err, "listar pacientes")
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM pacientes ORDER BY id_paciente LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, 0, apperror.FromPg(err, "listar pacientes")
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, apperror.FromPg(err, "listar pacientes")
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, in *UpdateInput) error {
	u := query.NewUpdate()
	in.apply(u)
	sql, args := u.SQL("pacientes", "id_paciente", id)
	if _, err := r.conn(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.FromPg(err, "actualizar paciente")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM pacientes WHERE id_paciente = $1`, id)
	if err != nil {
		return 0, apperror.FromPg(err, "eliminar paciente")
	}
	return tag.RowsAffected(), nil
}
