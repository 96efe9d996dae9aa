package staff

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/internal/platform/auth"
	"github.com/thebakclinic/clinic-api/internal/platform/db"
	"github.com/thebakclinic/clinic-api/internal/platform/query"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RepoPG is the pgx implementation. It satisfies both Repository and
// auth.CredentialSource.
type RepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) *RepoPG { return &RepoPG{pool: pool} }

var _ Repository = (*RepoPG)(nil)
var _ auth.CredentialSource = (*RepoPG)(nil)

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id_usuario, nombre, apellido, rut, email, telefono, rol, especialidad, activo, contrasena, fecha_creacion, ultimo_acceso`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Nombre, &u.Apellido, &u.RUT, &u.Email, &u.Telefono,
		&u.Rol, &u.Especialidad, &u.Activo, &u.Contrasena, &u.FechaCreacion, &u.UltimoAcceso)
	if err != nil {
		return nil, err
	}
	if u.FechaCreacion.IsZero() {
		u.FechaCreacion = time.Now().UTC()
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *RepoPG) Create(ctx context.Context, in *CreateInput) (*User, error) {
	activo := true
	if in.Activo != nil {
		activo = *in.Activo
	}
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO usuarios (nombre, apellido, rut, email, telefono, rol, especialidad, activo, contrasena, fecha_creacion)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
		RETURNING `+userCols,
		in.Nombre, in.Apellido, in.RUT, in.Email, in.Telefono, in.Rol, in.Especialidad, activo, in.Contrasena)
	u, err := scanUser(row)
	if err != nil {
		return nil, apperror.FromPgInsert(err, "crear usuario")
	}
	return u, nil
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM usuarios WHERE id_usuario = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, apperror.FromPg(err, "obtener usuario")
	}
	return u, nil
}

func (r *RepoPG) RUTExists(ctx context.Context, rut string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT id_usuario FROM usuarios WHERE rut = $1 AND id_usuario <> $2`, rut, excludeID)
}

func (r *RepoPG) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, `SELECT id_usuario FROM usuarios WHERE email = $1 AND id_usuario <> $2`, email, excludeID)
}

func (r *RepoPG) exists(ctx context.Context, sql string, args ...interface{}) (bool, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.FromPg(err, "verificar unicidad de usuario")
	}
	return true, nil
}

func (r *RepoPG) List(ctx context.Context, limit, skip int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&total); err != nil {
		return nil, 0, apperror.FromPg(err, "listar usuarios")
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM usuarios ORDER BY id_usuario LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, 0, apperror.FromPg(err, "listar usuarios")
	}
	defer rows.Close()
	items := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, apperror.FromPg(err, "listar usuarios")
		}
		items = append(items, u)
	}
	return items, total, nil
}

func (r *RepoPG) Update(ctx context.Context, id int64, in *UpdateInput) error {
	u := query.NewUpdate()
	in.apply(u)
	sql, args := u.SQL("usuarios", "id_usuario", id)
	if _, err := r.conn(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.FromPg(err, "actualizar usuario")
	}
	return nil
}

func (r *RepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM usuarios WHERE id_usuario = $1`, id)
	if err != nil {
		return 0, apperror.FromPg(err, "eliminar usuario")
	}
	return tag.RowsAffected(), nil
}

// CredentialByRUT looks up the login-relevant slice of a user row.
func (r *RepoPG) CredentialByRUT(ctx context.Context, rut string) (*auth.Credential, error) {
	var c auth.Credential
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id_usuario, rut, contrasena, nombre, rol, activo FROM usuarios WHERE rut = $1`, rut).
		Scan(&c.ID, &c.RUT, &c.Secret, &c.Nombre, &c.Rol, &c.Activo)
	if err != nil {
		return nil, apperror.FromPg(err, "obtener credenciales")
	}
	return &c, nil
}

// RecordAccess stamps a successful login.
func (r *RepoPG) RecordAccess(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`UPDATE usuarios SET ultimo_acceso = $2 WHERE id_usuario = $1`, id, at); err != nil {
		return apperror.FromPg(err, "registrar acceso")
	}
	return nil
}
