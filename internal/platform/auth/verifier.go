package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
)

// ErrInvalidCredentials is returned by verifiers for unknown users and
// wrong passwords alike, so callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("RUT o contraseña incorrectos")

// Identity describes an authenticated principal.
type Identity struct {
	RUT    string
	Nombre string
	Rol    string
}

// CredentialVerifier checks a username (RUT) and password pair.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*Identity, error)
}

// StaticVerifier authenticates a single configured demo account.
type StaticVerifier struct {
	RUT      string
	Password string
	Nombre   string
	Rol      string
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) (*Identity, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.RUT)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &Identity{RUT: v.RUT, Nombre: v.Nombre, Rol: v.Rol}, nil
}

// Credential is the login-relevant slice of a staff record.
type Credential struct {
	ID     int64
	RUT    string
	Secret string
	Nombre string
	Rol    string
	Activo bool
}

// CredentialSource looks up staff credentials. Implemented by the staff
// repository so logins can be backed by the usuarios table.
type CredentialSource interface {
	CredentialByRUT(ctx context.Context, rut string) (*Credential, error)
	RecordAccess(ctx context.Context, id int64, at time.Time) error
}

// StoreVerifier authenticates against the staff directory and stamps
// the user's last-access time on success.
type StoreVerifier struct {
	src CredentialSource
}

func NewStoreVerifier(src CredentialSource) *StoreVerifier {
	return &StoreVerifier{src: src}
}

func (v *StoreVerifier) Verify(ctx context.Context, username, password string) (*Identity, error) {
	cred, err := v.src.CredentialByRUT(ctx, username)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !cred.Activo {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(cred.Secret)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if err := v.src.RecordAccess(ctx, cred.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &Identity{RUT: cred.RUT, Nombre: cred.Nombre, Rol: cred.Rol}, nil
}
