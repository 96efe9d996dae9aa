package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer([]byte("test-signing-key"), time.Hour)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	token, err := issuer.Issue("11.111.111-1", "administrador")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "11.111.111-1" {
		t.Errorf("expected subject 11.111.111-1, got %s", claims.Subject)
	}
	if claims.Rol != "administrador" {
		t.Errorf("expected rol administrador, got %s", claims.Rol)
	}
}

func TestTokenIssuer_RejectsWrongKey(t *testing.T) {
	token, err := testIssuer().Issue("11.111.111-1", "administrador")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := NewTokenIssuer([]byte("another-key"), time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification to fail with a different key")
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-signing-key"), -time.Minute)
	token, err := issuer.Issue("11.111.111-1", "administrador")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification to fail for expired token")
	}
}

func TestStaticVerifier(t *testing.T) {
	v := &StaticVerifier{RUT: "12.345.678-9", Password: "admin", Nombre: "Demo", Rol: "administrador"}

	id, err := v.Verify(context.Background(), "12.345.678-9", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Rol != "administrador" {
		t.Errorf("expected rol administrador, got %s", id.Rol)
	}

	if _, err := v.Verify(context.Background(), "12.345.678-9", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "1.111.111-1", "admin"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

type mockCredentialSource struct {
	creds    map[string]*Credential
	accessed []int64
}

func (m *mockCredentialSource) CredentialByRUT(_ context.Context, rut string) (*Credential, error) {
	if c, ok := m.creds[rut]; ok {
		return c, nil
	}
	return nil, apperror.NotFound("usuario no encontrado")
}

func (m *mockCredentialSource) RecordAccess(_ context.Context, id int64, _ time.Time) error {
	m.accessed = append(m.accessed, id)
	return nil
}

func TestStoreVerifier(t *testing.T) {
	src := &mockCredentialSource{creds: map[string]*Credential{
		"11.111.111-1": {ID: 7, RUT: "11.111.111-1", Secret: "s3cret", Nombre: "Ana", Rol: "enfermera", Activo: true},
		"7.654.321-6":  {ID: 9, RUT: "7.654.321-6", Secret: "pw", Activo: false},
	}}
	v := NewStoreVerifier(src)

	id, err := v.Verify(context.Background(), "11.111.111-1", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Nombre != "Ana" || id.Rol != "enfermera" {
		t.Errorf("unexpected identity: %+v", id)
	}
	if len(src.accessed) != 1 || src.accessed[0] != 7 {
		t.Errorf("expected access stamped for id 7, got %v", src.accessed)
	}

	if _, err := v.Verify(context.Background(), "11.111.111-1", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "99.999.999-9", "pw"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown rut, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "7.654.321-6", "pw"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
	if len(src.accessed) != 1 {
		t.Errorf("expected no access stamp on failed logins, got %v", src.accessed)
	}
}

func loginRequest(h *Handler, username, password string) *httptest.ResponseRecorder {
	e := echo.New()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLogin_Success(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	v := &StaticVerifier{RUT: "12.345.678-9", Password: "admin", Rol: "administrador"}
	h := NewHandler(v, testIssuer(), logger)

	rec := loginRequest(h, "12.345.678-9", "admin")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected body: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Errorf("expected token_type bearer, got %s", resp.TokenType)
	}
	if resp.AccessToken == "" {
		t.Error("expected non-empty access_token")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	v := &StaticVerifier{RUT: "12.345.678-9", Password: "admin"}
	h := NewHandler(v, testIssuer(), logger)

	for _, tc := range []struct{ user, pass string }{
		{"12.345.678-9", "nope"},
		{"1.111.111-1", "admin"},
		{"", ""},
	} {
		rec := loginRequest(h, tc.user, tc.pass)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login(%q,%q): expected 401, got %d", tc.user, tc.pass, rec.Code)
		}
		if rec.Header().Get(echo.HeaderWWWAuthenticate) != "Bearer" {
			t.Errorf("login(%q,%q): expected WWW-Authenticate Bearer header", tc.user, tc.pass)
		}
	}
}
