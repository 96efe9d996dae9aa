package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// TokenResponse is the login success payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Handler serves the login endpoint.
type Handler struct {
	verifier CredentialVerifier
	issuer   *TokenIssuer
	logger   zerolog.Logger
}

func NewHandler(verifier CredentialVerifier, issuer *TokenIssuer, logger zerolog.Logger) *Handler {
	return &Handler{verifier: verifier, issuer: issuer, logger: logger}
}

// Register mounts the auth routes on the given group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/login", h.Login)
}

// Login exchanges form credentials (username = RUT, password) for a
// bearer token. Unknown users and bad passwords get the same response.
func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	identity, err := h.verifier.Verify(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		h.logger.Error().Err(err).Msg("login verification failed")
		return err
	}

	token, err := h.issuer.Issue(identity.RUT, identity.Rol)
	if err != nil {
		h.logger.Error().Err(err).Msg("token issuance failed")
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
