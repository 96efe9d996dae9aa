package cleaning

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/quirofanos/estados", h.ListEstados)
	g.GET("/quirofanos/:nombre/estado", h.Get)
	g.PUT("/quirofanos/:nombre/estado", h.Update)
}

type ListResponse struct {
	Quirofanos []*RoomState `json:"quirofanos"`
	Total      int          `json:"total"`
}

func roomName(c echo.Context) (string, error) {
	name := c.Param("nombre")
	if name == "" {
		return "", apperror.BadRequest("nombre de quirófano requerido")
	}
	return name, nil
}

func (h *Handler) ListEstados(c echo.Context) error {
	items, total, err := h.svc.ListEstados(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListResponse{Quirofanos: items, Total: total})
}

func (h *Handler) Get(c echo.Context) error {
	name, err := roomName(c)
	if err != nil {
		return err
	}
	rs, err := h.svc.Get(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}

func (h *Handler) Update(c echo.Context) error {
	name, err := roomName(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("cuerpo de la solicitud inválido: %v", err)
	}
	rs, err := h.svc.Update(c.Request().Context(), name, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rs)
}
