package surgery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thebakclinic/clinic-api/internal/platform/apperror"
	"github.com/thebakclinic/clinic-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

type ListResponse struct {
	Cirugias []*Surgery `json:"cirugias"`
	Total    int        `json:"total"`
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("identificador de cirugía inválido: %s", c.Param("id"))
	}
	return id, nil
}

// parseFilters reads the optional list predicates from the query string.
func parseFilters(c echo.Context) (Filters, error) {
	var f Filters
	if v := c.QueryParam("fecha_desde"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperror.BadRequest("fecha_desde '%s' inválida (formato esperado: YYYY-MM-DD)", v)
		}
		f.FechaDesde = &t
	}
	if v := c.QueryParam("fecha_hasta"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, apperror.BadRequest("fecha_hasta '%s' inválida (formato esperado: YYYY-MM-DD)", v)
		}
		f.FechaHasta = &t
	}
	if v := c.QueryParam("id_paciente"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperror.BadRequest("id_paciente '%s' inválido", v)
		}
		f.PacienteID = &id
	}
	if v := c.QueryParam("id_medico"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperror.BadRequest("id_medico '%s' inválido", v)
		}
		f.MedicoID = &id
	}
	if v := c.QueryParam("estado"); v != "" {
		f.Estado = &v
	}
	return f, nil
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("cuerpo de la solicitud inválido: %v", err)
	}
	sg, err := h.svc.Create(c.Request().Context(), &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sg)
}

func (h *Handler) List(c echo.Context) error {
	f, err := parseFilters(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListResponse{Cirugias: items, Total: total})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sg)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperror.BadRequest("cuerpo de la solicitud inválido: %v", err)
	}
	sg, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sg)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
