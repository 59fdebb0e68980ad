package donor

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lifelink/lifelink/internal/domain/blood"
	"github.com/lifelink/lifelink/internal/platform/apperr"
	"github.com/lifelink/lifelink/internal/platform/auth"
	"github.com/lifelink/lifelink/internal/platform/respond"
	"github.com/lifelink/lifelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	ngo := auth.RequireKind(auth.ActorNGO)

	api.POST("/donors", h.Create, ngo)
	api.GET("/donors", h.List, ngo)
	api.GET("/donors/:id", h.Get)
	api.PUT("/donors/:id", h.Update, ngo)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "donor registered", d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid donor id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "donor fetched", d)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		BloodGroup: blood.Group(c.QueryParam("blood_group")),
		City:       c.QueryParam("city"),
	}
	if v := c.QueryParam("available"); v != "" {
		b := v == "true"
		f.Available = &b
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "donors fetched", pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid donor id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	d, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "donor updated", d)
}
