package center

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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

	api.POST("/centers", h.Create, ngo)
	api.GET("/centers", h.List, ngo)
	api.GET("/centers/nearby", h.Nearby)
	api.GET("/centers/:id", h.Get)
	api.PUT("/centers/:id", h.Update, ngo)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	created, err := h.svc.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return respond.Created(c, "center created", created)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid center id")
	}
	ctr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "center fetched", ctr)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	items, total, err := h.svc.ListByNGO(c.Request().Context(), p.ID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "centers fetched", pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid center id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	ctr, err := h.svc.Update(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "center updated", ctr)
}

func (h *Handler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return apperr.Validation("lat is required")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return apperr.Validation("lng is required")
	}
	radius, _ := strconv.ParseFloat(c.QueryParam("radius_km"), 64)

	items, err := h.svc.Nearby(c.Request().Context(), lat, lng, radius)
	if err != nil {
		return err
	}
	return respond.OK(c, "nearby centers fetched", items)
}
