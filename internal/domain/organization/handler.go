package organization

import (
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
	api.GET("/organizations", h.List)
	api.GET("/organizations/:id", h.Get)
	api.POST("/organizations", h.Create, auth.RequireKind(auth.ActorAdmin))
	api.PUT("/organizations/:id", h.Update, auth.RequireKind(auth.ActorNGO, auth.ActorHospital))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	o, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond.Created(c, "organization created", o)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid organization id")
	}
	o, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "organization fetched", o)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), Kind(c.QueryParam("kind")), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "organizations fetched", pagination.NewResponse(items, total, pg))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid organization id")
	}
	var body struct {
		UpdateInput
		Verified *bool `json:"verified"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	o, err := h.svc.Update(c.Request().Context(), p, id, body.UpdateInput, body.Verified)
	if err != nil {
		return err
	}
	return respond.OK(c, "organization updated", o)
}
