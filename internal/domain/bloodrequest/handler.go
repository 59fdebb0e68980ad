package bloodrequest

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
	hospital := auth.RequireKind(auth.ActorHospital)
	ngo := auth.RequireKind(auth.ActorNGO)
	party := auth.RequireKind(auth.ActorHospital, auth.ActorNGO)

	api.POST("/blood-requests", h.Create, hospital)
	api.GET("/blood-requests", h.List, party)
	api.GET("/blood-requests/:id", h.Get, party)
	api.PATCH("/blood-requests/:id/status", h.AdvanceStatus, ngo)
	api.POST("/blood-requests/:id/confirm-delivery", h.ConfirmDelivery, hospital)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	r, err := h.svc.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return respond.Created(c, "blood request created", r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood request id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	r, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood request fetched", r)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	f := Filter{Status: Status(c.QueryParam("status"))}
	items, total, err := h.svc.List(c.Request().Context(), p, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood requests fetched", pagination.NewResponse(items, total, pg))
}

func (h *Handler) AdvanceStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood request id")
	}
	var in AdvanceInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	r, err := h.svc.AdvanceStatus(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood request status updated", r)
}

func (h *Handler) ConfirmDelivery(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood request id")
	}
	var in ConfirmInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	r, err := h.svc.ConfirmDelivery(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "delivery confirmed", r)
}
