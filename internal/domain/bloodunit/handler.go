package bloodunit

import (
	"strconv"

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

	api.POST("/blood-units", h.Register, ngo)
	api.GET("/blood-units", h.List, ngo)
	api.GET("/blood-units/expiring", h.ListExpiring, ngo)
	api.GET("/blood-units/:id", h.Get)
	api.PATCH("/blood-units/:id/status", h.SetStatus, ngo)
	api.POST("/blood-units/:id/transfer", h.Transfer, ngo)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Register(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return respond.Created(c, "blood unit registered", u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood unit id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood unit fetched", u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		Status:     Status(c.QueryParam("status")),
		BloodGroup: blood.Group(c.QueryParam("blood_group")),
	}
	if v := c.QueryParam("center_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid center_id")
		}
		f.CenterID = id
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), p, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood units fetched", pagination.NewResponse(items, total, pg))
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood unit id")
	}
	var body struct {
		Status Status  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.SetStatus(c.Request().Context(), p, id, body.Status, body.Notes)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood unit status updated", u)
}

func (h *Handler) Transfer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid blood unit id")
	}
	var in TransferInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	u, err := h.svc.Transfer(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "blood unit transferred", u)
}

func (h *Handler) ListExpiring(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	items, err := h.svc.ListExpiringSoon(c.Request().Context(), p, days)
	if err != nil {
		return err
	}
	return respond.OK(c, "expiring blood units fetched", items)
}
