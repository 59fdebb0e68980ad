package inventory

import (
	"github.com/labstack/echo/v4"

	"github.com/lifelink/lifelink/internal/platform/auth"
	"github.com/lifelink/lifelink/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/inventory", h.Summary, auth.RequireKind(auth.ActorNGO))
}

func (h *Handler) Summary(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	s, err := h.svc.Summary(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return respond.OK(c, "inventory summary fetched", s)
}
