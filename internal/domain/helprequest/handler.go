package helprequest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klukovki23/healthcare-on-the-go/internal/models"
	"github.com/klukovki23/healthcare-on-the-go/internal/platform/auth"
	"github.com/klukovki23/healthcare-on-the-go/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/help-requests", h.List)
	api.POST("/help-requests", h.Create)
	api.GET("/help-requests/:id", h.Get)
	api.PATCH("/help-requests/:id", h.UpdateStatus)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), models.HelpStatus(c.QueryParam("status")), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Create(c echo.Context) error {
	var req models.HelpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Requester == "" {
		req.Requester = auth.ClinicianFromContext(c.Request().Context())
	}
	created, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "help request not found")
	}
	return c.JSON(http.StatusOK, r)
}

type statusRequest struct {
	Status models.HelpStatus `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var body statusRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), body.Status)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, r)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
