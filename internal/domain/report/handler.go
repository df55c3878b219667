package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

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
	api.GET("/medicines", h.SearchMedicines)
	api.POST("/medicines/:barcode/increment", h.Increment)
	api.POST("/medicines/:barcode/decrement", h.Decrement)
	api.GET("/reports", h.ListReports)
	api.POST("/reports", h.SubmitReport)
}

func (h *Handler) SearchMedicines(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Search(c.QueryParam("q")))
}

func (h *Handler) Increment(c echo.Context) error {
	m, err := h.svc.Increment(c.Param("barcode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Decrement(c echo.Context) error {
	m, err := h.svc.Decrement(c.Param("barcode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	all := h.svc.Reports()
	start, end := pg.Bounds(len(all))
	return c.JSON(http.StatusOK, pagination.NewResponse(all[start:end], len(all), pg.Limit, pg.Offset))
}

func (h *Handler) SubmitReport(c echo.Context) error {
	ctx := c.Request().Context()
	r, err := h.svc.Submit(ctx, auth.ClinicianFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrEmptyReport) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}
