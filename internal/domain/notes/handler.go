package notes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notes", h.List)
	api.POST("/notes", h.Add)
	api.DELETE("/notes/:id", h.Delete)
	api.GET("/toast", h.Toast)
}

func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.List())
}

type addRequest struct {
	Text string `json:"text"`
}

func (h *Handler) Add(c echo.Context) error {
	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	note, err := h.svc.Add(req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Toast returns the pending toast message once; 204 when there is none.
func (h *Handler) Toast(c echo.Context) error {
	msg, ok := h.svc.TakeToast()
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}
