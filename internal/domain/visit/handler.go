package visit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/schedule")
	g.GET("", h.GetSchedule)
	g.PUT("/edit-mode", h.SetEditMode)
	g.POST("/undo", h.Undo)
	g.GET("/current", h.GetCurrent)
	g.PUT("/appointments/:id", h.UpdateAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
	g.POST("/appointments/:id/move", h.MoveAppointment)
	g.POST("/appointments/:id/open", h.OpenAppointment)
	g.POST("/appointments/:id/complete", h.CompleteAppointment)
	g.POST("/assist/accept", h.AcceptHelp)
	g.POST("/assist/decline", h.DeclineHelp)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Tick(c.Request().Context()))
}

type editModeRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) SetEditMode(c echo.Context) error {
	var req editModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.SetEditMode(c.Request().Context(), req.Enabled))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	var edit Edit
	if err := c.Bind(&edit); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), c.Param("id"), edit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	notice, err := h.svc.Delete(c.Request().Context(), c.Param("id"), confirmed(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notice)
}

func (h *Handler) Undo(c echo.Context) error {
	restored, err := h.svc.Undo(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"restored": restored})
}

type moveRequest struct {
	Index int `json:"index"`
}

func (h *Handler) MoveAppointment(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Move(c.Request().Context(), c.Param("id"), req.Index); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) OpenAppointment(c echo.Context) error {
	a, err := h.svc.SetCurrent(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetCurrent(c echo.Context) error {
	a, ok := h.svc.Current()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no appointment opened")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CompleteAppointment(c echo.Context) error {
	st, err := h.svc.Complete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) AcceptHelp(c echo.Context) error {
	a, err := h.svc.Accept(c.Request().Context(), confirmed(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeclineHelp(c echo.Context) error {
	if err := h.svc.Decline(c.Request().Context(), confirmed(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// confirmed reads the ?confirm= flag that stands in for the confirmation
// dialog.
func confirmed(c echo.Context) bool {
	ok, _ := strconv.ParseBool(c.QueryParam("confirm"))
	return ok
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoDemo), errors.Is(err, ErrNotAccepted), errors.Is(err, ErrAlreadyActive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
