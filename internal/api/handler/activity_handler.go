package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/realspark/console-gateway/internal/core/ports"
)

// ActivityHandler serves the console's own activity trail (normalized
// notices and guard denials) for the operator's diagnostics view.
type ActivityHandler struct {
	activity ports.ActivityRepository
}

func NewActivityHandler(activity ports.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent lists the newest activity entries.
//
// @Summary      Recent console activity
// @Tags         activity
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries (default 50)"
// @Success      200    {array}   domain.Notice
// @Failure      503    {object}  map[string]string
// @Router       /activity [get]
func (h *ActivityHandler) Recent(c echo.Context) error {
	if h.activity == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "activity trail not configured")
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	notices, err := h.activity.RecentNotices(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notices)
}
