package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tododash/core/internal/application/services"
	"github.com/tododash/core/internal/infrastructure/config"
	"github.com/tododash/core/internal/infrastructure/logger"
	"github.com/tododash/core/internal/ports"
)

// ViewHandler serves the rendered dashboard views.
type ViewHandler struct {
	refresh    *services.RefreshService
	labeler    ports.DueLabeler
	translator ports.Translator
	dashboard  config.DashboardConfig
	logger     *logger.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(
	refresh *services.RefreshService,
	labeler ports.DueLabeler,
	translator ports.Translator,
	dashboard config.DashboardConfig,
	appLogger *logger.Logger,
) *ViewHandler {
	return &ViewHandler{
		refresh:    refresh,
		labeler:    labeler,
		translator: translator,
		dashboard:  dashboard,
		logger:     appLogger.WithComponent("http"),
	}
}

// ListViews handles GET /views: the full render model for the dashboard.
func (h *ViewHandler) ListViews(c echo.Context) error {
	views, payload, lastUpdate := h.refresh.Views()
	if payload == nil {
		return c.JSON(http.StatusOK, ports.DashboardResponse{Loaded: false})
	}

	now := time.Now()
	resp := ports.DashboardResponse{
		Loaded:    true,
		Views:     make([]ports.ViewResponse, 0, len(views)),
		UpdatedAt: nullableTime(lastUpdate),
	}
	for _, v := range views {
		// Suppressing empty views is the renderer's half of the contract.
		if len(v.Items) == 0 && !v.Config.ShowWhenEmpty {
			continue
		}
		resp.Views = append(resp.Views, h.renderView(v, payload, now))
	}

	return c.JSON(http.StatusOK, resp)
}

// GetView handles GET /views/:name for a single named view.
func (h *ViewHandler) GetView(c echo.Context) error {
	name := c.Param("name")

	views, payload, _ := h.refresh.Views()
	if payload == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "No data yet")
	}

	for _, v := range views {
		if v.Name == name {
			return c.JSON(http.StatusOK, h.renderView(v, payload, time.Now()))
		}
	}

	return echo.NewHTTPError(http.StatusNotFound, "View not found")
}

// ForceRefresh handles POST /refresh, bypassing the scheduler guard.
func (h *ViewHandler) ForceRefresh(c echo.Context) error {
	if err := h.refresh.Refresh(c.Request().Context(), true); err != nil {
		h.logger.Errorw("Forced refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Refresh failed; last known views retained")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Refreshed"})
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// SchedulerHandler exposes the refresh guard: suspend/resume mirror the
// widget being hidden or shown, presence mirrors the PIR sensor signal.
type SchedulerHandler struct {
	scheduler *services.Scheduler
	logger    *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(scheduler *services.Scheduler, appLogger *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    appLogger.WithComponent("http"),
	}
}

// Suspend handles POST /scheduler/suspend
func (h *SchedulerHandler) Suspend(c echo.Context) error {
	h.scheduler.Suspend()
	h.logger.Info("Refreshing suspended")
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Suspended"})
}

// Resume handles POST /scheduler/resume
func (h *SchedulerHandler) Resume(c echo.Context) error {
	h.scheduler.Resume()
	h.logger.Info("Refreshing resumed")
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Resumed"})
}

// SetPresence handles POST /scheduler/presence
func (h *SchedulerHandler) SetPresence(c echo.Context) error {
	var req ports.PresenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	h.scheduler.SetPresence(req.Present)
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Presence updated"})
}

// GetState handles GET /scheduler
func (h *SchedulerHandler) GetState(c echo.Context) error {
	visible, present, lastRequest, interval := h.scheduler.State()

	return c.JSON(http.StatusOK, ports.SchedulerStateResponse{
		Visible:      visible,
		Present:      present,
		LastRequest:  nullableTime(lastRequest),
		IntervalMS:   interval.Milliseconds(),
		WouldRefresh: h.scheduler.ShouldRefreshNow(),
	})
}
