package ports

import (
	"time"

	"github.com/tododash/core/internal/domain/entities"
)

// ViewBuilder runs the filter-and-sort engine over one payload.
type ViewBuilder interface {
	BuildViews(payload *entities.SyncPayload, groups []entities.FilterGroup) []entities.View
}

// DueLabeler derives the human-relative due annotation for one item.
type DueLabeler interface {
	Label(due time.Time, allDay bool, now time.Time) entities.DueLabel
}

// Translator resolves locale-dependent strings for the renderer.
type Translator interface {
	Translate(key string) string
	MonthShort(m time.Month) string
	WeekdayShort(d time.Weekday) string
}

// Response types

// ItemResponse is one rendered task row.
type ItemResponse struct {
	ID           int64                `json:"id"`
	Content      string               `json:"content"`
	Priority     int                  `json:"priority"`
	ProjectName  string               `json:"project_name,omitempty"`
	ProjectColor string               `json:"project_color,omitempty"`
	Labels       []string             `json:"labels,omitempty"`
	Due          entities.DueLabel    `json:"due"`
	DueDate      string               `json:"due_date,omitempty"`
	AllDay       bool                 `json:"all_day"`
	Category     entities.DueCategory `json:"category"`
	AvatarURL    string               `json:"avatar_url,omitempty"`
}

// ViewResponse is one rendered view.
type ViewResponse struct {
	Name   string                 `json:"name"`
	Config entities.DisplayConfig `json:"config"`
	Empty  string                 `json:"empty,omitempty"`
	Items  []ItemResponse         `json:"items"`
}

// DashboardResponse is the full render model served to the dashboard.
type DashboardResponse struct {
	Loaded    bool           `json:"loaded"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
	Views     []ViewResponse `json:"views"`
}

// SchedulerStateResponse reports the refresh guard's current state.
type SchedulerStateResponse struct {
	Visible      bool       `json:"visible"`
	Present      bool       `json:"present"`
	LastRequest  *time.Time `json:"last_request,omitempty"`
	IntervalMS   int64      `json:"interval_ms"`
	WouldRefresh bool       `json:"would_refresh"`
}

// PresenceRequest toggles the user-presence flag.
type PresenceRequest struct {
	Present bool `json:"present"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
