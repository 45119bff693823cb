package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrMalformedDate = errors.New("malformed due date")
	ErrEmptyPayload  = errors.New("sync payload is empty")
	ErrViewNotFound  = errors.New("view not found")
)

// SortType selects the ordering strategy for a view's items.
type SortType string

const (
	SortTodoist     SortType = "todoist"
	SortDueDateAsc  SortType = "dueDateAsc"
	SortDueDateDesc SortType = "dueDateDesc"
)

// DueCategory classifies how far away a due date is, for the renderer.
type DueCategory string

const (
	DueOverdueOld DueCategory = "overdue-old"
	DueOverdue    DueCategory = "overdue"
	DueToday      DueCategory = "today"
	DueTomorrow   DueCategory = "tomorrow"
	DueThisWeek   DueCategory = "this-week"
	DueThisYear   DueCategory = "this-year"
	DueFarFuture  DueCategory = "far-future"
	DueNone       DueCategory = "none"
)

// NoDate constraint values for a criterion.
const (
	NoDateOnly    = "only"
	NoDateExclude = "exclude"
)

// Due is the due-date object attached to a task by the sync API. Date is
// either "YYYY-MM-DD" (all-day) or a date-time, with a trailing "Z" when the
// timestamp is UTC rather than floating local time.
type Due struct {
	Date        string  `json:"date"`
	Timezone    *string `json:"timezone,omitempty"`
	IsRecurring bool    `json:"is_recurring,omitempty"`
}

// Task is one item from the sync payload. SortDate and AllDay are derived
// by the group finalizer; the upstream fields are never rewritten.
type Task struct {
	ID             int64   `json:"id"`
	Content        string  `json:"content"`
	ProjectID      int64   `json:"project_id"`
	Labels         []int64 `json:"labels"`
	Priority       int     `json:"priority"`
	Due            *Due    `json:"due"`
	ChildOrder     int     `json:"child_order"`
	ParentID       *int64  `json:"parent_id,omitempty"`
	ResponsibleUID *int64  `json:"responsible_uid,omitempty"`
	Checked        int     `json:"checked,omitempty"`

	SortDate time.Time `json:"sort_date,omitempty"`
	AllDay   bool      `json:"all_day,omitempty"`
}

// HasDue reports whether the task carries a due date.
func (t *Task) HasDue() bool {
	return t.Due != nil && t.Due.Date != ""
}

// Project is a reference-table row looked up by id or name.
type Project struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Label is a reference-table row looked up by id or name.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Collaborator is a shared-project member; ImageID points at an avatar.
type Collaborator struct {
	ID      int64   `json:"id"`
	ImageID *string `json:"image_id"`
}

// SyncPayload is one complete sync response. The engine reads it for the
// duration of a single refresh cycle and never mutates it.
type SyncPayload struct {
	Items         []Task         `json:"items"`
	Projects      []Project      `json:"projects"`
	Labels        []Label        `json:"labels"`
	Collaborators []Collaborator `json:"collaborators"`
}

// ProjectByID returns the project with the given id, if any.
func (p *SyncPayload) ProjectByID(id int64) *Project {
	for i := range p.Projects {
		if p.Projects[i].ID == id {
			return &p.Projects[i]
		}
	}
	return nil
}

// LabelByID returns the label with the given id, if any.
func (p *SyncPayload) LabelByID(id int64) *Label {
	for i := range p.Labels {
		if p.Labels[i].ID == id {
			return &p.Labels[i]
		}
	}
	return nil
}

// CollaboratorByID returns the collaborator with the given id, if any.
func (p *SyncPayload) CollaboratorByID(id int64) *Collaborator {
	for i := range p.Collaborators {
		if p.Collaborators[i].ID == id {
			return &p.Collaborators[i]
		}
	}
	return nil
}

// DisplayConfig controls ordering, truncation and rendering of one view.
type DisplayConfig struct {
	MaximumEntries   int      `json:"maximumEntries" mapstructure:"maximumEntries"`
	SortType         SortType `json:"sortType" mapstructure:"sortType" validate:"omitempty,oneof=todoist dueDateAsc dueDateDesc"`
	ShowProjectName  bool     `json:"showProjectName" mapstructure:"showProjectName"`
	ShowProjectColor bool     `json:"showProjectColor" mapstructure:"showProjectColor"`
	ShowLabels       bool     `json:"showLabels" mapstructure:"showLabels"`
	ShowWhenEmpty    bool     `json:"showWhenEmpty" mapstructure:"showWhenEmpty"`
}

// Criterion is one OR-branch of a filter group: a task matches the branch
// only if every present sub-condition holds. Absent fields are wildcards.
type Criterion struct {
	Projects        []string `json:"projects,omitempty" mapstructure:"projects"`
	ExcludeProjects bool     `json:"excludeProjects,omitempty" mapstructure:"excludeProjects"`
	Labels          []string `json:"labels,omitempty" mapstructure:"labels"`
	ExcludeLabels   bool     `json:"excludeLabels,omitempty" mapstructure:"excludeLabels"`
	Priority        []int    `json:"priority,omitempty" mapstructure:"priority"`
	NoDate          string   `json:"noDate,omitempty" mapstructure:"noDate" validate:"omitempty,oneof=only exclude"`
	WithinDays      int      `json:"withinDays,omitempty" mapstructure:"withinDays"`
}

// FilterGroup is one named, configured view declaration.
type FilterGroup struct {
	Name     string        `json:"name" mapstructure:"name" validate:"required"`
	Config   DisplayConfig `json:"config" mapstructure:"config"`
	Criteria []Criterion   `json:"criteria" mapstructure:"criteria" validate:"dive"`
}

// View is one finalized output group: the name and display config from the
// declaration plus the matched, enriched, ordered items.
type View struct {
	Name   string        `json:"name"`
	Items  []Task        `json:"items"`
	Config DisplayConfig `json:"config"`
}

// DueLabel is the human-relative due annotation for one item.
type DueLabel struct {
	Text     string      `json:"text"`
	Category DueCategory `json:"category"`
}

// ResolvePriority maps a user-facing priority tier (p1 is the most urgent
// in the UI) to the raw API scale, where 4 is the highest and 1 the
// default. The mapping is exact and reversible; out-of-range input is a
// caller contract violation and is passed through unclamped.
func ResolvePriority(p int) int {
	return 5 - p
}
