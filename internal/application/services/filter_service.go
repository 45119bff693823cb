package services

import (
	"sort"
	"time"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/infrastructure/logger"
)

// ResolvedCriterion is a criterion with its human-readable names resolved
// against the current reference tables. It is produced fresh every refresh
// cycle and never written back onto the configuration, so a stale
// resolution cannot survive an upstream rename.
//
// A nil set means "no constraint"; a non-nil empty set means "constraint
// matching nothing" (every requested name was unknown) and deliberately
// matches no task.
type ResolvedCriterion struct {
	Projects      map[int64]struct{}
	Labels        map[int64]struct{}
	ExcludeLabels bool
	Priority      map[int]struct{}
	NoDate        string
	WithinDays    int
}

// FilterService is the filter-and-sort engine: it resolves each group's
// criteria, classifies every task into at most one group, and finalizes
// each group's items for rendering.
type FilterService struct {
	logger *logger.Logger
}

// NewFilterService creates a new filter service
func NewFilterService(appLogger *logger.Logger) *FilterService {
	return &FilterService{
		logger: appLogger.WithComponent("filter"),
	}
}

// BuildViews runs the full pipeline over one payload and returns the views
// in declaration order. The payload is not mutated; matched tasks are
// copied into the output before enrichment.
func (s *FilterService) BuildViews(payload *entities.SyncPayload, groups []entities.FilterGroup) []entities.View {
	now := time.Now()

	resolved := make([][]ResolvedCriterion, len(groups))
	for i, g := range groups {
		resolved[i] = make([]ResolvedCriterion, len(g.Criteria))
		for j, c := range g.Criteria {
			resolved[i][j] = Resolve(c, payload.Projects, payload.Labels)
		}
	}

	matched := Classify(payload.Items, resolved, now)

	views := make([]entities.View, len(groups))
	for i, g := range groups {
		items := Finalize(matched[i], g.Config)
		views[i] = entities.View{Name: g.Name, Items: items, Config: g.Config}
		s.logger.Debugw("View built", "view", g.Name, "items", len(items))
	}

	return views
}

// Resolve converts one criterion's project/label names and priority tiers
// into id sets usable for O(1) membership tests. Name matching is exact,
// case-sensitive equality; with exclusion the result is every id whose name
// is not listed, without it at most one id per listed name (first
// reference-table match wins on duplicates). Unknown names contribute no
// ids and silently narrow the match set.
func Resolve(c entities.Criterion, projects []entities.Project, labels []entities.Label) ResolvedCriterion {
	rc := ResolvedCriterion{
		ExcludeLabels: c.ExcludeLabels,
		NoDate:        c.NoDate,
		WithinDays:    c.WithinDays,
	}

	if c.Projects != nil {
		rc.Projects = make(map[int64]struct{})
		if c.ExcludeProjects {
			for _, p := range projects {
				if !containsName(c.Projects, p.Name) {
					rc.Projects[p.ID] = struct{}{}
				}
			}
		} else {
			for _, name := range c.Projects {
				for _, p := range projects {
					if p.Name == name {
						rc.Projects[p.ID] = struct{}{}
						break
					}
				}
			}
		}
	}

	if c.Labels != nil {
		rc.Labels = make(map[int64]struct{})
		if c.ExcludeLabels {
			for _, l := range labels {
				if !containsName(c.Labels, l.Name) {
					rc.Labels[l.ID] = struct{}{}
				}
			}
		} else {
			for _, name := range c.Labels {
				for _, l := range labels {
					if l.Name == name {
						rc.Labels[l.ID] = struct{}{}
						break
					}
				}
			}
		}
	}

	if c.Priority != nil {
		rc.Priority = make(map[int]struct{}, len(c.Priority))
		for _, p := range c.Priority {
			rc.Priority[entities.ResolvePriority(p)] = struct{}{}
		}
	}

	return rc
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Classify assigns every task to at most one group. Groups and their
// criteria are evaluated in declaration order and the first alternative
// that accepts the task wins globally; a task matching nothing is dropped.
// The returned slices preserve input order (pre-sort insertion order).
func Classify(items []entities.Task, resolved [][]ResolvedCriterion, now time.Time) [][]entities.Task {
	matched := make([][]entities.Task, len(resolved))

	for _, item := range items {
		group, ok := classifyOne(&item, resolved, now)
		if ok {
			matched[group] = append(matched[group], item)
		}
	}

	return matched
}

// classifyOne returns the index of the first group whose criteria accept
// the task, evaluating groups and alternatives in declaration order.
func classifyOne(item *entities.Task, resolved [][]ResolvedCriterion, now time.Time) (int, bool) {
	for g, alternatives := range resolved {
		for _, rc := range alternatives {
			if matchesCriterion(item, rc, now) {
				return g, true
			}
		}
	}
	return 0, false
}

// matchesCriterion evaluates the AND of every present sub-condition,
// short-circuiting on the first failure.
func matchesCriterion(item *entities.Task, rc ResolvedCriterion, now time.Time) bool {
	if rc.Projects != nil {
		if _, ok := rc.Projects[item.ProjectID]; !ok {
			return false
		}
	}

	if rc.Labels != nil {
		if len(item.Labels) > 0 {
			found := false
			for _, id := range item.Labels {
				if _, ok := rc.Labels[id]; ok {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		} else if !rc.ExcludeLabels {
			// An exclusion list doesn't require labels, so absence is fine;
			// an inclusion list does.
			return false
		}
	}

	if rc.Priority != nil {
		if _, ok := rc.Priority[item.Priority]; !ok {
			return false
		}
	}

	if rc.NoDate == entities.NoDateOnly && item.HasDue() {
		return false
	}
	if rc.NoDate == entities.NoDateExclude && !item.HasDue() {
		return false
	}

	if rc.WithinDays > 0 && item.HasDue() {
		due, err := entities.ParseDueDate(item.Due.Date)
		if err != nil {
			// Item-scoped fallback: an unparseable date cannot be proven
			// beyond the window, so the sub-condition passes.
			return true
		}
		// Overdue items always pass; there is no lower bound.
		if entities.CalendarDaysBetween(now, due) > rc.WithinDays {
			return false
		}
	}

	return true
}

// Finalize enriches a group's matched items with a normalized sort instant
// and all-day flag, sorts them per the display config, and truncates to the
// configured maximum.
func Finalize(items []entities.Task, cfg entities.DisplayConfig) []entities.Task {
	out := make([]entities.Task, len(items))
	copy(out, items)

	for i := range out {
		enrich(&out[i])
	}

	switch cfg.SortType {
	case entities.SortDueDateAsc:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].SortDate.Before(out[b].SortDate)
		})
	case entities.SortDueDateDesc:
		sort.SliceStable(out, func(a, b int) bool {
			return out[b].SortDate.Before(out[a].SortDate)
		})
	default:
		// todoist order, also the fallback for unrecognized sort types
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].ChildOrder < out[b].ChildOrder
		})
	}

	if cfg.MaximumEntries > 0 && len(out) > cfg.MaximumEntries {
		out = out[:cfg.MaximumEntries]
	}

	return out
}

// enrich fills the derived sort fields on one matched item. Tasks without
// a due date sort on the sentinel far-future date; the substitution happens
// after matching, so it cannot change classification.
func enrich(item *entities.Task) {
	if !item.HasDue() {
		item.Due = &entities.Due{Date: entities.SentinelDueDate}
		item.AllDay = true
		item.SortDate = entities.SentinelInstant()
		return
	}

	item.AllDay = entities.IsAllDay(item.Due.Date)

	due, err := entities.ParseDueDate(item.Due.Date)
	if err != nil {
		// Malformed dates sort as if the task had no due date.
		item.SortDate = entities.SentinelInstant()
		item.AllDay = true
		return
	}
	item.SortDate = due
}
