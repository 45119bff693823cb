package services

import (
	"fmt"
	"time"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/ports"
)

// DueLabelService derives the short human-relative due label shown next to
// each item, and its semantic category for styling.
type DueLabelService struct {
	translator ports.Translator
	timeFormat int
}

// NewDueLabelService creates a new due label service. timeFormat is 12 or 24.
func NewDueLabelService(translator ports.Translator, timeFormat int) *DueLabelService {
	return &DueLabelService{
		translator: translator,
		timeFormat: timeFormat,
	}
}

// Label computes the relative label for a normalized due instant. The
// ladder is evaluated in order and the first match wins; non-all-day items
// get a time-of-day suffix appended to any non-empty text.
func (s *DueLabelService) Label(due time.Time, allDay bool, now time.Time) entities.DueLabel {
	diffDays := entities.CalendarDaysBetween(now, due)
	diffMonths := entities.CalendarMonthsBetween(now, due)
	local := due.In(time.Local)

	var label entities.DueLabel
	switch {
	case diffDays < -1:
		label = entities.DueLabel{Text: s.monthDay(local), Category: entities.DueOverdueOld}
	case diffDays == -1:
		label = entities.DueLabel{Text: s.translator.Translate("YESTERDAY"), Category: entities.DueOverdue}
	case diffDays == 0:
		category := entities.DueOverdue
		if allDay || !due.Before(now) {
			category = entities.DueToday
		}
		label = entities.DueLabel{Text: s.translator.Translate("TODAY"), Category: category}
	case diffDays == 1:
		label = entities.DueLabel{Text: s.translator.Translate("TOMORROW"), Category: entities.DueTomorrow}
	case diffDays < 7:
		label = entities.DueLabel{Text: s.translator.WeekdayShort(local.Weekday()), Category: entities.DueThisWeek}
	case diffMonths < 7 || local.Year() == now.In(time.Local).Year():
		label = entities.DueLabel{Text: s.monthDay(local), Category: entities.DueThisYear}
	case entities.IsSentinel(due):
		label = entities.DueLabel{Text: "", Category: entities.DueNone}
	default:
		label = entities.DueLabel{
			Text:     fmt.Sprintf("%s %d", s.monthDay(local), local.Year()),
			Category: entities.DueFarFuture,
		}
	}

	if label.Text != "" && !allDay {
		label.Text += s.formatTime(local)
	}

	return label
}

func (s *DueLabelService) monthDay(t time.Time) string {
	return fmt.Sprintf("%s %d", s.translator.MonthShort(t.Month()), t.Day())
}

// formatTime renders the time-of-day suffix, leading space included.
func (s *DueLabelService) formatTime(t time.Time) string {
	h := t.Hour()
	m := t.Minute()
	if s.timeFormat == 12 {
		h12 := h % 12
		if h12 == 0 {
			h12 = 12
		}
		suffix := " PM"
		if h < 12 {
			suffix = " AM"
		}
		return fmt.Sprintf(" %d:%02d%s", h12, m, suffix)
	}
	return fmt.Sprintf(" %d:%02d", h, m)
}
