package entities

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SentinelDueDate is the far-future placeholder substituted for tasks with
// no due date so that date-based sort comparisons stay total.
const SentinelDueDate = "2100-12-31"

// A due date string of this length or shorter carries no time of day.
const allDayMaxLen = 10

var nonDigit = regexp.MustCompile(`\D+`)

// ParseDueDate parses a sync-API due date string into an absolute instant.
// The string is split on any non-digit separators into
// [year, month, day, hour, minute, second] with the time components
// defaulting to zero. A trailing "Z" marks the components as UTC; otherwise
// they describe a floating date interpreted in local time. Returns
// ErrMalformedDate when fewer than year/month/day are present.
func ParseDueDate(date string) (time.Time, error) {
	fields := nonDigit.Split(date, -1)
	nums := make([]int, 0, 6)
	for _, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, ErrMalformedDate
		}
		nums = append(nums, n)
	}
	if len(nums) < 3 {
		return time.Time{}, ErrMalformedDate
	}
	for len(nums) < 6 {
		nums = append(nums, 0)
	}

	loc := time.Local
	if strings.HasSuffix(date, "Z") {
		loc = time.UTC
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, loc), nil
}

// IsAllDay reports whether a due date string has no time-of-day component.
func IsAllDay(date string) bool {
	return len(date) <= allDayMaxLen
}

// SentinelInstant returns the sentinel due date as an instant, parsed the
// same way as any other all-day date.
func SentinelInstant() time.Time {
	t, _ := ParseDueDate(SentinelDueDate)
	return t
}

// IsSentinel reports whether the instant falls on the sentinel calendar day.
func IsSentinel(t time.Time) bool {
	d := t.In(time.Local)
	return d.Year() == 2100 && d.Month() == time.December && d.Day() == 31
}

// localMidnight truncates an instant to its local calendar day.
func localMidnight(t time.Time) time.Time {
	d := t.In(time.Local)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

// CalendarDaysBetween returns the whole-day difference between two
// instants' local calendar days, negative when t is before now. Rounding
// absorbs DST transitions between the two midnights.
func CalendarDaysBetween(now, t time.Time) int {
	diff := localMidnight(t).Sub(localMidnight(now))
	return int(math.Round(diff.Hours() / 24))
}

// CalendarMonthsBetween returns the signed month-count difference between
// two instants' local calendar months.
func CalendarMonthsBetween(now, t time.Time) int {
	a := now.In(time.Local)
	b := t.In(time.Local)
	return (b.Year()*12 + int(b.Month())) - (a.Year()*12 + int(a.Month()))
}
