package i18n

import (
	"time"
)

// Catalog resolves the handful of locale-dependent strings the renderer
// needs: relative-day labels, the empty-view message, and month/weekday
// short names. Unknown languages fall back to English.
type Catalog struct {
	lang string
}

// New creates a catalog for the given language tag.
func New(lang string) *Catalog {
	if _, ok := translations[lang]; !ok {
		lang = "en"
	}
	return &Catalog{lang: lang}
}

// Translate returns the localized string for a key, falling back to
// English, then to the key itself.
func (c *Catalog) Translate(key string) string {
	if s, ok := translations[c.lang][key]; ok {
		return s
	}
	if s, ok := translations["en"][key]; ok {
		return s
	}
	return key
}

// MonthShort returns the abbreviated month name.
func (c *Catalog) MonthShort(m time.Month) string {
	return monthsShort[c.lang][m-1]
}

// WeekdayShort returns the abbreviated weekday name.
func (c *Catalog) WeekdayShort(d time.Weekday) string {
	return weekdaysShort[c.lang][d]
}

var translations = map[string]map[string]string{
	"en": {
		"TODAY":     "Today",
		"TOMORROW":  "Tomorrow",
		"YESTERDAY": "Yesterday",
		"NOTASKS":   "No tasks",
		"LOADING":   "Loading...",
	},
	"de": {
		"TODAY":     "Heute",
		"TOMORROW":  "Morgen",
		"YESTERDAY": "Gestern",
		"NOTASKS":   "Keine Aufgaben",
		"LOADING":   "Lade...",
	},
	"nb": {
		"TODAY":     "I dag",
		"TOMORROW":  "I morgen",
		"YESTERDAY": "I går",
		"NOTASKS":   "Ingen oppgaver",
		"LOADING":   "Laster...",
	},
}

var monthsShort = map[string][12]string{
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"de": {"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"},
	"nb": {"jan", "feb", "mar", "apr", "mai", "jun", "jul", "aug", "sep", "okt", "nov", "des"},
}

// Indexed by time.Weekday, so Sunday first.
var weekdaysShort = map[string][7]string{
	"en": {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	"de": {"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
	"nb": {"søn", "man", "tir", "ons", "tor", "fre", "lør"},
}
