// Package status formats the clock part of the profile: short Uzbek dates,
// 24-hour times and the day-status label derived from weekday and hour.
// Every function here is pure and fails closed to a fixed placeholder.
package status

import (
	"fmt"
	"time"
)

// Placeholders returned when the input time is unusable.
const (
	DatePlaceholder  = "??? ?? ???"
	TimePlaceholder  = "??:??"
	LabelPlaceholder = "?"
)

// Uzbek short weekday names, Monday first.
var weekdaysShort = [7]string{"Du", "Se", "Chor", "Pay", "Jum", "Sha", "Yak"}

// Uzbek short month names, January first.
var monthsShort = [12]string{
	"Yan", "Fev", "Mar", "Apr", "May", "Iyn",
	"Iyul", "Avg", "Sen", "Okt", "Noy", "Dek",
}

// Day-status labels.
const (
	LabelWeekendMorning = "Dam. Tong ☕"
	LabelWeekendActive  = "Dam. Faol 🎉"
	LabelWeekendQuiet   = "Dam. Tinchlik 🌙"
	LabelWorkMorning    = "Ishda 🧑‍💻"
	LabelLunch          = "Tushlik 🍔"
	LabelWorkAfternoon  = "Ishda 📈"
	LabelPersonal       = "Shaxsiy vaqt 🔒"
	LabelNight          = "Tungi 💤"
	LabelEarlyMorning   = "Ertalab ☀️"
)

// mondayIndex maps time.Weekday (Sunday = 0) to a Monday-first index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// ShortDate renders t as "Chor 11 Iyn".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return DatePlaceholder
	}
	return fmt.Sprintf("%s %d %s", weekdaysShort[mondayIndex(t.Weekday())], t.Day(), monthsShort[t.Month()-1])
}

// ShortTime renders t as 24-hour "HH:MM".
func ShortTime(t time.Time) string {
	if t.IsZero() {
		return TimePlaceholder
	}
	return t.Format("15:04")
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// Label returns the status label for the hour of t. The buckets partition
// [0,24) for both weekends and weekdays, so every hour maps to exactly one label.
func Label(t time.Time) string {
	if t.IsZero() {
		return LabelPlaceholder
	}
	return labelFor(IsWeekend(t), t.Hour())
}

func labelFor(weekend bool, hour int) string {
	if weekend {
		switch {
		case hour >= 8 && hour < 12:
			return LabelWeekendMorning
		case hour >= 12 && hour < 20:
			return LabelWeekendActive
		default:
			return LabelWeekendQuiet
		}
	}

	switch {
	case hour >= 8 && hour < 13:
		return LabelWorkMorning
	case hour >= 13 && hour < 14:
		return LabelLunch
	case hour >= 14 && hour < 18:
		return LabelWorkAfternoon
	case hour >= 18 && hour < 22:
		return LabelPersonal
	case hour >= 22 || hour < 6:
		return LabelNight
	default:
		return LabelEarlyMorning
	}
}
