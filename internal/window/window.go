// Package window computes, for each prediction type, whether the submission
// window is currently open, the effective deadline, and a human-readable
// status message. Evaluate is a pure, total function of (type, now).
package window

import (
	"fmt"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/models"
)

// Status is the ephemeral result of a window evaluation. It is recomputed on
// every tick and never persisted.
type Status struct {
	IsOpen   bool      `json:"isOpen"`
	Message  string    `json:"message"`
	Deadline time.Time `json:"deadline"`
}

// Hourly submissions are accepted from the top of the hour until this many
// minutes past it.
const hourlyOpenMinutes = 5

// Daily submissions close at this local hour; the daily deadline is at
// dailyDeadlineHour the same day. Weekly and Monthly deadlines use
// dailyDeadlineHour as well.
const (
	dailyCutoffHour   = 10
	dailyDeadlineHour = 22
)

// Evaluate returns the window status for the given prediction type at the
// given instant, in that instant's location. It never fails: an unknown type
// yields a closed window with a zero deadline.
func Evaluate(t models.PredictionType, now time.Time) Status {
	switch t {
	case models.TypeHourly:
		return evaluateHourly(now)
	case models.TypeDaily:
		return evaluateDaily(now)
	case models.TypeWeekly:
		return Status{
			IsOpen:   true,
			Message:  forDateMessage(nextFridayDeadline(now)),
			Deadline: nextFridayDeadline(now),
		}
	case models.TypeMonthly:
		return Status{
			IsOpen:   true,
			Message:  forDateMessage(endOfMonthDeadline(now)),
			Deadline: endOfMonthDeadline(now),
		}
	case models.TypeQuarterly:
		deadline := now.AddDate(0, 3, 0)
		return Status{IsOpen: true, Message: forDateMessage(deadline), Deadline: deadline}
	case models.TypeYearly:
		deadline := now.AddDate(1, 0, 0)
		return Status{IsOpen: true, Message: forDateMessage(deadline), Deadline: deadline}
	}
	return Status{IsOpen: false, Message: "unsupported prediction type"}
}

// evaluateHourly opens the window for the first hourlyOpenMinutes of every
// hour. The deadline is always the top of the next hour.
func evaluateHourly(now time.Time) Status {
	topOfHour := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	closeAt := topOfHour.Add(hourlyOpenMinutes * time.Minute)
	nextOpen := topOfHour.Add(time.Hour)

	if now.Before(closeAt) {
		return Status{
			IsOpen:   true,
			Message:  "Closes in " + countdown(closeAt.Sub(now)),
			Deadline: nextOpen,
		}
	}
	return Status{
		IsOpen:   false,
		Message:  "Opens in " + countdown(nextOpen.Sub(now)),
		Deadline: nextOpen,
	}
}

// evaluateDaily opens the window from midnight until dailyCutoffHour local
// time. The deadline is dailyDeadlineHour the same calendar day whether or
// not the window is open.
func evaluateDaily(now time.Time) Status {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), dailyCutoffHour, 0, 0, 0, now.Location())
	deadline := time.Date(now.Year(), now.Month(), now.Day(), dailyDeadlineHour, 0, 0, 0, now.Location())

	if now.Before(cutoff) {
		return Status{
			IsOpen:   true,
			Message:  fmt.Sprintf("Open until %d:00 AM", dailyCutoffHour),
			Deadline: deadline,
		}
	}
	return Status{
		IsOpen:   false,
		Message:  "Closed for today, submissions reopen tomorrow",
		Deadline: deadline,
	}
}

// nextFridayDeadline returns the upcoming Friday at dailyDeadlineHour,
// rolled forward a week whenever the computed instant is not after now.
func nextFridayDeadline(now time.Time) time.Time {
	daysUntil := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+daysUntil,
		dailyDeadlineHour, 0, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// endOfMonthDeadline returns the last calendar day of the current month at
// dailyDeadlineHour, rolling to next month's last day when already past.
func endOfMonthDeadline(now time.Time) time.Time {
	candidate := lastDayOfMonth(now.Year(), now.Month(), now.Location())
	if !candidate.After(now) {
		next := now.AddDate(0, 0, 1)
		for next.Month() == now.Month() {
			next = next.AddDate(0, 0, 1)
		}
		candidate = lastDayOfMonth(next.Year(), next.Month(), now.Location())
	}
	return candidate
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	last := firstOfNext.AddDate(0, 0, -1)
	return time.Date(last.Year(), last.Month(), last.Day(), dailyDeadlineHour, 0, 0, 0, loc)
}

// countdown renders a duration as "Mm Ss", rounded down to whole seconds.
func countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

func forDateMessage(deadline time.Time) string {
	return "For " + deadline.Format("Monday, Jan 2")
}
