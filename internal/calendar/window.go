package calendar

import "time"

type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

const (
	DirPrev = "prev"
	DirNext = "next"
)

// VisibleDays computes the days a view renders around the current date.
// Weeks start on Monday. Month view returns whole weeks covering the month,
// so it includes the leading and trailing days needed to square the grid.
func VisibleDays(current time.Time, mode ViewMode) []time.Time {
	day := startOfDay(current)

	switch mode {
	case ViewWeek:
		start := weekStart(day)
		days := make([]time.Time, 7)
		for i := range days {
			days[i] = start.AddDate(0, 0, i)
		}
		return days
	case ViewMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		last := first.AddDate(0, 1, -1)
		start := weekStart(first)
		end := weekStart(last).AddDate(0, 0, 6)

		var days []time.Time
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}
		return days
	default:
		return []time.Time{day}
	}
}

// Navigate advances the current date one step in the given direction, where a
// step is a day, week, or month depending on the view mode.
func Navigate(current time.Time, mode ViewMode, direction string) time.Time {
	step := 1
	if direction == DirPrev {
		step = -1
	}

	switch mode {
	case ViewWeek:
		return current.AddDate(0, 0, 7*step)
	case ViewMonth:
		return current.AddDate(0, step, 0)
	default:
		return current.AddDate(0, 0, step)
	}
}
