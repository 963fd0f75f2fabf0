package usecase

import (
	"time"

	"github.com/naka-gawa/repo-insights/internal/domain"
)

// IntensityBand maps a daily commit count to a display band from 0 to 4.
func IntensityBand(commits int) int {
	switch {
	case commits <= 0:
		return 0
	case commits <= 2:
		return 1
	case commits <= 5:
		return 2
	case commits <= 10:
		return 3
	default:
		return 4
	}
}

// ActivityHeatmap lays out daily commit counts from the earliest to the latest
// authored date, padded to whole Sunday-first weeks. Padding days count zero.
func ActivityHeatmap(commits []domain.CommitRecord, loc *time.Location) []domain.HeatmapWeek {
	if len(commits) == 0 {
		return []domain.HeatmapWeek{}
	}
	loc = zoneOrLocal(loc)

	counts := make(map[string]int)
	first := authoredIn(commits[0], loc)
	last := first
	for _, c := range commits {
		t := authoredIn(c, loc)
		counts[t.Format(dateLayout)]++
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}

	start := time.Date(first.Year(), first.Month(), first.Day()-int(first.Weekday()), 0, 0, 0, 0, loc)
	end := time.Date(last.Year(), last.Month(), last.Day()+6-int(last.Weekday()), 0, 0, 0, 0, loc)

	weeks := []domain.HeatmapWeek{}
	for ws := start; !ws.After(end); ws = time.Date(ws.Year(), ws.Month(), ws.Day()+7, 0, 0, 0, 0, loc) {
		var week domain.HeatmapWeek
		for i := range week {
			day := time.Date(ws.Year(), ws.Month(), ws.Day()+i, 0, 0, 0, 0, loc)
			key := day.Format(dateLayout)
			n := counts[key]
			week[i] = domain.HeatmapDay{
				Date:    key,
				Commits: n,
				Weekday: int(day.Weekday()),
				Band:    IntensityBand(n),
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}
