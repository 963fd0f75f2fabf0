package usecase

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/repo-insights/internal/domain"
)

// Summarize computes headline statistics for a commit list. Averages are
// rounded to two decimal places.
func Summarize(commits []domain.CommitRecord, loc *time.Location) domain.Summary {
	summary := domain.Summary{TotalCommits: len(commits)}
	if len(commits) == 0 {
		return summary
	}

	names := make(map[string]bool)
	first, last := commits[0].Author.Date, commits[0].Author.Date
	for _, c := range commits {
		names[c.Author.Name] = true
		if c.Author.Date.Before(first) {
			first = c.Author.Date
		}
		if c.Author.Date.After(last) {
			last = c.Author.Date
		}
	}
	summary.Contributors = len(names)
	summary.FirstCommit = first.In(zoneOrLocal(loc))
	summary.LastCommit = last.In(zoneOrLocal(loc))

	daily := DailyCounts(commits, loc)
	summary.ActiveDays = len(daily)
	perDay := make([]int, len(daily))
	for i, d := range daily {
		perDay[i] = d.Count
	}
	dayData := stats.LoadRawData(perDay)
	summary.MeanPerActiveDay = rounded(dayData.Mean())
	summary.MedianPerActiveDay = rounded(dayData.Median())

	lengths := make([]int, len(commits))
	for i, m := range MessageLengths(commits, loc) {
		lengths[i] = m.Length
	}
	lengthData := stats.LoadRawData(lengths)
	summary.MeanMessageLength = rounded(lengthData.Mean())
	summary.MedianMessageLength = rounded(lengthData.Median())
	summary.P90MessageLength = rounded(lengthData.Percentile(90))

	busiest := 0
	for _, h := range HourlyCounts(commits, loc) {
		if h.Count > busiest {
			busiest = h.Count
			summary.BusiestHour = h.Hour
		}
	}
	busiest = 0
	for _, d := range WeekdayCounts(commits, loc) {
		if d.Count > busiest {
			busiest = d.Count
			summary.BusiestWeekday = d.Name
		}
	}
	return summary
}

func rounded(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
