package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naka-gawa/repo-insights/internal/domain"
)

const (
	dateLayout        = "2006-01-02"
	monthLabelLayout  = "Jan 2006"
	messageDateLayout = "Jan 2, 2006"

	// TopContributors is the length of the contributor ranking.
	TopContributors = 10

	// MinYear and MaxYear bound the years a trend may cover.
	MinYear = 1970
	MaxYear = 9999
	// MaxTrendYears is the widest span MonthlyTrend enumerates.
	MaxTrendYears = 100
)

// WeekdayNames indexes day names by time.Weekday (Sunday=0).
var WeekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// The projection functions below are pure: they never modify the commit list
// and bucket author timestamps in loc (time.Local when loc is nil).

func zoneOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

func authoredIn(c domain.CommitRecord, loc *time.Location) time.Time {
	return c.Author.Date.In(zoneOrLocal(loc))
}

// DailyCounts counts commits per calendar date, sorted ascending by date.
func DailyCounts(commits []domain.CommitRecord, loc *time.Location) []domain.DailyCount {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[authoredIn(c, loc).Format(dateLayout)]++
	}
	result := make([]domain.DailyCount, 0, len(counts))
	for date, n := range counts {
		result = append(result, domain.DailyCount{Date: date, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// HourlyCounts returns 24 entries, one per hour of the day, zero-filled.
func HourlyCounts(commits []domain.CommitRecord, loc *time.Location) []domain.HourlyCount {
	var counts [24]int
	for _, c := range commits {
		counts[authoredIn(c, loc).Hour()]++
	}
	result := make([]domain.HourlyCount, 24)
	for hour, n := range counts {
		result[hour] = domain.HourlyCount{Hour: hour, Count: n}
	}
	return result
}

// WeekdayCounts returns 7 entries from Sunday to Saturday, zero-filled.
func WeekdayCounts(commits []domain.CommitRecord, loc *time.Location) []domain.WeekdayCount {
	var counts [7]int
	for _, c := range commits {
		counts[authoredIn(c, loc).Weekday()]++
	}
	result := make([]domain.WeekdayCount, 7)
	for day, n := range counts {
		result[day] = domain.WeekdayCount{Weekday: day, Name: WeekdayNames[day], Count: n}
	}
	return result
}

// AvailableYears returns the distinct authored years in ascending order.
func AvailableYears(commits []domain.CommitRecord, loc *time.Location) []int {
	seen := make(map[int]bool)
	years := []int{}
	for _, c := range commits {
		y := authoredIn(c, loc).Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// DefaultYearRange spans the earliest to the latest authored year.
// ok is false when commits is empty.
func DefaultYearRange(commits []domain.CommitRecord, loc *time.Location) (r domain.YearRange, ok bool) {
	years := AvailableYears(commits, loc)
	if len(years) == 0 {
		return domain.YearRange{}, false
	}
	return domain.YearRange{Start: years[0], End: years[len(years)-1]}, true
}

// ValidateYearRange reports whether r can bound a monthly trend: both years
// within MinYear..MaxYear, Start not after End and at most MaxTrendYears wide.
func ValidateYearRange(r domain.YearRange) error {
	switch {
	case r.Start < MinYear || r.End > MaxYear:
		return fmt.Errorf("%w: years must be between %d and %d", ErrInvalidYearRange, MinYear, MaxYear)
	case r.Start > r.End:
		return fmt.Errorf("%w: start year %d is after end year %d", ErrInvalidYearRange, r.Start, r.End)
	case r.End-r.Start >= MaxTrendYears:
		return fmt.Errorf("%w: at most %d years can be shown", ErrInvalidYearRange, MaxTrendYears)
	}
	return nil
}

// MonthlyTrend counts commits for every month from January of r.Start to
// December of r.End inclusive, including months without commits. Commits
// outside the range are ignored. A range rejected by ValidateYearRange yields
// no months.
func MonthlyTrend(commits []domain.CommitRecord, r domain.YearRange, loc *time.Location) []domain.MonthlyCount {
	if ValidateYearRange(r) != nil {
		return []domain.MonthlyCount{}
	}
	result := make([]domain.MonthlyCount, 0, (r.End-r.Start+1)*12)
	for y := r.Start; y <= r.End; y++ {
		for m := time.January; m <= time.December; m++ {
			result = append(result, domain.MonthlyCount{
				Label: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format(monthLabelLayout),
				Year:  y,
				Month: int(m),
			})
		}
	}
	for _, c := range commits {
		t := authoredIn(c, loc)
		if t.Year() < r.Start || t.Year() > r.End {
			continue
		}
		result[(t.Year()-r.Start)*12+int(t.Month())-1].Count++
	}
	return result
}

// RankContributors groups commits by author display name, keeps the first
// non-empty avatar seen for each name, and returns at most limit entries
// ordered by commit count. Ties keep first-encountered order. Distinct accounts
// sharing a display name are counted as one contributor.
func RankContributors(commits []domain.CommitRecord, limit int) []domain.Contributor {
	byName := make(map[string]int)
	ranking := []domain.Contributor{}
	for _, c := range commits {
		idx, ok := byName[c.Author.Name]
		if !ok {
			idx = len(ranking)
			byName[c.Author.Name] = idx
			ranking = append(ranking, domain.Contributor{Name: c.Author.Name})
		}
		ranking[idx].Commits++
		if ranking[idx].AvatarURL == "" {
			ranking[idx].AvatarURL = c.AvatarURL()
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Commits > ranking[j].Commits
	})
	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// MessageLengths describes each commit message in list order. Length counts
// Unicode code points of the whole message; FirstLine is the text before the
// first line break.
func MessageLengths(commits []domain.CommitRecord, loc *time.Location) []domain.MessageLength {
	result := make([]domain.MessageLength, len(commits))
	for i, c := range commits {
		firstLine, _, _ := strings.Cut(c.Message, "\n")
		result[i] = domain.MessageLength{
			Index:     i,
			Length:    utf8.RuneCountInString(c.Message),
			FirstLine: firstLine,
			Date:      authoredIn(c, loc).Format(messageDateLayout),
		}
	}
	return result
}
