package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/naka-gawa/repo-insights/internal/domain"
	"github.com/naka-gawa/repo-insights/internal/usecase"
	"github.com/olekukonko/tablewriter"
)

const (
	timestampLayout = "2006-01-02 15:04"
	barWidth        = 40
	// heatmapWeeks is how many of the most recent weeks the terminal heatmap shows.
	heatmapWeeks = 53
)

// bandColors colors heatmap cells by usecase.IntensityBand.
var bandColors = [5]*color.Color{
	color.New(color.FgHiBlack),
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.FgYellow),
	color.New(color.FgHiRed),
}

// renderReport writes a report as terminal tables.
func renderReport(w io.Writer, r *domain.Report, loc *time.Location) error {
	title := color.New(color.Bold)
	if r.Repository != nil {
		fmt.Fprintf(w, "%s (%s)\n", title.Sprint(r.Repository.FullName), r.Branch)
		if r.Repository.Description != "" {
			fmt.Fprintln(w, r.Repository.Description)
		}
	}
	for _, notice := range historyNotices(r.History) {
		fmt.Fprintln(w, color.YellowString("%s", notice))
	}

	section(w, "Summary")
	renderSummary(w, r.Summary, loc)

	section(w, "Top contributors")
	table := newTable(w, []string{"#", "Contributor", "Commits"})
	for i, c := range r.Contributors {
		table.Append([]string{strconv.Itoa(i + 1), c.Name, strconv.Itoa(c.Commits)})
	}
	table.Render()

	section(w, "Commits by weekday")
	table = newTable(w, []string{"Day", "Commits", ""})
	maxDay := 0
	for _, d := range r.Weekdays {
		maxDay = max(maxDay, d.Count)
	}
	for _, d := range r.Weekdays {
		table.Append([]string{d.Name, strconv.Itoa(d.Count), bar(d.Count, maxDay, barWidth)})
	}
	table.Render()

	section(w, "Commits by hour")
	table = newTable(w, []string{"Hour", "Commits", ""})
	maxHour := 0
	for _, h := range r.Hourly {
		maxHour = max(maxHour, h.Count)
	}
	for _, h := range r.Hourly {
		table.Append([]string{fmt.Sprintf("%02d:00", h.Hour), strconv.Itoa(h.Count), bar(h.Count, maxHour, barWidth)})
	}
	table.Render()

	if len(r.Monthly) > 0 {
		section(w, fmt.Sprintf("Monthly trend %d-%d", r.YearRange.Start, r.YearRange.End))
		table = newTable(w, []string{"Month", "Commits", ""})
		maxMonth := 0
		for _, m := range r.Monthly {
			maxMonth = max(maxMonth, m.Count)
		}
		for _, m := range r.Monthly {
			table.Append([]string{m.Label, strconv.Itoa(m.Count), bar(m.Count, maxMonth, barWidth)})
		}
		table.Render()
	}

	if len(r.Heatmap) > 0 {
		section(w, "Activity")
		for _, line := range heatmapLines(r.Heatmap, heatmapWeeks) {
			fmt.Fprintln(w, line)
		}
	}

	if len(r.RecentCommits) > 0 {
		section(w, "Recent commits")
		table = newTable(w, []string{"SHA", "Author", "Date", "Message"})
		for _, c := range r.RecentCommits {
			firstLine, _, _ := strings.Cut(c.Message, "\n")
			table.Append([]string{shortSHA(c.SHA), c.Author.Name, c.Author.Date.In(loc).Format(timestampLayout), firstLine})
		}
		table.Render()
	}
	return nil
}

func section(w io.Writer, name string) {
	fmt.Fprintf(w, "\n%s\n", color.CyanString("%s", name))
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func renderSummary(w io.Writer, s domain.Summary, loc *time.Location) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	rows := [][]string{
		{"Commits", strconv.Itoa(s.TotalCommits)},
		{"Contributors", strconv.Itoa(s.Contributors)},
		{"Active days", strconv.Itoa(s.ActiveDays)},
	}
	if s.TotalCommits > 0 {
		rows = append(rows,
			[]string{"First commit", s.FirstCommit.In(loc).Format(timestampLayout)},
			[]string{"Last commit", s.LastCommit.In(loc).Format(timestampLayout)},
			[]string{"Commits per active day", fmt.Sprintf("mean %.2f, median %.2f", s.MeanPerActiveDay, s.MedianPerActiveDay)},
			[]string{"Message length", fmt.Sprintf("mean %.2f, median %.2f, p90 %.2f", s.MeanMessageLength, s.MedianMessageLength, s.P90MessageLength)},
			[]string{"Busiest hour", fmt.Sprintf("%02d:00", s.BusiestHour)},
			[]string{"Busiest weekday", s.BusiestWeekday},
		)
	}
	table.AppendBulk(rows)
	table.Render()
}

// historyNotices explains an incomplete commit list.
func historyNotices(h domain.HistoryInfo) []string {
	var notices []string
	if h.Partial {
		notices = append(notices, fmt.Sprintf("Commit retrieval stopped after %d commits: %s", h.Commits, h.StopReason))
	}
	if h.Truncated {
		if h.TotalOnBranch > 0 {
			notices = append(notices, fmt.Sprintf("Showing the most recent %d of %d commits.", h.Commits, h.TotalOnBranch))
		} else {
			notices = append(notices, fmt.Sprintf("Showing the most recent %d commits; older history was not retrieved.", h.Commits))
		}
	}
	return notices
}

// heatmapLines renders the last maxWeeks weeks as seven rows, Sunday first.
func heatmapLines(weeks []domain.HeatmapWeek, maxWeeks int) []string {
	if len(weeks) > maxWeeks {
		weeks = weeks[len(weeks)-maxWeeks:]
	}
	lines := make([]string, 7)
	for day := range lines {
		var b strings.Builder
		b.WriteString(usecase.WeekdayNames[day][:3])
		for _, week := range weeks {
			cell := week[day]
			glyph := "■"
			if cell.Band == 0 {
				glyph = "·"
			}
			b.WriteString(" ")
			b.WriteString(bandColors[cell.Band].Sprint(glyph))
		}
		lines[day] = b.String()
	}
	return lines
}

// bar scales n against peak to at most width blocks; any non-zero n gets one.
func bar(n, peak, width int) string {
	if n <= 0 || peak <= 0 {
		return ""
	}
	return strings.Repeat("█", max(1, n*width/peak))
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func formatRateLimit(limit *domain.RateLimit, loc *time.Location) string {
	remaining := fmt.Sprintf("%d/%d", limit.Remaining, limit.Limit)
	switch {
	case limit.Remaining == 0:
		remaining = color.RedString("%s", remaining)
	case limit.Remaining*10 < limit.Limit:
		remaining = color.YellowString("%s", remaining)
	default:
		remaining = color.GreenString("%s", remaining)
	}
	return fmt.Sprintf("Core API: %s requests remaining, resets at %s", remaining, limit.Reset.In(loc).Format(timestampLayout))
}
