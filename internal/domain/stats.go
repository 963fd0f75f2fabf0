package domain

import "time"

// DailyCount is the number of commits authored on one calendar date (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourlyCount is the number of commits authored in one hour of the day (0-23).
type HourlyCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// WeekdayCount is the number of commits authored on one day of the week (Sunday=0).
type WeekdayCount struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

// MonthlyCount is the number of commits authored in one calendar month.
type MonthlyCount struct {
	Label string `json:"label"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Count int    `json:"count"`
}

// YearRange is an inclusive span of calendar years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contributor is one entry of the contributor ranking, keyed by author display name.
type Contributor struct {
	Name      string `json:"name"`
	Commits   int    `json:"commits"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// MessageLength describes the message of the commit at Index in the raw list.
type MessageLength struct {
	Index     int    `json:"index"`
	Length    int    `json:"length"`
	FirstLine string `json:"first_line"`
	Date      string `json:"date"`
}

// HeatmapDay is one cell of the activity heatmap.
type HeatmapDay struct {
	Date    string `json:"date"`
	Commits int    `json:"commits"`
	Weekday int    `json:"weekday"`
	Band    int    `json:"band"`
}

// HeatmapWeek is a Sunday-first week of heatmap cells.
type HeatmapWeek [7]HeatmapDay

// Summary holds headline statistics over a commit list.
type Summary struct {
	TotalCommits        int       `json:"total_commits"`
	Contributors        int       `json:"contributors"`
	ActiveDays          int       `json:"active_days"`
	FirstCommit         time.Time `json:"first_commit"`
	LastCommit          time.Time `json:"last_commit"`
	MeanPerActiveDay    float64   `json:"mean_per_active_day"`
	MedianPerActiveDay  float64   `json:"median_per_active_day"`
	MeanMessageLength   float64   `json:"mean_message_length"`
	MedianMessageLength float64   `json:"median_message_length"`
	P90MessageLength    float64   `json:"p90_message_length"`
	BusiestHour         int       `json:"busiest_hour"`
	BusiestWeekday      string    `json:"busiest_weekday"`
}

// Report bundles the repository, the retrieved history and every projection of it.
type Report struct {
	Repository     *RepositoryMetadata `json:"repository"`
	Branch         string              `json:"branch"`
	Branches       []BranchSummary     `json:"branches"`
	History        HistoryInfo         `json:"history"`
	Summary        Summary             `json:"summary"`
	Daily          []DailyCount        `json:"daily"`
	Hourly         []HourlyCount       `json:"hourly"`
	Weekdays       []WeekdayCount      `json:"weekdays"`
	AvailableYears []int               `json:"available_years"`
	YearRange      YearRange           `json:"year_range"`
	Monthly        []MonthlyCount      `json:"monthly"`
	Contributors   []Contributor       `json:"contributors"`
	MessageLengths []MessageLength     `json:"message_lengths"`
	Heatmap        []HeatmapWeek       `json:"heatmap"`
	RecentCommits  []CommitRecord      `json:"recent_commits"`
}

// HistoryInfo describes how the commit list in a Report was obtained.
type HistoryInfo struct {
	Commits       int    `json:"commits"`
	PagesFetched  int    `json:"pages_fetched"`
	Partial       bool   `json:"partial"`
	StopReason    string `json:"stop_reason,omitempty"`
	Truncated     bool   `json:"truncated"`
	TotalOnBranch int    `json:"total_on_branch,omitempty"`
}
