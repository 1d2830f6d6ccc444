package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"xai-assistant/internal/storage"
)

// DailyStats holds per-day widget activity.
type DailyStats struct {
	Date           string         `json:"date"`
	From           time.Time      `json:"from"`
	To             time.Time      `json:"to"`
	TotalMessages  int            `json:"total_messages"`
	UniqueSessions int            `json:"unique_sessions"`
	ByChannel      map[string]int `json:"by_channel"`
	RuleHits       map[string]int `json:"rule_hits"`
	Fallbacks      int            `json:"fallbacks"`
	RemoteReplies  int            `json:"remote_replies"`
	LocalReplies   int            `json:"local_replies"`
}

// AnalyzeDailyLogs aggregates the events that fall on targetDate's calendar
// day in targetDate's location.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	stats := AnalyzeWindow(events, startOfDay, startOfDay.AddDate(0, 0, 1))
	stats.Date = startOfDay.Format("2006-01-02")
	return stats
}

// AnalyzeLast24h aggregates the 24 hours before now. Consecutive runs at
// the same time of day cover every event exactly once.
func AnalyzeLast24h(events []storage.Event, now time.Time) *DailyStats {
	return AnalyzeWindow(events, now.Add(-24*time.Hour), now)
}

// AnalyzeWindow aggregates the events in [from, to). Date is the day of to.
func AnalyzeWindow(events []storage.Event, from, to time.Time) *DailyStats {
	stats := &DailyStats{
		Date:      to.Format("2006-01-02"),
		From:      from,
		To:        to,
		ByChannel: make(map[string]int),
		RuleHits:  make(map[string]int),
	}
	sessions := make(map[string]struct{})

	for _, ev := range events {
		if ev.Timestamp.Before(from) || !ev.Timestamp.Before(to) {
			continue
		}
		if ev.UserMessage == "" {
			continue
		}
		stats.TotalMessages++
		sessions[ev.SessionID] = struct{}{}

		channel := ev.Channel
		if channel == "" {
			channel = "unknown"
		}
		stats.ByChannel[channel]++

		if ev.Source == "remote" {
			stats.RemoteReplies++
			continue
		}
		stats.LocalReplies++
		if ev.Rule == "" || ev.Rule == "menu" {
			stats.Fallbacks++
			continue
		}
		stats.RuleHits[ev.Rule]++
	}

	stats.UniqueSessions = len(sessions)
	return stats
}

type count struct {
	name string
	n    int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].name < out[j].name
	})
	return out
}

// GenerateReportSummary renders a plain-text report for admins.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Xai-industries assistant report for %s\n", ds.Date)
	if !ds.From.IsZero() {
		fmt.Fprintf(&b, "Period: %s to %s\n", ds.From.Format("2006-01-02 15:04 MST"), ds.To.Format("2006-01-02 15:04 MST"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Messages: %d\n", ds.TotalMessages)
	fmt.Fprintf(&b, "Sessions: %d\n", ds.UniqueSessions)
	fmt.Fprintf(&b, "Replies: %d local, %d remote\n", ds.LocalReplies, ds.RemoteReplies)
	fmt.Fprintf(&b, "Unmatched (menu shown): %d\n", ds.Fallbacks)

	if len(ds.ByChannel) > 0 {
		b.WriteString("\nBy channel:\n")
		for _, c := range sortedCounts(ds.ByChannel) {
			fmt.Fprintf(&b, "- %s: %d\n", c.name, c.n)
		}
	}
	if len(ds.RuleHits) > 0 {
		b.WriteString("\nTopics:\n")
		for _, c := range sortedCounts(ds.RuleHits) {
			fmt.Fprintf(&b, "- %s: %d\n", c.name, c.n)
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
