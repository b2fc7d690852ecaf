package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
)

var statusIcons = map[entities.StatusKind]string{
	entities.StatusServiceSuspended:        "⛔",
	entities.StatusDelayed:                 "⏱️",
	entities.StatusServiceCancelled:        "❌",
	entities.StatusThroughServiceSuspended: "🔀",
	entities.StatusInformational:           "ℹ️",
	entities.StatusNormal:                  "🟢",
	entities.StatusFetchFailed:             "⚠️",
}

// FormatLineStatus formats report entries for display in chat
func FormatLineStatus(title string, entries []entities.LineStatus, lastUpdate time.Time) string {
	if len(entries) == 0 {
		return "No line status available yet."
	}

	var result strings.Builder
	result.WriteString(title + "\n\n")
	for _, e := range entries {
		result.WriteString(fmt.Sprintf("%s %s【%s】\n%s\n\n", statusIcons[e.StatusKind], e.LineName, e.StatusKind.Label(), e.InfoText))
	}
	result.WriteString(formatLastUpdate(lastUpdate))
	return result.String()
}

// FormatDepartures formats the bus schedule for display in chat
func FormatDepartures(records []entities.DepartureRecord, lastUpdate time.Time) string {
	if len(records) == 0 {
		return "No bus schedule available yet."
	}
	if len(records) == 1 && records[0] == entities.NoServiceRecord {
		return "🚌 本日の運転は終了しました。\n\n" + formatLastUpdate(lastUpdate)
	}

	var result strings.Builder
	result.WriteString("🚌 Departures:\n\n")
	for _, r := range records {
		line := fmt.Sprintf("• %s", r.LeaveTime)
		if r.DelayMinutes != "0" && r.DelayMinutes != "" {
			line += fmt.Sprintf(" (遅れ%s分)", r.DelayMinutes)
		}
		if r.MinutesUntilArrival != "0" && r.MinutesUntilArrival != "" {
			line += fmt.Sprintf(" %s分後に到着", r.MinutesUntilArrival)
		}
		result.WriteString(line + "\n")
	}
	result.WriteString("\n" + formatLastUpdate(lastUpdate))
	return result.String()
}

func formatLastUpdate(t time.Time) string {
	if t.IsZero() {
		return "🕒 Last update: unknown"
	}
	return fmt.Sprintf("🕒 Last update: %s", t.Format("2006-01-02 15:04:05"))
}
