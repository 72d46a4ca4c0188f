package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// buildExportReport renders a plain-text summary of a finished game:
// final standings, awards and a per-round digest. Called under the room
// lock; does no I/O.
func buildExportReport(code string, endedAt time.Time, standings []LeaderboardEntry, awards Awards, rounds []*Round) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Room %s finished at %s\n", code, endedAt.Format(time.RFC3339))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	sb.WriteString("Final standings:\n")
	for _, e := range standings {
		fmt.Fprintf(&sb, "  %2d. %-20s %6d pts\n", e.Rank, e.Name, e.Score)
	}

	sb.WriteString("\nAwards:\n")
	fmt.Fprintf(&sb, "  champion:      %s\n", awards.ChampionID)
	if awards.BestActorID != "" {
		fmt.Fprintf(&sb, "  best actor:    %s\n", awards.BestActorID)
	}
	if awards.MostCreativeID != "" {
		fmt.Fprintf(&sb, "  most creative: %s\n", awards.MostCreativeID)
	}

	for _, round := range rounds {
		fmt.Fprintf(&sb, "\nRound %d (%d submissions):\n", round.Number, len(round.Submissions))
		for _, sub := range round.Submissions {
			fmt.Fprintf(&sb, "  %q: %d votes, %d pts\n", sub.Caption, len(sub.Votes), sub.Score)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// appendExport appends a report to the configured results file, creating
// directories as needed.
func appendExport(filename, report string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(report); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
