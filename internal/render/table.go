package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"callmood/internal/emotion"
)

// Table writes a terminal summary of one dashboard.
func Table(w io.Writer, d emotion.Dashboard) error {
	sections := []string{
		overviewTable(d),
		thirdsTable(d.Bundle),
		emotionsTable(d.Bundle),
	}
	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	return tbl
}

func overviewTable(d emotion.Dashboard) string {
	tbl := newTable("Overview")
	b := d.Bundle
	tbl.AppendRow(table.Row{"Outcome", string(d.Outcome)})
	if d.Message != "" {
		tbl.AppendRow(table.Row{"Message", d.Message})
	}
	tbl.AppendRow(table.Row{"Duration", fmt.Sprintf("%.1fs", b.SpeakerTimeline.Duration)})
	tbl.AppendRow(table.Row{"Segments", len(b.ChartData)})
	tbl.AppendRow(table.Row{"Transcript turns", len(b.TranscriptSegments)})
	for _, c := range emotion.Categories {
		tbl.AppendRow(table.Row{"Segments " + string(c), b.CategoryCounts[c]})
	}
	if o := b.OverallEmotion; o != nil {
		tbl.AppendRow(table.Row{"Overall", fmt.Sprintf("%s (%.0f%%, %s)", o.Label, o.Confidence*100, o.Source)})
		if o.Reasoning != "" {
			tbl.AppendRow(table.Row{"Reasoning", o.Reasoning})
		}
	}
	return tbl.Render()
}

func thirdsTable(b emotion.Bundle) string {
	tbl := newTable("Emotion timeline")
	tbl.AppendHeader(table.Row{"Scope", "Start", "Middle", "End"})
	for _, scope := range emotion.Scopes {
		row := table.Row{string(scope)}
		for _, part := range b.EmotionTimeline[scope] {
			row = append(row, describePart(part))
		}
		tbl.AppendRow(row)
	}
	return tbl.Render()
}

func describePart(part emotion.EmotionTimelinePart) string {
	if !part.HasData || part.Emotion == nil {
		return "-"
	}
	if part.Emotion.Score == nil {
		return part.Emotion.Name
	}
	return fmt.Sprintf("%s %.2f", part.Emotion.Name, *part.Emotion.Score)
}

func emotionsTable(b emotion.Bundle) string {
	tbl := newTable("Emotions")
	tbl.AppendHeader(table.Row{"Category", "Emotion", "Count", "Peak %", "Sources"})
	total := 0
	for _, c := range emotion.Categories {
		for _, stat := range b.CategorizedEmotions[c] {
			tbl.AppendRow(table.Row{string(c), stat.Name, stat.Count, fmt.Sprintf("%.1f", stat.MaxPercentage), strings.Join(stat.Sources, ",")})
			total++
		}
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d emotions", total)})
	return tbl.Render()
}
