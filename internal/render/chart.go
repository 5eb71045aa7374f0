// Package render draws emotion dashboards for terminals and browsers.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"callmood/internal/emotion"
)

const (
	maxSeries = 6
	lineWidth = 2
)

// Page assembles the chart page for one dashboard.
func Page(d emotion.Dashboard, title string) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		emotionLine(d.Bundle, title),
		thirdsBar(d.Bundle),
		categoryPie(d.Bundle),
	)
	return page
}

// HTML writes the chart page for one dashboard.
func HTML(w io.Writer, d emotion.Dashboard, title string) error {
	if err := Page(d, title).Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// topEmotions picks the emotions that lead the most chart points.
func topEmotions(points []emotion.ChartPoint, limit int) []string {
	counts := make(map[string]int)
	for _, p := range points {
		if p.TopEmotion != nil {
			counts[*p.TopEmotion]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func emotionLine(b emotion.Bundle, title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Emotion scores over the call"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 1}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	labels := make([]string, len(b.ChartData))
	for i, p := range b.ChartData {
		labels[i] = strconv.FormatFloat(p.Time, 'f', 1, 64)
	}
	line.SetXAxis(labels)

	for _, name := range topEmotions(b.ChartData, maxSeries) {
		data := make([]opts.LineData, len(b.ChartData))
		for i, p := range b.ChartData {
			if score, ok := p.Emotions[name]; ok {
				data[i] = opts.LineData{Value: score, Name: p.Speaker}
			} else {
				data[i] = opts.LineData{Value: "-"}
			}
		}
		line.AddSeries(name, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ConnectNulls: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}
	return line
}

func thirdsBar(b emotion.Bundle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Start / Middle / End", Subtitle: "Dominant emotion score per third"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Score", Min: 0, Max: 1}),
	)
	bar.SetXAxis([]string{"Start", "Middle", "End"})

	for _, scope := range emotion.Scopes {
		parts := b.EmotionTimeline[scope]
		data := make([]opts.BarData, len(parts))
		for i, part := range parts {
			if part.Emotion == nil || part.Emotion.Score == nil {
				data[i] = opts.BarData{Value: "-"}
				continue
			}
			data[i] = opts.BarData{Value: *part.Emotion.Score, Name: part.Emotion.Name}
		}
		bar.AddSeries(string(scope), data)
	}
	return bar
}

func categoryPie(b emotion.Bundle) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Segments by category"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.PieData, 0, len(emotion.Categories))
	for _, c := range emotion.Categories {
		data = append(data, opts.PieData{Name: string(c), Value: b.CategoryCounts[c]})
	}
	pie.AddSeries("categories", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)
	return pie
}
