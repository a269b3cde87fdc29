package outwriter

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

const (
	chartPageTitle   = "Status Chart"
	chartWidth       = "100%"
	chartHeight      = "450px"
	emptyChartHeight = "200px"
	lineWidth        = 2
)

// nullValue is the echarts marker for a missing point.
const nullValue = "-"

// countSeries is a count column plotted on the counts chart.
type countSeries struct {
	Name  string
	Key   schema.CountKey
	Color string
}

// metricSeries is a float column plotted on the age chart.
type metricSeries struct {
	Name   string
	Value  func(schema.DailyRow) float64
	Color  string
	Dashed bool
}

func countSeriesFor(labels contract.Labels) []countSeries {
	return []countSeries{
		{Name: labels.FeatureA, Key: schema.FeatureAKey, Color: "#1f77b4"},
		{Name: labels.FeatureB, Key: schema.FeatureBKey, Color: "#2ca02c"},
		{Name: labels.FeatureC, Key: schema.FeatureCKey, Color: "#17becf"},
		{Name: labels.Resolution, Key: schema.ResolutionKey, Color: "#9467bd"},
		{Name: "PRs", Key: schema.PRKey, Color: "#ff7f0e"},
		{Name: "Issues", Key: schema.IssueKey, Color: "#7f7f7f"},
		{Name: "Bugs", Key: schema.BugKey, Color: "#d62728"},
		{Name: "Videos", Key: schema.VideoKey, Color: "#e377c2"},
	}
}

var metricSeriesList = []metricSeries{
	{Name: "Avg Age", Value: func(r schema.DailyRow) float64 { return r.AvgAge }, Color: "#8c564b"},
	{Name: "Avg Wait", Value: func(r schema.DailyRow) float64 { return r.AvgWait }, Color: "#bcbd22"},
	{Name: "Sum Age", Value: func(r schema.DailyRow) float64 { return r.SumAge }, Color: "#8c564b", Dashed: true},
	{Name: "Sum Wait", Value: func(r schema.DailyRow) float64 { return r.SumWait }, Color: "#bcbd22", Dashed: true},
}

// writeChartPage renders every chart of the status page as one HTML document.
func writeChartPage(w io.Writer, result schema.TableResult, labels contract.Labels) error {
	page := components.NewPage()
	page.PageTitle = chartPageTitle
	page.AddCharts(
		buildCountsChart(result.Daily, labels),
		buildAgeChart(result.Daily),
		buildMergedChart(result.Daily),
		buildMonthlyChart(result.Monthly),
	)
	return page.Render(w)
}

func dailyDates(rows []schema.DailyRow) []string {
	dates := make([]string, len(rows))
	for i, r := range rows {
		dates[i] = r.Date
	}
	return dates
}

func newTimeLine(title, subtitle, yAxis string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxis}),
	)
	return line
}

// buildCountsChart plots the open item counts. Filtered points are gaps.
func buildCountsChart(rows []schema.DailyRow, labels contract.Labels) *charts.Line {
	const title = "Open Items"
	if len(rows) == 0 {
		return createEmptyChart(title)
	}

	line := newTimeLine(title, "Open pull requests, issues per bucket and pending videos", "Count")
	line.SetXAxis(dailyDates(rows))
	for _, s := range countSeriesFor(labels) {
		data := make([]opts.LineData, len(rows))
		for i := range rows {
			if v := rows[i].Count(s.Key); v != nil {
				data[i] = opts.LineData{Value: *v}
			} else {
				data[i] = opts.LineData{Value: nullValue}
			}
		}
		line.AddSeries(s.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
		)
	}
	return line
}

// buildAgeChart plots how old open pull requests are and how long they have waited.
func buildAgeChart(rows []schema.DailyRow) *charts.Line {
	const title = "Pull Request Age"
	if len(rows) == 0 {
		return createEmptyChart(title)
	}

	line := newTimeLine(title, "Averages in days, sums in months", "Age")
	line.SetXAxis(dailyDates(rows))
	for _, s := range metricSeriesList {
		data := make([]opts.LineData, len(rows))
		for i, r := range rows {
			data[i] = opts.LineData{Value: s.Value(r)}
		}
		lineStyle := opts.LineStyle{Width: lineWidth}
		if s.Dashed {
			lineStyle.Type = "dashed"
		}
		line.AddSeries(s.Name, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(lineStyle),
		)
	}
	return line
}

// buildMergedChart plots the smoothed merge rate.
func buildMergedChart(rows []schema.DailyRow) *charts.Line {
	const title = "Merged Pull Requests"
	if len(rows) == 0 {
		return createEmptyChart(title)
	}

	line := newTimeLine(title, "Weighted merges over the last 40 days", "Merges per month")
	line.SetXAxis(dailyDates(rows))
	data := make([]opts.LineData, len(rows))
	for i, r := range rows {
		data[i] = opts.LineData{Value: r.Merged}
	}
	line.AddSeries("Merged", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2ca02c"}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	return line
}

// buildMonthlyChart plots merges per complete calendar month.
func buildMonthlyChart(rows []schema.MonthlyRow) *charts.Bar {
	const title = "Monthly Merges"
	bar := charts.NewBar()
	if len(rows) == 0 {
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: emptyChartHeight}),
			charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
		)
		return bar
	}

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "Pull requests merged per calendar month"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Merges"}),
	)

	months := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		months[i] = monthOf(r.Date)
		data[i] = opts.BarData{Value: r.MergeBar}
	}
	bar.SetXAxis(months)
	bar.AddSeries("Merges", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2ca02c"}))
	return bar
}

func createEmptyChart(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: emptyChartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "No data"}),
	)
	return line
}
