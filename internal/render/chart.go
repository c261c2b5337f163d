package render

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experiment"
)

// Series is one learning curve: the total reward of each sampled episode.
type Series struct {
	Name     string
	Episodes []int
	Rewards  []float64
}

// SeriesFromReports builds a Series from sampled training episodes.
func SeriesFromReports(name string, reports []experiment.EpisodeReport) Series {
	s := Series{
		Name:     name,
		Episodes: make([]int, 0, len(reports)),
		Rewards:  make([]float64, 0, len(reports)),
	}
	for _, r := range reports {
		s.Episodes = append(s.Episodes, r.Episode)
		s.Rewards = append(s.Rewards, r.TotalReward)
	}
	return s
}

// Smooth returns the trailing moving average of values over window points.
// A window below 2 returns a copy of values.
func Smooth(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 2 {
		copy(out, values)
		return out
	}
	for i := range values {
		lo := max(0, i-window+1)
		out[i] = stat.Mean(values[lo:i+1], nil)
	}
	return out
}

// ChartOptions configures LearningCurve.
type ChartOptions struct {
	Title    string
	Subtitle string
	// Window smooths every series with a moving average; < 2 disables it
	Window int
	// MaxPoints thins long series after smoothing; 0 keeps every point
	MaxPoints int
}

// LearningCurve writes an HTML page plotting reward against episode for
// every series. The x axis is taken from the first series.
func LearningCurve(w io.Writer, o ChartOptions, series ...Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    o.Title,
			Subtitle: o.Subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "total reward"}),
	)

	var xs []string
	if len(series) > 0 {
		for _, ep := range thin(series[0].Episodes, o.MaxPoints) {
			xs = append(xs, strconv.Itoa(ep))
		}
	}
	line.SetXAxis(xs)

	for i, s := range series {
		rewards := thin(Smooth(s.Rewards, o.Window), o.MaxPoints)
		items := make([]opts.LineData, 0, len(rewards))
		for _, r := range rewards {
			items = append(items, opts.LineData{Value: r})
		}
		colour := common.Hex(common.SeriesColor(i))
		line.AddSeries(s.Name, items,
			charts.WithLineStyleOpts(opts.LineStyle{Color: colour}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colour}),
		)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// thin keeps every k-th value so that about n remain, always including the
// last one.
func thin[T any](values []T, n int) []T {
	if n <= 0 {
		return values
	}
	every := common.SampleEvery(len(values), n)
	if every == 1 {
		return values
	}
	out := make([]T, 0, n+1)
	for i := 0; i < len(values); i += every {
		out = append(out, values[i])
	}
	if (len(values)-1)%every != 0 {
		out = append(out, values[len(values)-1])
	}
	return out
}
