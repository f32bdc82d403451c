// Package chart renders the (n, WC(n)) series, its fitted trend models, and
// optional budget annotations to a PNG file, using gonum.org/v1/plot.
package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/janpfeifer/wcanalysis/internal/trend"
)

// Options configures one rendering of the worst-case growth chart.
type Options struct {
	// Title is the chart title.
	Title string
	// Horizon is the largest n to extend fitted trend lines to. If it is
	// smaller than len(series), the lines extend to len(series) instead.
	Horizon int
	// ReqMaxInputSize, ReqMaxRes optionally draw a budget box: a vertical
	// line at ReqMaxInputSize and a horizontal line at ReqMaxRes. Zero
	// means "not set".
	ReqMaxInputSize int
	ReqMaxRes       float64
}

// Render draws series (observed points), every model in models (extended to
// the larger of Horizon and len(series)), and any budget annotations,
// writing a PNG to path.
func Render(path string, series []trend.Point, models []trend.Model, opts Options) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "input size n"
	p.Y.Label.Text = "WC(n)"

	observed := make(plotter.XYs, len(series))
	for i, pt := range series {
		observed[i].X = float64(pt.N)
		observed[i].Y = pt.Cost
	}
	scatter, err := plotter.NewScatter(observed)
	if err != nil {
		return fmt.Errorf("chart: building observed-series scatter: %w", err)
	}
	p.Add(scatter)
	p.Legend.Add("observed", scatter)

	horizon := opts.Horizon
	if horizon < len(series) {
		horizon = len(series)
	}
	for _, m := range models {
		line := make(plotter.XYs, horizon+1)
		for n := 0; n <= horizon; n++ {
			line[n].X = float64(n)
			line[n].Y = m.Predict(n)
		}
		l, err := plotter.NewLine(line)
		if err != nil {
			return fmt.Errorf("chart: building %s trend line: %w", m.Shape, err)
		}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s (R²=%.3f)", m.Shape, m.RSquared), l)
	}

	if opts.ReqMaxInputSize > 0 {
		addBudgetLine(p, verticalLine(float64(opts.ReqMaxInputSize), budgetYRange(series, models, horizon)))
	}
	if opts.ReqMaxRes > 0 {
		addBudgetLine(p, horizontalLine(opts.ReqMaxRes, float64(horizon)))
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("chart: saving %s: %w", path, err)
	}
	return nil
}

func verticalLine(x, yMax float64) plotter.XYs {
	return plotter.XYs{{X: x, Y: 0}, {X: x, Y: yMax}}
}

func horizontalLine(y, xMax float64) plotter.XYs {
	return plotter.XYs{{X: 0, Y: y}, {X: xMax, Y: y}}
}

func addBudgetLine(p *plot.Plot, pts plotter.XYs) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return
	}
	l.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(l)
}

func budgetYRange(series []trend.Point, models []trend.Model, horizon int) float64 {
	max := 0.0
	for _, pt := range series {
		if pt.Cost > max {
			max = pt.Cost
		}
	}
	for _, m := range models {
		if v := m.Predict(horizon); v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}
	return max
}
