// Package trend fits analytic growth models to a (n, WC(n)) series and
// extrapolates a prediction horizon. Models are fit concurrently via
// golang.org/x/sync/errgroup -- legitimate because by the time the Driver
// calls into this package the single-threaded search phases are already
// complete; fitting independent models against the same finished series
// has no shared mutable state.
package trend

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/janpfeifer/wcanalysis/internal/wcerr"
)

// Point is one observed (input size, worst-case cost) pair.
type Point struct {
	N    int     `json:"n"`
	Cost float64 `json:"cost"`
}

// Shape names the functional form a Model fits.
type Shape string

const (
	Linear      Shape = "linear"
	Polynomial2 Shape = "polynomial2"
	Logarithmic Shape = "logarithmic"
	Power       Shape = "power"
	Exponential Shape = "exponential"
	NLogN       Shape = "nlogn"
)

var allShapes = []Shape{Linear, Polynomial2, Logarithmic, Power, Exponential, NLogN}

// Model is a fitted trend line: Predict(n) estimates WC(n) under this
// shape, and RSquared measures goodness of fit on the observed series.
type Model struct {
	Shape    Shape
	alpha    float64
	beta     float64
	RSquared float64
}

// Predict estimates the resource cost at input size n under m's shape.
func (m Model) Predict(n int) float64 {
	x := float64(n)
	switch m.Shape {
	case Linear:
		return m.alpha + m.beta*x
	case Polynomial2:
		return m.alpha + m.beta*x*x
	case Logarithmic:
		if x < 1 {
			x = 1
		}
		return m.alpha + m.beta*math.Log(x)
	case Power:
		if x < 1 {
			x = 1
		}
		return math.Exp(m.alpha) * math.Pow(x, m.beta)
	case Exponential:
		return math.Exp(m.alpha) * math.Exp(m.beta*x)
	case NLogN:
		xlogx := 0.0
		if x >= 1 {
			xlogx = x * math.Log(x)
		}
		return m.alpha + m.beta*xlogx
	default:
		return math.NaN()
	}
}

// FitAll fits every known Shape to series concurrently and returns the
// resulting Models in Shape-declaration order. A Shape whose transform is
// undefined for series (e.g. Power needs strictly positive costs) is
// silently omitted rather than failing the whole fit. An empty series is
// rejected with a wcerr.Host error; the Driver checks for it first and
// only logs a warning.
func FitAll(ctx context.Context, series []Point) ([]Model, error) {
	if len(series) == 0 {
		return nil, wcerr.Errorf(wcerr.Host, "trend.FitAll called with an empty series")
	}

	results := make([]*Model, len(allShapes))
	g, _ := errgroup.WithContext(ctx)
	for i, shape := range allShapes {
		i, shape := i, shape
		g.Go(func() error {
			m, ok := fitShape(shape, series)
			if ok {
				results[i] = &m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var models []Model
	for _, m := range results {
		if m != nil {
			models = append(models, *m)
		}
	}
	return models, nil
}

func fitShape(shape Shape, series []Point) (Model, bool) {
	xs := make([]float64, 0, len(series))
	ys := make([]float64, 0, len(series))
	for _, p := range series {
		x, y, ok := transform(shape, p)
		if !ok {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return Model{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	return Model{Shape: shape, alpha: alpha, beta: beta, RSquared: r2}, true
}

// transform maps a raw (n, cost) point to the (x, y) coordinates whose
// linear regression recovers shape's parameters, per the standard
// log-linearization of power and exponential laws.
func transform(shape Shape, p Point) (x, y float64, ok bool) {
	n, cost := float64(p.N), p.Cost
	switch shape {
	case Linear, Polynomial2:
		x = n
		if shape == Polynomial2 {
			x = n * n
		}
		return x, cost, true
	case Logarithmic:
		if n < 1 {
			return 0, 0, false
		}
		return math.Log(n), cost, true
	case Power:
		if n < 1 || cost <= 0 {
			return 0, 0, false
		}
		return math.Log(n), math.Log(cost), true
	case Exponential:
		if cost <= 0 {
			return 0, 0, false
		}
		return n, math.Log(cost), true
	case NLogN:
		if n < 1 {
			return 0, 0, true // n*log(n) -> 0 in the limit; still a usable point.
		}
		return n * math.Log(n), cost, true
	}
	return 0, 0, false
}

// Best returns the Model with the highest RSquared, or false if models is
// empty.
func Best(models []Model) (Model, bool) {
	if len(models) == 0 {
		return Model{}, false
	}
	best := models[0]
	for _, m := range models[1:] {
		if m.RSquared > best.RSquared {
			best = m
		}
	}
	return best, true
}

// Horizon computes the default prediction horizon, ceil(1.5 * len(series)),
// used when predictionModel.size is left unset in the config.
func Horizon(seriesLen int) int {
	return int(math.Ceil(1.5 * float64(seriesLen)))
}
