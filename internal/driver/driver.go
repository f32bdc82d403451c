// Package driver implements the Driver / Curve Fit component (C6): it
// orchestrates phase 1 once, phase 2 per input size, and hands the
// resulting (n, WC(n)) series to the trend-fit/chart collaborators.
// Grounded on cmd/trainer's generate-then-consume phase orchestration and
// its flag/klog wiring style.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/janpfeifer/wcanalysis/internal/chart"
	"github.com/janpfeifer/wcanalysis/internal/config"
	"github.com/janpfeifer/wcanalysis/internal/heuristic"
	"github.com/janpfeifer/wcanalysis/internal/host"
	"github.com/janpfeifer/wcanalysis/internal/policy"
	"github.com/janpfeifer/wcanalysis/internal/policygen"
	"github.com/janpfeifer/wcanalysis/internal/report"
	"github.com/janpfeifer/wcanalysis/internal/trend"
	"github.com/janpfeifer/wcanalysis/internal/wcerr"
)

// HostFactory builds a fresh host.Host to explore the program under test at
// the given input size. A new Host is requested per phase (and per n during
// phase 2) so every exploration starts with clean state: the Driver never
// reuses a Host across explorations.
type HostFactory func(n int) host.Host

// Driver runs the full two-phase analysis: an exhaustive phase 1 at a
// single input size compiles a PolicyTrie, then phase 2 sweeps the
// requested input-size range guided by it.
type Driver struct {
	cfg     config.Config
	newHost HostFactory
}

// New returns a Driver for cfg, using newHost to build a Host per
// exploration.
func New(cfg config.Config, newHost HostFactory) *Driver {
	return &Driver{cfg: cfg, newHost: newHost}
}

func (d *Driver) policyPath() string {
	return filepath.Join(d.cfg.OutputDir, "serialized", "policy.bin")
}

func (d *Driver) chartPath() string {
	return filepath.Join(d.cfg.OutputDir, "chart.png")
}

func (d *Driver) summaryPath() string {
	return filepath.Join(d.cfg.OutputDir, "summary.json")
}

// Run executes phase 1 (unless reused), phase 2 across [0, InputMax], and
// emits the chart (and, if verbose, a report and machine-readable summary)
// to cfg.OutputDir.
func (d *Driver) Run(ctx context.Context) error {
	trie, reused, err := d.phase1(ctx)
	if err != nil {
		return err
	}
	if d.cfg.Verbose {
		choices := trie.Choices()
		fmt.Println(report.PolicySummary(d.cfg.PolicyInputSize, trie.CountForChoice, trie.ChoiceFrequencies(), choices))
	}

	series, err := d.phase2(ctx, trie)
	if err != nil {
		return err
	}
	return d.emit(series, reused)
}

// Analyze runs phase 1 (unless reused) and phase 2, returning the raw
// (n, WC(n)) series without rendering a chart or writing any files. Exposed
// separately from Run so callers (and tests) can inspect the series
// directly.
func (d *Driver) Analyze(ctx context.Context) (series []trend.Point, reusedPolicy bool, err error) {
	trie, reused, err := d.phase1(ctx)
	if err != nil {
		return nil, false, err
	}

	series, err = d.phase2(ctx, trie)
	if err != nil {
		return nil, false, err
	}
	return series, reused, nil
}

// phase1 returns the policy trie for this run: loaded from disk if
// cfg.ReusePolicy is set and a policy file already exists, otherwise
// produced by a fresh exhaustive exploration at
// N0 and persisted.
func (d *Driver) phase1(ctx context.Context) (*policy.PolicyTrie, bool, error) {
	path := d.policyPath()
	if d.cfg.ReusePolicy {
		if _, statErr := os.Stat(path); statErr == nil {
			trie, loadErr := loadPolicy(path)
			if loadErr != nil {
				return nil, false, loadErr
			}
			klog.Infof("driver: reusing existing policy at %s (magic=%s version=%d terminals=%d), skipping phase 1",
				path, policy.FileMagic, policy.FileVersion, trie.NumTerminals())
			return trie, true, nil
		}
	}

	klog.Infof("driver: phase 1, exhaustive exploration at N0=%d", d.cfg.PolicyInputSize)
	h := d.newHost(d.cfg.PolicyInputSize)

	var trie *policy.PolicyTrie
	var hostErr error
	panicErr := exceptions.TryCatch[error](func() {
		trie, hostErr = policygen.Run(ctx, h)
	})
	if panicErr != nil {
		return nil, false, wcerr.New(wcerr.Host, panicErr)
	}
	if hostErr != nil {
		return nil, false, wcerr.New(wcerr.Host, hostErr)
	}

	if err := savePolicy(path, trie); err != nil {
		return nil, false, err
	}
	return trie, false, nil
}

// phase2 sweeps n from 0 to cfg.InputMax, running a fresh HeuristicSearch
// per n. A failure at any single n aborts the whole pipeline: partial
// series are never emitted.
func (d *Driver) phase2(ctx context.Context, trie *policy.PolicyTrie) ([]trend.Point, error) {
	klog.Infof("driver: phase 2, sweeping n=0..%d", d.cfg.InputMax)

	fallback := heuristic.ExploreAll
	if d.cfg.HeuristicNoSolver {
		fallback = heuristic.FirstChoice
	}

	series := make([]trend.Point, 0, d.cfg.InputMax+1)
	for n := 0; n <= d.cfg.InputMax; n++ {
		if err := ctx.Err(); err != nil {
			return nil, wcerr.New(wcerr.Host, err)
		}

		h := d.newHost(n)
		var cost float64
		var runErr error
		panicErr := exceptions.TryCatch[error](func() {
			cost, _, runErr = heuristic.Run(ctx, h, trie, func(s *heuristic.Search) *heuristic.Search {
				return s.WithFallback(fallback)
			})
		})
		if panicErr != nil {
			return nil, wcerr.New(wcerr.Host, errors.Wrapf(panicErr, "phase 2, n=%d", n))
		}
		if runErr != nil {
			return nil, wcerr.New(wcerr.Host, errors.Wrapf(runErr, "phase 2, n=%d", n))
		}
		series = append(series, trend.Point{N: n, Cost: cost})
		klog.V(1).Infof("driver: WC(%d) = %g", n, cost)
	}
	return series, nil
}

// emit fits trend models (unless the series is empty, which only logs a
// warning), renders the chart, and -- in verbose mode -- prints a
// report and writes a machine-readable summary.
func (d *Driver) emit(series []trend.Point, reusedPolicy bool) error {
	var models []trend.Model
	if len(series) == 0 {
		klog.Warningf("driver: phase 2 produced an empty series; fitting skipped, chart will only show budget annotations")
	} else {
		fitted, err := trend.FitAll(context.Background(), series)
		if err != nil {
			return wcerr.New(wcerr.Host, err)
		}
		models = fitted
	}

	horizon := d.cfg.PredictionModelSize
	if horizon == 0 {
		horizon = trend.Horizon(len(series))
	}

	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}
	if err := chart.Render(d.chartPath(), series, models, chart.Options{
		Title:           fmt.Sprintf("Worst-case growth (N0=%d)", d.cfg.PolicyInputSize),
		Horizon:         horizon,
		ReqMaxInputSize: d.cfg.ReqMaxInputSize,
		ReqMaxRes:       d.cfg.ReqMaxRes,
	}); err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}

	if !d.cfg.Verbose {
		return nil
	}

	fmt.Println(report.Series(series, models))
	summary := report.NewSummary(d.cfg.PolicyInputSize, d.cfg.InputMax, reusedPolicy, horizon, series, models)
	if err := summary.WriteJSON(d.summaryPath()); err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}
	return nil
}

func savePolicy(path string, trie *policy.PolicyTrie) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}
	defer f.Close()
	if err := trie.Serialize(f); err != nil {
		return wcerr.New(wcerr.PolicyIO, err)
	}
	return nil
}

func loadPolicy(path string) (*policy.PolicyTrie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wcerr.New(wcerr.PolicyIO, err)
	}
	defer f.Close()
	trie, err := policy.Deserialize(f)
	if err != nil {
		return nil, wcerr.New(wcerr.PolicyIO, err)
	}
	return trie, nil
}
