// Package config loads the analyzer's configuration file: a JSON document
// whose field names are dotted option names (e.g. "policy.inputSize").
// Unknown fields are rejected outright via a strict, allowlist-driven
// decode. Config is an explicit value threaded through the Driver, never a
// process-wide singleton.
package config

import (
	"encoding/json"
	"os"

	"github.com/janpfeifer/wcanalysis/internal/parameters"
	"github.com/janpfeifer/wcanalysis/internal/wcerr"
)

// Config is the fully-validated configuration for one analyzer run.
type Config struct {
	// PolicyInputSize is N0, the single input size explored exhaustively
	// during phase 1. Required.
	PolicyInputSize int
	// InputMax is Nmax, the inclusive upper bound of the phase-2 sweep.
	// Required, must be >= 0.
	InputMax int
	// PredictionModelSize is the extrapolation horizon. Zero means the
	// Driver computes the default, ceil(1.5 * len(series)).
	PredictionModelSize int
	// Verbose enables auxiliary reports and the machine-readable summary.
	Verbose bool
	// OutputDir is the root of all emitted files (policy file, chart,
	// summary). Required.
	OutputDir string
	// HeuristicNoSolver switches phase 2 to the no-solver fallback mode:
	// policy recommendations become pruning hints only, and a policy miss
	// deterministically takes the first available choice instead of
	// exploring all of them.
	HeuristicNoSolver bool
	// ReusePolicy, if set, skips phase 1 when a policy file already exists
	// at the expected location.
	ReusePolicy bool
	// ReqMaxInputSize, ReqMaxRes are optional budget annotations drawn on
	// the chart. Zero means "not set" -- no annotation is drawn.
	ReqMaxInputSize int
	ReqMaxRes       float64
}

// wireConfig mirrors Config's fields with their dotted JSON names.
// json.Decoder's DisallowUnknownFields is used against wireConfig's
// declared field set so unrecognized keys are rejected outright rather
// than silently ignored.
type wireConfig struct {
	PolicyInputSize     *int     `json:"policy.inputSize"`
	InputMax            *int     `json:"input.max"`
	PredictionModelSize int      `json:"predictionModel.size"`
	Verbose             bool     `json:"verbose"`
	OutputDir           string   `json:"outputDir"`
	HeuristicNoSolver   bool     `json:"heuristic.noSolver"`
	ReusePolicy         bool     `json:"reusePolicy"`
	ReqMaxInputSize     int      `json:"req.maxInputSize"`
	ReqMaxRes           float64  `json:"req.maxRes"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	defer f.Close()

	var wire wireConfig
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "parsing %s: %s", path, err)
	}

	return validate(wire)
}

// Override applies a comma-separated "key=value,..." string, in the style
// of a "-config linear,ab,max_depth=2" flag, on top of a loaded Config. It
// lets an operator tweak a handful of fields from the command line without
// editing the config file. Recognized keys use the same dotted names as
// the config file's JSON: policy.inputSize, input.max,
// predictionModel.size, verbose, heuristic.noSolver, reusePolicy and
// outputDir. req.maxInputSize and req.maxRes are not accepted and are
// reported as unrecognized keys.
func Override(cfg Config, overrides string) (Config, error) {
	if overrides == "" {
		return cfg, nil
	}
	params := parameters.NewFromConfigString(overrides)

	var err error
	cfg.PolicyInputSize, err = parameters.PopParamOr(params, "policy.inputSize", cfg.PolicyInputSize)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.InputMax, err = parameters.PopParamOr(params, "input.max", cfg.InputMax)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.PredictionModelSize, err = parameters.PopParamOr(params, "predictionModel.size", cfg.PredictionModelSize)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.Verbose, err = parameters.PopParamOr(params, "verbose", cfg.Verbose)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.HeuristicNoSolver, err = parameters.PopParamOr(params, "heuristic.noSolver", cfg.HeuristicNoSolver)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.ReusePolicy, err = parameters.PopParamOr(params, "reusePolicy", cfg.ReusePolicy)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}
	cfg.OutputDir, err = parameters.PopParamOr(params, "outputDir", cfg.OutputDir)
	if err != nil {
		return Config{}, wcerr.New(wcerr.Configuration, err)
	}

	if len(params) > 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "unrecognized override keys: %v", params)
	}
	return cfg, nil
}

func validate(wire wireConfig) (Config, error) {
	if wire.PolicyInputSize == nil {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "policy.inputSize is required")
	}
	if *wire.PolicyInputSize < 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "policy.inputSize must be >= 0, got %d", *wire.PolicyInputSize)
	}
	if wire.InputMax == nil {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "input.max is required")
	}
	if *wire.InputMax < 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "input.max must be >= 0, got %d", *wire.InputMax)
	}
	if wire.PredictionModelSize < 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "predictionModel.size must be >= 0, got %d", wire.PredictionModelSize)
	}
	if wire.OutputDir == "" {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "outputDir is required")
	}
	if wire.ReqMaxInputSize < 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "req.maxInputSize must be >= 0, got %d", wire.ReqMaxInputSize)
	}
	if wire.ReqMaxRes < 0 {
		return Config{}, wcerr.Errorf(wcerr.Configuration, "req.maxRes must be >= 0, got %g", wire.ReqMaxRes)
	}

	return Config{
		PolicyInputSize:     *wire.PolicyInputSize,
		InputMax:            *wire.InputMax,
		PredictionModelSize: wire.PredictionModelSize,
		Verbose:             wire.Verbose,
		OutputDir:           wire.OutputDir,
		HeuristicNoSolver:   wire.HeuristicNoSolver,
		ReusePolicy:         wire.ReusePolicy,
		ReqMaxInputSize:     wire.ReqMaxInputSize,
		ReqMaxRes:           wire.ReqMaxRes,
	}, nil
}
