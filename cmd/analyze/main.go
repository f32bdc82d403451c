// Command analyze runs the worst-case resource analyzer: `analyze
// <configfile>`. Exit codes: 0 success, 1 configuration error, 2
// host-exploration failure, 3 serialization I/O failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/janpfeifer/wcanalysis/internal/config"
	"github.com/janpfeifer/wcanalysis/internal/demo"
	"github.com/janpfeifer/wcanalysis/internal/driver"
	"github.com/janpfeifer/wcanalysis/internal/host"
	"github.com/janpfeifer/wcanalysis/internal/profilers"
	"github.com/janpfeifer/wcanalysis/internal/ui/spinning"
	"github.com/janpfeifer/wcanalysis/internal/wcerr"
)

var flagOverride = flag.String("override", "", "Comma-separated config.key=value overrides applied on top of the config file, e.g. -override verbose=true,input.max=20")

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	ctx, cancel := context.WithCancel(context.Background())
	profilers.Setup(ctx)
	defer profilers.OnQuit()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: analyze [-override key=value,...] <configfile>")
		os.Exit(wcerr.Configuration.ExitCode())
	}

	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	os.Exit(run(ctx, flag.Arg(0), *flagOverride))
}

func run(ctx context.Context, configPath, overrides string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		klog.Errorf("configuration error: %+v", err)
		return wcerr.ExitCode(err)
	}
	cfg, err = config.Override(cfg, overrides)
	if err != nil {
		klog.Errorf("configuration override error: %+v", err)
		return wcerr.ExitCode(err)
	}

	must.M(os.MkdirAll(cfg.OutputDir, 0o755))

	d := driver.New(cfg, func(n int) host.Host { return demo.New(n) })
	if err := d.Run(ctx); err != nil {
		klog.Errorf("analysis failed: %+v", err)
		return wcerr.ExitCode(err)
	}

	klog.Infof("analysis complete, output written to %s", cfg.OutputDir)
	return 0
}
