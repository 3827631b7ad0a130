package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"borderops-sim/internal/config"
	"borderops-sim/internal/sim"
	"borderops-sim/internal/tui"
)

// newSinks sets up drone and alert sinks from the output mode, config and
// environment. It returns the sinks and a cleanup function that closes any
// file or dashboard resources.
func newSinks(cfg *config.SimulationConfig, output, logFile string) (sim.DroneWriter, sim.AlertWriter, func(), error) {
	cleanup := func() {}

	if output == "auto" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			output = "color"
		} else {
			output = "json"
		}
	}

	var dw sim.DroneWriter
	var aw sim.AlertWriter
	switch output {
	case "json":
		w := sim.NewJSONStdoutWriter()
		dw, aw = w, w
	case "color":
		w := sim.NewColorStdoutWriter()
		dw, aw = w, w
	case "tui":
		w := tui.NewWriter(cfg.Border.Border())
		dw, aw = w, w
		cleanup = func() { _ = w.Close() }
	default:
		return nil, nil, nil, fmt.Errorf("unknown output mode %q", output)
	}

	dws := []sim.DroneWriter{dw}
	aws := []sim.AlertWriter{aw}
	closers := []func(){cleanup}

	if logFile == "" && cfg.DroneLogPath != "" {
		logFile = cfg.DroneLogPath
	}
	if logFile != "" {
		alertPath := cfg.AlertLogPath
		if alertPath == "" {
			alertPath = logFile + ".alerts"
		}
		fw, err := sim.NewFileWriter(logFile, alertPath)
		if err != nil {
			return nil, nil, nil, err
		}
		dws = append(dws, fw)
		aws = append(aws, fw)
		closers = append(closers, func() { _ = fw.Close() })
	}

	endpoint := cfg.GreptimeEndpoint
	if env := os.Getenv("GREPTIMEDB_ENDPOINT"); env != "" {
		endpoint = env
	}
	if endpoint != "" {
		database := cfg.GreptimeDatabase
		if env := os.Getenv("GREPTIMEDB_DATABASE"); env != "" {
			database = env
		}
		gw, err := sim.NewGreptimeDBWriter(endpoint, database)
		if err != nil {
			return nil, nil, nil, err
		}
		dws = append(dws, gw)
	}

	if len(dws) == 1 && len(aws) == 1 {
		return dw, aw, cleanup, nil
	}
	mw := sim.NewMultiWriter(dws, aws)
	all := func() {
		for _, c := range closers {
			c()
		}
	}
	return mw, mw, all, nil
}
