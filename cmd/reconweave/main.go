// cmd/reconweave/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"reconweave/internal/adapters/output"
	"reconweave/internal/adapters/store"
	"reconweave/internal/core/engine"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/config"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
	"reconweave/internal/platform/ui"
	"reconweave/internal/workers/builtin"
	"reconweave/internal/workers/external"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 1. Load config: defaults -> file -> env -> flags
	cfg, err := config.Load(args)
	if errors.Is(err, config.ErrHelp) {
		config.PrintHelp(stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Try: reconweave -h for help")
		return exitConfig
	}
	if cfg.PrintVersion {
		config.PrintVersion(stdout, version, commit, date)
		return exitOK
	}

	// 2. Shared logger
	logger := logx.NewWithWriter(stderr, logx.ParseLevel(cfg.LogLevel))

	// 3. Worker registry: builtin + external declared in config
	reg := builtin.NewRegistry(logger)
	if err := external.Register(reg, externalDefinitions(cfg.Workers.External)); err != nil {
		logger.Err(err, "phase", "registry")
		return exitConfig
	}

	if cfg.ListWorkers {
		if err := printWorkers(stdout, reg); err != nil {
			logger.Err(err, "phase", "list-workers")
			return exitRuntime
		}
		return exitOK
	}

	seeds, err := parseValues(cfg.Core.Seeds)
	if err != nil {
		fmt.Fprintf(stderr, "Error: seed: %v\n", err)
		return exitConfig
	}
	if len(seeds) == 0 {
		fmt.Fprintln(stderr, "Error: at least one seed is required")
		fmt.Fprintln(stderr, "Usage: reconweave [flags] <seed> [seed...]")
		return exitConfig
	}
	ignore, err := parseValues(cfg.Core.Ignore)
	if err != nil {
		fmt.Fprintf(stderr, "Error: ignore: %v\n", err)
		return exitConfig
	}

	// 4. Bindings and engine
	bindings, err := reg.Build(cfg.Workers.Enabled, cfg.WorkerConfigs(), logger)
	if err != nil {
		logger.Err(err, "phase", "worker-build")
		return exitConfig
	}
	eng, err := engine.New(engine.Options{
		Workers:  bindings,
		Seeds:    seeds,
		Ignore:   ignore,
		MaxDepth: cfg.Core.MaxDepth,
		Logger:   logger,
	})
	if err != nil {
		logger.Err(err, "phase", "engine")
		return exitConfig
	}

	runID := uuid.NewString()
	logger.Info("reconweave starting",
		"version", version,
		"run_id", runID,
		"seeds", len(seeds),
		"workers", len(bindings),
		"max_depth", cfg.Core.MaxDepth,
	)

	// 5. Observers: presenter and event stream
	presenter := ui.New(ui.Mode(cfg.Output.UI), stderr)
	defer presenter.Close()
	ui.Attach(eng, presenter)

	var outputs []string
	var stream *output.StreamWriter
	if cfg.Output.JSON {
		sw, path, err := output.CreateStreamFile(cfg.Output.Dir, runID, logger)
		if err != nil {
			logger.Err(err, "phase", "stream")
			return exitRuntime
		}
		sw.Attach(eng)
		stream = sw
		outputs = append(outputs, "events: "+path)
	}

	seedNames := make([]string, 0, len(seeds))
	for _, s := range seeds {
		seedNames = append(seedNames, s.String())
	}
	workerIDs := make([]string, 0, len(bindings))
	for _, b := range bindings {
		workerIDs = append(workerIDs, b.Spec.ID)
	}
	presenter.Start(ui.RunInfo{
		RunID:    runID,
		Seeds:    seedNames,
		Workers:  workerIDs,
		MaxDepth: cfg.Core.MaxDepth,
		Timeout:  cfg.Timeout(),
	})

	// 6. Run until quiescence, timeout or signal
	ctx, cancel := rootContextWithSignals(cfg.Timeout())
	defer cancel()

	started := time.Now()
	runErr := eng.Run(ctx)
	finished := time.Now()

	if stream != nil {
		if err := stream.Close(); err != nil {
			logger.Err(err, "phase", "stream")
		}
	}

	stats := eng.Stats()
	report := &ports.Report{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    finished,
		Seeds:         seeds,
		Workers:       eng.Workers(),
		Graph:         eng.Graph(),
		JobsCompleted: stats.JobsCompleted,
		JobsFailed:    stats.JobsFailed,
		Cancelled:     runErr != nil,
	}

	if runErr != nil {
		// Los resultados parciales se exportan igual
		logger.Warn("run interrupted", "reason", runErr.Error())
	}

	// 7. Outputs
	exitCode := exitOK
	for _, exp := range exporters(cfg, stdout) {
		if err := exp.Export(context.Background(), report); err != nil {
			logger.Err(err, "phase", "output", "exporter", exp.Name())
			exitCode = exitRuntime
			continue
		}
		switch e := exp.(type) {
		case *output.JSONExporter:
			outputs = append(outputs, "json: "+e.LastPath)
		case *store.Exporter:
			outputs = append(outputs, "sqlite: "+e.Path)
		}
	}

	gs := report.Graph.Stats()
	byKind := make(map[string]int, len(gs.ByKind))
	for k, n := range gs.ByKind {
		byKind[string(k)] = n
	}
	presenter.Finish(ui.Summary{
		Duration:      report.Duration(),
		Values:        gs.Nodes,
		Edges:         gs.Edges,
		ByKind:        byKind,
		JobsCompleted: stats.JobsCompleted,
		JobsFailed:    stats.JobsFailed,
		Cancelled:     report.Cancelled,
		Outputs:       outputs,
	})

	logger.Info("reconweave finished",
		"run_id", runID,
		"values", gs.Nodes,
		"edges", gs.Edges,
		"elapsed_ms", report.Duration().Milliseconds(),
	)

	if runErr != nil {
		return exitRuntime
	}
	return exitCode
}

// exporters decide los formatos de salida según la config.
func exporters(cfg config.Config, stdout io.Writer) []ports.Exporter {
	var out []ports.Exporter
	if cfg.Output.JSON {
		out = append(out, output.NewJSONExporter(cfg.Output.Dir))
	}
	if cfg.Output.SQLite != "" {
		out = append(out, store.NewExporter(defaultDBPath(cfg.Output.Dir, cfg.Output.SQLite)))
	}
	if cfg.Output.Table {
		out = append(out, output.NewTableExporter(stdout))
	}
	return out
}

func externalDefinitions(in []config.ExternalWorker) []external.Definition {
	defs := make([]external.Definition, 0, len(in))
	for _, w := range in {
		defs = append(defs, external.Definition{
			Name:        w.Name,
			Description: w.Description,
			Command:     w.Command,
			Args:        w.Args,
			Accepts:     w.Accepts,
			Outputs:     w.Outputs,
			Concurrency: w.Concurrency,
			Timeout:     w.Timeout(),
			Active:      w.Active,
		})
	}
	return defs
}

func parseValues(in []string) ([]value.Value, error) {
	out := make([]value.Value, 0, len(in))
	for _, s := range in {
		v, err := value.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func printWorkers(w io.Writer, reg *registry.WorkerRegistry) error {
	data := pterm.TableData{{"ID", "MODE", "ACCEPTS", "OUTPUTS", "DESCRIPTION"}}
	for _, spec := range reg.Specs() {
		data = append(data, []string{
			spec.ID,
			string(spec.Mode),
			joinKinds(spec.Accepts),
			joinKinds(spec.Outputs),
			spec.Description,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

func joinKinds(kinds []value.Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ",")
}

// rootContextWithSignals crea el contexto raíz con timeout opcional y
// cancelación por SIGINT/SIGTERM.
func rootContextWithSignals(timeout time.Duration) (context.Context, context.CancelFunc) {
	var base context.Context
	var baseCancel context.CancelFunc

	if timeout > 0 {
		base, baseCancel = context.WithTimeout(context.Background(), timeout)
	} else {
		base, baseCancel = context.WithCancel(context.Background())
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	return base, func() {
		signal.Stop(ch)
		baseCancel()
	}
}

// defaultDBPath ubica un nombre de base sin directorio dentro del output dir.
func defaultDBPath(dir, name string) string {
	if filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(dir, name)
}
