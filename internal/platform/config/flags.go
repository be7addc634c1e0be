// internal/platform/config/flags.go
package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// flagValues guarda los destinos de los flags; solo los flags que el
// usuario cambió pisan las capas anteriores.
type flagValues struct {
	configPath  string
	maxDepth    int
	timeout     int
	outDir      string
	ignore      []string
	workers     []string
	concurrency map[string]int
	params      []string
	json        bool
	table       bool
	sqlite      string
	ui          string
	logLevel    string
	listWorkers bool
	version     bool
}

// bindFlags registra todos los flags de reconweave en fs.
func bindFlags(fs *pflag.FlagSet) *flagValues {
	d := DefaultConfig()
	fl := &flagValues{}

	fs.StringVarP(&fl.configPath, "config", "c", "", "YAML config file")
	fs.IntVarP(&fl.maxDepth, "max-depth", "d", d.Core.MaxDepth, "maximum discovery depth, <0 = unlimited")
	fs.IntVarP(&fl.timeout, "timeout", "T", d.Core.TimeoutS, "global timeout in seconds, 0 = none")
	fs.StringVarP(&fl.outDir, "out", "o", d.Output.Dir, "output directory")
	fs.StringSliceVarP(&fl.ignore, "ignore", "i", nil, "values excluded from scope (repeatable, comma separated)")
	fs.StringSliceVarP(&fl.workers, "workers", "w", nil, "worker ids to enable, empty = all")
	fs.StringToIntVar(&fl.concurrency, "concurrency", nil, "units per worker, e.g. dns/lookup=8")
	fs.StringArrayVarP(&fl.params, "param", "p", nil, "worker parameter as id.key=value (repeatable)")
	fs.BoolVar(&fl.json, "json", d.Output.JSON, "write JSON report")
	fs.BoolVar(&fl.table, "table", d.Output.Table, "print result table")
	fs.StringVar(&fl.sqlite, "sqlite", "", "write results to this SQLite database")
	fs.StringVar(&fl.ui, "ui", d.Output.UI, "terminal mode: compact, quiet, raw")
	fs.StringVar(&fl.logLevel, "log-level", d.LogLevel, "debug, info, warn, error")
	fs.BoolVar(&fl.listWorkers, "list-workers", false, "list registered workers and exit")
	fs.BoolVarP(&fl.version, "version", "v", false, "print version information and exit")

	return fl
}

// apply copia sobre cfg los flags presentes en la línea de comandos.
func (fl *flagValues) apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("max-depth") {
		cfg.Core.MaxDepth = fl.maxDepth
	}
	if fs.Changed("timeout") {
		cfg.Core.TimeoutS = fl.timeout
	}
	if fs.Changed("out") {
		cfg.Output.Dir = fl.outDir
	}
	if fs.Changed("ignore") {
		cfg.Core.Ignore = fl.ignore
	}
	if fs.Changed("workers") {
		cfg.Workers.Enabled = fl.workers
	}
	if fs.Changed("concurrency") {
		if cfg.Workers.Concurrency == nil {
			cfg.Workers.Concurrency = map[string]int{}
		}
		for id, n := range fl.concurrency {
			cfg.Workers.Concurrency[id] = n
		}
	}
	if fs.Changed("param") {
		for _, p := range fl.params {
			id, key, val, ok := splitParam(p)
			if !ok {
				continue
			}
			if cfg.Workers.Params == nil {
				cfg.Workers.Params = map[string]map[string]any{}
			}
			if cfg.Workers.Params[id] == nil {
				cfg.Workers.Params[id] = map[string]any{}
			}
			cfg.Workers.Params[id][key] = val
		}
	}
	if fs.Changed("json") {
		cfg.Output.JSON = fl.json
	}
	if fs.Changed("table") {
		cfg.Output.Table = fl.table
	}
	if fs.Changed("sqlite") {
		cfg.Output.SQLite = fl.sqlite
	}
	if fs.Changed("ui") {
		cfg.Output.UI = fl.ui
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = fl.logLevel
	}
	cfg.ListWorkers = fl.listWorkers
	cfg.PrintVersion = fl.version
}

// splitParam parte "dns/lookup.rate=5" en ("dns/lookup", "rate", "5").
// El último punto antes del "=" separa id y clave.
func splitParam(p string) (id, key, val string, ok bool) {
	lhs, val, found := strings.Cut(p, "=")
	if !found {
		return "", "", "", false
	}
	dot := strings.LastIndex(lhs, ".")
	if dot <= 0 || dot == len(lhs)-1 {
		return "", "", "", false
	}
	return strings.TrimSpace(lhs[:dot]), strings.TrimSpace(lhs[dot+1:]), strings.TrimSpace(val), true
}
