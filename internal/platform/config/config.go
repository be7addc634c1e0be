// internal/platform/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"reconweave/internal/core/ports"
)

// EnvPrefix antecede a todas las variables de entorno reconocidas.
const EnvPrefix = "RECONWEAVE_"

// UI modes.
const (
	UICompact = "compact"
	UIQuiet   = "quiet"
	UIRaw     = "raw"
)

var (
	// ErrInvalidConfig envuelve cualquier error de validación.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrHelp se retorna cuando se pidió --help; el llamador imprime la ayuda.
	ErrHelp = pflag.ErrHelp
)

// Config es la configuración resuelta de una corrida. Se resuelve una sola
// vez antes de construir los workers.
type Config struct {
	Core    CoreConfig    `yaml:"core"`
	Workers WorkersConfig `yaml:"workers"`
	Output  OutputConfig  `yaml:"output"`

	LogLevel string `yaml:"log_level"`

	// Solo CLI
	ConfigPath   string `yaml:"-"`
	ListWorkers  bool   `yaml:"-"`
	PrintVersion bool   `yaml:"-"`
}

type CoreConfig struct {
	MaxDepth int      `yaml:"max_depth"` // < 0 = sin límite
	TimeoutS int      `yaml:"timeout"`   // segundos (0 = sin timeout)
	Seeds    []string `yaml:"seeds"`
	Ignore   []string `yaml:"ignore"`
}

type WorkersConfig struct {
	// Enabled vacío = todos los registrados
	Enabled     []string                  `yaml:"enabled"`
	Params      map[string]map[string]any `yaml:"params"`
	Concurrency map[string]int            `yaml:"concurrency"`

	// External declara workers "exec/<name>" que corren un comando por valor.
	External []ExternalWorker `yaml:"external"`
}

// ExternalWorker es la declaración de un worker fuera de árbol.
type ExternalWorker struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	Accepts     []string `yaml:"accepts"`
	Outputs     []string `yaml:"outputs"`
	Concurrency int      `yaml:"concurrency"`
	TimeoutS    int      `yaml:"timeout"`
	Active      bool     `yaml:"active"`
}

// Timeout devuelve el timeout por job (0 = sin timeout).
func (w ExternalWorker) Timeout() time.Duration {
	return time.Duration(max(w.TimeoutS, 0)) * time.Second
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	JSON   bool   `yaml:"json"`
	Table  bool   `yaml:"table"`
	SQLite string `yaml:"sqlite"` // path; "" = desactivado
	UI     string `yaml:"ui"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Core: CoreConfig{
			MaxDepth: -1,
			TimeoutS: 0,
		},
		Workers: WorkersConfig{
			Params:      map[string]map[string]any{},
			Concurrency: map[string]int{},
		},
		Output: OutputConfig{
			Dir:   "reconweave_out",
			JSON:  true,
			Table: true,
			UI:    UICompact,
		},
		LogLevel: "info",
	}
}

// Load resuelve la configuración: defaults → archivo YAML → entorno →
// flags. Los argumentos posicionales se agregan como seeds.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	fs := pflag.NewFlagSet("reconweave", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fl := bindFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cfg, ErrHelp
		}
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg.ConfigPath = fl.configPath
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = getenv(EnvPrefix+"CONFIG", "")
	}
	if cfg.ConfigPath != "" {
		if err := LoadFile(cfg.ConfigPath, &cfg); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)
	fl.apply(fs, &cfg)
	cfg.Core.Seeds = append(cfg.Core.Seeds, fs.Args()...)

	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile mezcla un archivo YAML sobre cfg. Claves ausentes conservan su valor.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Parse decodifica YAML sobre cfg; campos desconocidos son un error.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
//
// Formato por worker (id con "/" y "-" como "_"):
//
//	RECONWEAVE_WORKER_DNS_LOOKUP_CONCURRENCY=8
func loadFromEnv(cfg *Config) {
	if v := getenv(EnvPrefix+"MAX_DEPTH", ""); v != "" {
		cfg.Core.MaxDepth = parseInt(v, cfg.Core.MaxDepth)
	}
	if v := getenv(EnvPrefix+"TIMEOUT", ""); v != "" {
		cfg.Core.TimeoutS = parseInt(v, cfg.Core.TimeoutS)
	}
	if v := getenv(EnvPrefix+"SEEDS", ""); v != "" {
		cfg.Core.Seeds = splitList(v)
	}
	if v := getenv(EnvPrefix+"IGNORE", ""); v != "" {
		cfg.Core.Ignore = splitList(v)
	}
	if v := getenv(EnvPrefix+"WORKERS", ""); v != "" {
		cfg.Workers.Enabled = splitList(v)
	}
	if v := getenv(EnvPrefix+"OUTPUT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv(EnvPrefix+"OUTPUT_JSON", ""); v != "" {
		cfg.Output.JSON = parseBool(v)
	}
	if v := getenv(EnvPrefix+"OUTPUT_TABLE", ""); v != "" {
		cfg.Output.Table = parseBool(v)
	}
	if v := getenv(EnvPrefix+"OUTPUT_SQLITE", ""); v != "" {
		cfg.Output.SQLite = v
	}
	if v := getenv(EnvPrefix+"UI", ""); v != "" {
		cfg.Output.UI = v
	}
	if v := getenv(EnvPrefix+"LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}

	for _, id := range cfg.knownWorkerIDs() {
		if v := getenv(EnvPrefix+"WORKER_"+EnvName(id)+"_CONCURRENCY", ""); v != "" {
			if cfg.Workers.Concurrency == nil {
				cfg.Workers.Concurrency = map[string]int{}
			}
			cfg.Workers.Concurrency[id] = parseInt(v, cfg.Workers.Concurrency[id])
		}
	}
}

// EnvName maps a worker id such as "dns/lookup" to "DNS_LOOKUP".
func EnvName(id string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return strings.ToUpper(r.Replace(id))
}

func normalize(c *Config) {
	if c.Core.MaxDepth < 0 {
		c.Core.MaxDepth = -1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reconweave_out"
	}
	c.Output.UI = strings.ToLower(strings.TrimSpace(c.Output.UI))
	if c.Output.UI == "" {
		c.Output.UI = UICompact
	}
	c.Core.Seeds = trimAll(c.Core.Seeds)
	c.Core.Ignore = trimAll(c.Core.Ignore)
	c.Workers.Enabled = trimAll(c.Workers.Enabled)
}

// Validate verifica invariantes que no dependen del registry.
func (c Config) Validate() error {
	switch c.Output.UI {
	case UICompact, UIQuiet, UIRaw:
	default:
		return fmt.Errorf("%w: output.ui must be one of compact, quiet, raw; got %q", ErrInvalidConfig, c.Output.UI)
	}
	if c.Core.TimeoutS < 0 {
		return fmt.Errorf("%w: core.timeout cannot be negative, got %d", ErrInvalidConfig, c.Core.TimeoutS)
	}
	names := make(map[string]bool, len(c.Workers.External))
	for i, w := range c.Workers.External {
		if w.Name == "" || w.Command == "" {
			return fmt.Errorf("%w: workers.external[%d] needs name and command", ErrInvalidConfig, i)
		}
		if len(w.Accepts) == 0 {
			return fmt.Errorf("%w: workers.external[%s] accepts nothing", ErrInvalidConfig, w.Name)
		}
		if names[w.Name] {
			return fmt.Errorf("%w: workers.external[%s] declared twice", ErrInvalidConfig, w.Name)
		}
		names[w.Name] = true
	}
	for id, n := range c.Workers.Concurrency {
		if n <= 0 {
			return fmt.Errorf("%w: workers.concurrency[%s] must be positive, got %d", ErrInvalidConfig, id, n)
		}
	}
	return nil
}

// Timeout devuelve el timeout global como duración (0 = sin timeout).
func (c Config) Timeout() time.Duration {
	if c.Core.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.Core.TimeoutS) * time.Second
}

// WorkerConfigs arma la configuración por worker que consume el registry.
func (c Config) WorkerConfigs() map[string]ports.WorkerConfig {
	out := make(map[string]ports.WorkerConfig)
	for _, id := range c.knownWorkerIDs() {
		out[id] = ports.WorkerConfig{
			Concurrency: c.Workers.Concurrency[id],
			Params:      c.Workers.Params[id],
		}
	}
	return out
}

// ToYAML serializa la configuración (útil para debugging).
func (c Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// knownWorkerIDs returns every worker id mentioned anywhere in the config.
func (c Config) knownWorkerIDs() []string {
	set := map[string]bool{}
	for _, id := range c.Workers.Enabled {
		set[id] = true
	}
	for id := range c.Workers.Params {
		set[id] = true
	}
	for id := range c.Workers.Concurrency {
		set[id] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func splitList(v string) []string {
	return trimAll(strings.Split(v, ","))
}

func trimAll(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
