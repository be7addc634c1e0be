// internal/platform/config/help.go
package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
reconweave - Recursive Reconnaissance Orchestrator

USAGE:
  reconweave [options] <seed> [seed...]

  Seeds are parsed by shape: example.com, 10.0.0.1, 10.0.0.0/24,
  10.0.*.*, *.example.com, https://example.com, user@example.com

CORE OPTIONS:
  -c, --config string       YAML config file
  -d, --max-depth int       Maximum discovery depth, <0 = unlimited (default: -1)
  -T, --timeout int         Global timeout in seconds, 0 = none (default: 0)
  -i, --ignore strings      Values excluded from scope (repeatable)

WORKER OPTIONS:
  -w, --workers strings     Worker ids to enable, empty = all registered
      --concurrency k=v     Units per worker, e.g. --concurrency dns/lookup=8
  -p, --param id.key=value  Worker parameter (repeatable)
      --list-workers        List registered workers and exit

OUTPUT OPTIONS:
  -o, --out string          Output directory (default: "reconweave_out")
      --json                Write JSON report (default: true)
      --table               Print result table (default: true)
      --sqlite string       Also write results to a SQLite database
      --ui string           compact, quiet or raw (default: "compact")
      --log-level string    debug, info, warn, error (default: "info")

INFO:
  -v, --version             Print version information and exit
  -h, --help                Show this help message

EXAMPLES:
  reconweave example.com
  reconweave -d 2 -w dns/lookup,net/apex example.com
  reconweave -i staging.example.com --sqlite run.db example.com
  reconweave -p net/ip_range_enum.max_hosts=1024 10.0.0.0/24

ENVIRONMENT VARIABLES:
  RECONWEAVE_CONFIG, RECONWEAVE_MAX_DEPTH, RECONWEAVE_TIMEOUT,
  RECONWEAVE_SEEDS, RECONWEAVE_IGNORE, RECONWEAVE_WORKERS,
  RECONWEAVE_OUTPUT_DIR, RECONWEAVE_OUTPUT_JSON, RECONWEAVE_OUTPUT_TABLE,
  RECONWEAVE_OUTPUT_SQLITE, RECONWEAVE_UI, RECONWEAVE_LOG_LEVEL

  Per worker ("dns/lookup" becomes DNS_LOOKUP):
  RECONWEAVE_WORKER_DNS_LOOKUP_CONCURRENCY=8

  Precedence: defaults < config file < environment < flags.
`

// PrintHelp escribe el texto de ayuda.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion escribe la información de versión.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "reconweave %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", runtime.Version())
}
