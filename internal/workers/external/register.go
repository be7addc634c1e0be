package external

import (
	"fmt"
	"os/exec"
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
)

// IDPrefix antecede al nombre de cada worker externo.
const IDPrefix = "exec/"

// Definition describe un worker externo declarado en la configuración.
type Definition struct {
	Name        string
	Description string
	Command     string
	Args        []string
	Accepts     []string
	Outputs     []string
	Concurrency int
	Timeout     time.Duration
	Active      bool
}

// Register adds one "exec/<name>" worker per definition. The command is
// resolved through PATH when the worker is built, not here, so listing
// workers never fails on a missing binary.
func Register(reg *registry.WorkerRegistry, defs []Definition) error {
	for _, def := range defs {
		spec, err := def.spec()
		if err != nil {
			return err
		}
		if err := reg.Register(spec, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
			path, err := exec.LookPath(def.Command)
			if err != nil {
				return nil, fmt.Errorf("%s not found in PATH: %w", def.Command, err)
			}
			timeout := registry.DurationParam(cfg.Params, "timeout", def.Timeout)
			return NewProcess(spec.ID, path, def.Args, timeout, logger), nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (d Definition) spec() (ports.WorkerSpec, error) {
	if d.Name == "" {
		return ports.WorkerSpec{}, fmt.Errorf("external worker: name is required")
	}
	if d.Command == "" {
		return ports.WorkerSpec{}, fmt.Errorf("external worker %s: command is required", d.Name)
	}
	accepts, err := parseKinds(d.Accepts)
	if err != nil {
		return ports.WorkerSpec{}, fmt.Errorf("external worker %s: %w", d.Name, err)
	}
	outputs, err := parseKinds(d.Outputs)
	if err != nil {
		return ports.WorkerSpec{}, fmt.Errorf("external worker %s: %w", d.Name, err)
	}
	mode := ports.ModePassive
	if d.Active {
		mode = ports.ModeActive
	}
	desc := d.Description
	if desc == "" {
		desc = "External command " + d.Command
	}
	return ports.WorkerSpec{
		ID:          IDPrefix + d.Name,
		Description: desc,
		Accepts:     accepts,
		Outputs:     outputs,
		Concurrency: d.Concurrency,
		Mode:        mode,
	}, nil
}

func parseKinds(names []string) ([]value.Kind, error) {
	out := make([]value.Kind, 0, len(names))
	for _, n := range names {
		k, err := value.ParseKind(n)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
