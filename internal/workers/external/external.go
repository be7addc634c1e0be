// Package external runs out-of-tree workers as subprocesses.
//
// Contract: the command runs once per job. The value's field map is written
// to stdin as one JSON line and also exported as RECONWEAVE_VALUE (canonical
// string) and RECONWEAVE_KIND. The arguments "{value}" and "{kind}" are
// substituted. Each stdout line is one discovered value: a JSON field map
// (the same shape as the JSON report nodes) or a bare string parsed like a
// CLI seed. Unparseable lines are skipped. A non-zero exit fails the job
// after the values already read have been emitted.
package external

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/errors"
	"reconweave/internal/platform/logx"
)

const (
	maxLineBytes   = 10 * 1024 * 1024
	maxStderrBytes = 64 * 1024
)

// Process runs one subprocess per value.
type Process struct {
	id      string
	command string
	args    []string
	timeout time.Duration
	logger  logx.Logger
}

func NewProcess(id, command string, args []string, timeout time.Duration, logger logx.Logger) *Process {
	return &Process{
		id:      id,
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

func (p *Process) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	input, err := json.Marshal(v.Fields())
	if err != nil {
		return errors.Wrapf(err, "%s: encode input", p.id)
	}

	cmd := exec.CommandContext(ctx, p.command, p.expandArgs(v)...)
	cmd.Env = append(os.Environ(),
		"RECONWEAVE_VALUE="+v.String(),
		"RECONWEAVE_KIND="+string(v.Kind()),
		"RECONWEAVE_WORKER="+p.id,
	)
	cmd.Stdin = bytes.NewReader(append(input, '\n'))
	cmd.WaitDelay = 2 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrapf(err, "%s: stdout pipe", p.id)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrapf(err, "%s: stderr pipe", p.id)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "%s: start %s", p.id, p.command)
	}
	p.logger.Debug("subprocess started", "pid", cmd.Process.Pid, "value", v.String())

	// stderr en background para que el proceso no se bloquee
	var errBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		io.Copy(&errBuf, io.LimitReader(stderr, maxStderrBytes))
		io.Copy(io.Discard, stderr)
	}()

	emitted, skipped := p.readValues(stdout, emit)

	wg.Wait()
	waitErr := cmd.Wait()

	p.logger.Debug("subprocess finished",
		"value", v.String(),
		"emitted", emitted,
		"skipped", skipped,
		"duration", time.Since(start).String(),
	)

	if waitErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(errBuf.String())
		if msg != "" {
			return fmt.Errorf("%w: %s: %v: %s", errors.ErrProcessFailed, p.id, waitErr, msg)
		}
		return fmt.Errorf("%w: %s: %v", errors.ErrProcessFailed, p.id, waitErr)
	}
	return nil
}

// readValues parses stdout line by line and emits every valid value.
func (p *Process) readValues(r io.Reader, emit ports.Emit) (emitted, skipped int) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := ParseLine(line)
		if err != nil {
			skipped++
			p.logger.Debug("skipping output line", "line", string(line), "error", err.Error())
			continue
		}
		emit(v)
		emitted++
	}
	if err := scanner.Err(); err != nil {
		p.logger.Warn("scanner error", "error", err.Error())
		// drenar para que el proceso pueda terminar
		io.Copy(io.Discard, r)
	}
	return emitted, skipped
}

// ParseLine decodes one output line: a JSON field map or a bare value string.
func ParseLine(line []byte) (value.Value, error) {
	if line[0] == '{' {
		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		return value.FromFields(fields)
	}
	return value.Parse(string(line))
}

func (p *Process) expandArgs(v value.Value) []string {
	r := strings.NewReplacer("{value}", v.String(), "{kind}", string(v.Kind()))
	out := make([]string, len(p.args))
	for i, a := range p.args {
		out[i] = r.Replace(a)
	}
	return out
}
