// internal/platform/ui/compact_presenter.go
package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"reconweave/internal/core/engine"
)

// refreshInterval limita la frecuencia de actualización del spinner.
const refreshInterval = 100 * time.Millisecond

// CompactPresenter muestra un header, una línea de contadores en vivo y
// un resumen final con pterm.
type CompactPresenter struct {
	mu sync.Mutex
	w  io.Writer

	live    bool
	spinner *pterm.SpinnerPrinter
	last    time.Time
	now     func() time.Time

	tracker *Tracker
	info    RunInfo
}

// NewCompactPresenter crea el presenter. Con live=false no se usa spinner
// y los fallos se imprimen como líneas.
func NewCompactPresenter(w io.Writer, live bool) *CompactPresenter {
	return &CompactPresenter{
		w:       w,
		live:    live,
		now:     time.Now,
		tracker: NewTracker(),
	}
}

// Tracker expone los contadores acumulados.
func (p *CompactPresenter) Tracker() *Tracker { return p.tracker }

func (p *CompactPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.info = info

	fmt.Fprintln(p.w, pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprint("reconweave"))

	depth := "unlimited"
	if info.MaxDepth >= 0 {
		depth = fmt.Sprintf("%d", info.MaxDepth)
	}
	timeout := "none"
	if info.Timeout > 0 {
		timeout = formatDuration(info.Timeout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Seeds: %s\n", IconSeed, StylePrimary.Sprint(strings.Join(info.Seeds, ", ")))
	fmt.Fprintf(&b, "%s Workers: %d\n", IconWorkers, len(info.Workers))
	fmt.Fprintf(&b, "   Max depth: %s\n", depth)
	fmt.Fprintf(&b, "%s Timeout: %s", IconTime, timeout)
	fmt.Fprintln(p.w, pterm.DefaultBox.WithTitle("Run "+info.RunID).WithTitleTopCenter().Sprint(b.String()))
	fmt.Fprintln(p.w)

	if p.live {
		spinner, err := pterm.DefaultSpinner.
			WithWriter(p.w).
			WithRemoveWhenDone(true).
			Start(p.statusLine(p.tracker.Snapshot()))
		if err == nil {
			p.spinner = spinner
		}
	}
}

func (p *CompactPresenter) Observe(e engine.Event) {
	p.tracker.Observe(e)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.live && e.Kind == engine.JobFailed {
		fmt.Fprintf(p.w, "%s %s %s: %v\n", StyleError.Sprint(IconError), e.Worker, e.Value, e.Err)
		return
	}
	if p.spinner == nil {
		return
	}
	if now := p.now(); now.Sub(p.last) >= refreshInterval {
		p.last = now
		p.spinner.UpdateText(p.statusLine(p.tracker.Snapshot()))
	}
}

func (p *CompactPresenter) statusLine(s Snapshot) string {
	return fmt.Sprintf("%s %d values · %d edges · %d running · %d done · %d failed",
		IconValues, s.Values, s.Edges, s.Running, s.Done, s.Failed)
}

func (p *CompactPresenter) Finish(sum Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()

	snap := p.tracker.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Duration: %s\n", IconTime, formatDuration(sum.Duration))
	fmt.Fprintf(&b, "%s Values: %s\n", IconValues, StylePrimary.Sprint(fmt.Sprintf("%d", sum.Values)))
	fmt.Fprintf(&b, "   Edges: %d\n", sum.Edges)
	fmt.Fprintf(&b, "%s Jobs completed: %s\n", IconSuccess, StyleSuccess.Sprint(fmt.Sprintf("%d", sum.JobsCompleted)))
	fmt.Fprintf(&b, "%s Jobs failed: %s", IconError, StyleError.Sprint(fmt.Sprintf("%d", sum.JobsFailed)))
	if sum.Cancelled {
		fmt.Fprintf(&b, "\n%s Cancelled before completion", IconWarning)
	}

	title := "Run complete"
	if sum.Cancelled {
		title = "Run cancelled"
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, pterm.DefaultBox.WithTitle(title).WithTitleTopCenter().Sprint(b.String()))

	if len(snap.Workers) > 0 {
		data := pterm.TableData{{"", "WORKER", "DONE", "FAILED", "EMITTED"}}
		for _, w := range snap.Workers {
			st := w.Status()
			data = append(data, []string{
				st.Style().Sprint(st.Symbol()),
				w.ID,
				fmt.Sprintf("%d", w.Completed),
				fmt.Sprintf("%d", w.Failed),
				fmt.Sprintf("%d", w.Emitted),
			})
		}
		if out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
			fmt.Fprintln(p.w)
			fmt.Fprintln(p.w, out)
		}
	}

	if len(sum.ByKind) > 0 {
		kinds := make([]string, 0, len(sum.ByKind))
		for k := range sum.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		fmt.Fprintf(p.w, "\n%s Values by type:\n", IconStats)
		for _, k := range kinds {
			fmt.Fprintf(p.w, "  - %s: %d\n", k, sum.ByKind[k])
		}
	}

	for _, out := range sum.Outputs {
		fmt.Fprintf(p.w, "%s %s\n", IconInfo, out)
	}
	fmt.Fprintln(p.w)
}

func (p *CompactPresenter) stopSpinner() {
	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}
}

func (p *CompactPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
	return nil
}
