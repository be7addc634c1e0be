// internal/platform/ui/quiet_presenter.go
package ui

import "reconweave/internal/core/engine"

// QuietPresenter no produce ninguna salida. Útil para modo quiet o headless.
type QuietPresenter struct{}

func NewQuietPresenter() *QuietPresenter { return &QuietPresenter{} }

func (QuietPresenter) Start(RunInfo)        {}
func (QuietPresenter) Observe(engine.Event) {}
func (QuietPresenter) Finish(Summary)       {}
func (QuietPresenter) Close() error         { return nil }
