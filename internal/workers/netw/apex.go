// Package netw holds workers that derive values by pure computation over
// names and address ranges, without touching the network.
package netw

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

// Apex maps a host-like name to its registrable domain (eTLD+1).
type Apex struct {
	icannOnly bool
	logger    logx.Logger
}

// NewApex builds the worker. With icannOnly, names under private suffixes
// (e.g. github.io) are skipped instead of reduced.
func NewApex(icannOnly bool, logger logx.Logger) *Apex {
	return &Apex{icannOnly: icannOnly, logger: logger}
}

func (a *Apex) Process(_ context.Context, v value.Value, emit ports.Emit) error {
	var name string
	switch h := v.(type) {
	case value.Host:
		name = h.Name()
	case value.Nameserver:
		name = h.Name()
	case value.Mailserver:
		name = h.Name()
	default:
		return fmt.Errorf("%s: unsupported value %s", ApexID, v.Kind())
	}

	apex, ok := a.registrable(name)
	if !ok {
		return nil
	}
	d, err := value.NewDomain(apex)
	if err != nil {
		return err
	}
	emit(d)
	return nil
}

// registrable returns the eTLD+1 of name, or false when name is itself a
// public suffix or sits under a private suffix in icann-only mode.
func (a *Apex) registrable(name string) (string, bool) {
	suffix, icann := publicsuffix.PublicSuffix(name)
	if a.icannOnly && !icann && strings.Contains(suffix, ".") {
		a.logger.Debug("private suffix skipped", "name", name, "suffix", suffix)
		return "", false
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(name)
	if err != nil {
		return "", false
	}
	return apex, true
}
