package netw

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

// ErrRangeTooLarge is returned when a range exceeds max_hosts and
// truncation is off.
var ErrRangeTooLarge = errors.New("ip range too large")

// IPRangeEnum expands an IPRange into its addresses.
type IPRangeEnum struct {
	maxHosts uint64
	truncate bool
	logger   logx.Logger
}

func NewIPRangeEnum(maxHosts int, truncate bool, logger logx.Logger) *IPRangeEnum {
	if maxHosts <= 0 {
		maxHosts = defaultMaxHosts
	}
	return &IPRangeEnum{maxHosts: uint64(maxHosts), truncate: truncate, logger: logger}
}

func (e *IPRangeEnum) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	r, ok := v.(value.IPRange)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", IPRangeEnumID, v.Kind())
	}

	if size := r.Size(e.maxHosts + 1); size > e.maxHosts {
		if !e.truncate {
			return fmt.Errorf("%w: %s has more than %d addresses", ErrRangeTooLarge, r, e.maxHosts)
		}
		e.logger.Warn("range truncated", "range", r.String(), "max_hosts", e.maxHosts)
	}

	var n uint64
	r.Each(func(a netip.Addr) bool {
		if n >= e.maxHosts || (n%256 == 0 && ctx.Err() != nil) {
			return false
		}
		emit(value.IPFromAddr(a))
		n++
		return true
	})
	return ctx.Err()
}
