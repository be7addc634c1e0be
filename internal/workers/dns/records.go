package dns

import (
	"context"
	"fmt"
	"strings"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

// Mailservers emits the MX targets of a Domain.
type Mailservers struct {
	resolver Resolver
	logger   logx.Logger
}

func NewMailservers(resolver Resolver, logger logx.Logger) *Mailservers {
	return &Mailservers{resolver: resolver, logger: logger}
}

func (m *Mailservers) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	name, ok := nameOf(v)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", MailserversID, v.Kind())
	}
	records, err := m.resolver.LookupMX(ctx, name)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("lookup mx %s: %w", name, err)
	}
	for _, mx := range records {
		// "." es un null MX (RFC 7505)
		if strings.Trim(mx.Host, ".") == "" {
			continue
		}
		ms, err := value.NewMailserver(mx.Host)
		if err != nil {
			m.logger.Debug("skipping mx target", "name", name, "target", mx.Host)
			continue
		}
		emit(ms)
	}
	return nil
}

// Nameservers emits the NS records of a Domain.
type Nameservers struct {
	resolver Resolver
	logger   logx.Logger
}

func NewNameservers(resolver Resolver, logger logx.Logger) *Nameservers {
	return &Nameservers{resolver: resolver, logger: logger}
}

func (n *Nameservers) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	name, ok := nameOf(v)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", NameserversID, v.Kind())
	}
	records, err := n.resolver.LookupNS(ctx, name)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("lookup ns %s: %w", name, err)
	}
	for _, ns := range records {
		srv, err := value.NewNameserver(ns.Host)
		if err != nil {
			n.logger.Debug("skipping ns target", "name", name, "target", ns.Host)
			continue
		}
		emit(srv)
	}
	return nil
}

// Reverse emits the PTR names of an IP as Host values.
type Reverse struct {
	resolver Resolver
	logger   logx.Logger
}

func NewReverse(resolver Resolver, logger logx.Logger) *Reverse {
	return &Reverse{resolver: resolver, logger: logger}
}

func (r *Reverse) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	ip, ok := v.(value.IP)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", ReverseID, v.Kind())
	}
	names, err := r.resolver.LookupAddr(ctx, ip.Addr().String())
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("lookup ptr %s: %w", ip, err)
	}
	for _, name := range names {
		h, err := value.NewHost(name)
		if err != nil {
			r.logger.Debug("skipping ptr name", "ip", ip.String(), "name", name)
			continue
		}
		emit(h)
	}
	return nil
}
