// Package builtin wires every compiled-in worker into a registry.
package builtin

import (
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
	"reconweave/internal/workers/dns"
	"reconweave/internal/workers/netw"
	"reconweave/internal/workers/web"
)

// Register adds all builtin workers to reg.
func Register(reg *registry.WorkerRegistry) {
	dns.Register(reg)
	netw.Register(reg)
	web.Register(reg)
}

// NewRegistry returns a registry holding the builtin workers.
func NewRegistry(logger logx.Logger) *registry.WorkerRegistry {
	reg := registry.New(logger)
	Register(reg)
	return reg
}
