package netw

import (
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
)

const (
	ApexID        = "net/apex"
	IPRangeEnumID = "net/ip_range_enum"
)

const defaultMaxHosts = 65536

// Register adds the net workers to reg.
func Register(reg *registry.WorkerRegistry) {
	reg.MustRegister(ports.WorkerSpec{
		ID:          ApexID,
		Description: "Registrable domain (eTLD+1) of hosts, nameservers and mailservers",
		Accepts:     []value.Kind{value.KindHost, value.KindNameserver, value.KindMailserver},
		Outputs:     []value.Kind{value.KindDomain},
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		return NewApex(registry.BoolParam(cfg.Params, "icann_only", false), logger), nil
	})

	reg.MustRegister(ports.WorkerSpec{
		ID:          IPRangeEnumID,
		Description: "Enumerate the addresses of an IP range",
		Accepts:     []value.Kind{value.KindIPRange},
		Outputs:     []value.Kind{value.KindIP},
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		maxHosts := registry.IntParam(cfg.Params, "max_hosts", defaultMaxHosts)
		if err := registry.ValidatePositiveInt("max_hosts", maxHosts); err != nil {
			return nil, err
		}
		return NewIPRangeEnum(maxHosts, registry.BoolParam(cfg.Params, "truncate", false), logger), nil
	})
}
