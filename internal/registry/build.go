package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/comas/mantletool/internal/ctxlog"
	"github.com/comas/mantletool/internal/sysdesc"
)

// FromSystem reshapes a parsed system description into a Registry. It only
// rearranges data; every cross-entity check belongs to the validation
// package, which callers are expected to run on the result before using it.
//
// inputLabel names the source for provenance; diagnostics render it as
// "parsed from <label>".
func FromSystem(ctx context.Context, sys *sysdesc.SystemDescription, inputLabel string) *Registry {
	logger := ctxlog.FromContext(ctx)

	r := newRegistry(fmt.Sprintf("parsed from %s", inputLabel))

	regionSizes := make(map[string]uint64, len(sys.MemoryRegions))
	for _, mr := range sys.MemoryRegions {
		regionSizes[mr.Name] = mr.Size
	}

	for _, sysPD := range sys.ProtectionDomains {
		domain := Domain{Name: sysPD.Name}
		r.Domains[domain] = struct{}{}
		r.PriorityByDomain[domain] = sysPD.Priority
		if sysPD.PP {
			r.DomainsProvidingPrivilegedCall[domain] = struct{}{}
		}

		for _, sysIRQ := range sysPD.IRQs {
			inlet := Inlet{Domain: domain, Number: sysIRQ.ID}
			r.Inlets[inlet] = struct{}{}
			r.IRQChannels[IRQChannel{IRQ: sysIRQ.IRQ, Inlet: inlet}] = struct{}{}
		}

		for _, sysMap := range sysPD.Maps {
			size, declared := regionSizes[sysMap.MR]
			if !declared {
				// A map naming an undeclared region is dropped, not
				// flagged. Logged so the asymmetry is at least visible.
				logger.Debug("Dropping map of undeclared memory region.",
					"protection_domain", sysPD.Name, "mr", sysMap.MR)
				continue
			}
			r.MappedMemoryRegions[MappedMemoryRegion{
				Name:        sysMap.MR,
				Domain:      domain,
				Address:     sysMap.VAddr,
				Size:        size,
				Writable:    strings.Contains(sysMap.Perms, "w"),
				PatchSymbol: sysMap.SetVarVAddr,
			}] = struct{}{}
		}
	}

	for _, sysChannel := range sys.Channels {
		endpoints := make([]Inlet, 0, len(sysChannel.Ends))
		for _, end := range sysChannel.Ends {
			// The Domain here is built from the raw name on purpose: if it
			// matches no declared protection_domain, the inlet dangles and
			// the validator reports it.
			endpoints = append(endpoints, Inlet{
				Domain: Domain{Name: end.Domain},
				Number: end.ID,
			})
		}
		channel := NewCommChannel(endpoints...)
		for _, in := range channel.Endpoints {
			r.Inlets[in] = struct{}{}
		}
		r.CommChannels[channel.Key()] = channel
	}

	return r
}
