package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the canonical, queryable model of an entire system
// description. It is assembled once by FromSystem and never mutated
// afterwards; rebuilding is always "construct anew".
type Registry struct {
	// Description is a one-line provenance string, carried into every
	// diagnostic so errors name the resource they came from.
	Description string

	Domains                        map[Domain]struct{}
	DomainsProvidingPrivilegedCall map[Domain]struct{}
	Inlets                         map[Inlet]struct{}
	// CommChannels is keyed by CommChannel.Key, which is canonical, so two
	// declarations of the same endpoint pair collapse into one entity.
	CommChannels        map[string]CommChannel
	IRQChannels         map[IRQChannel]struct{}
	MappedMemoryRegions map[MappedMemoryRegion]struct{}
	PriorityByDomain    map[Domain]int
}

func newRegistry(description string) *Registry {
	return &Registry{
		Description:                    description,
		Domains:                        make(map[Domain]struct{}),
		DomainsProvidingPrivilegedCall: make(map[Domain]struct{}),
		Inlets:                         make(map[Inlet]struct{}),
		CommChannels:                   make(map[string]CommChannel),
		IRQChannels:                    make(map[IRQChannel]struct{}),
		MappedMemoryRegions:            make(map[MappedMemoryRegion]struct{}),
		PriorityByDomain:               make(map[Domain]int),
	}
}

// HasDomain reports whether d is a member of the registry's domain set.
func (r *Registry) HasDomain(d Domain) bool {
	_, ok := r.Domains[d]
	return ok
}

// HasInlet reports whether i is a member of the registry's inlet set.
func (r *Registry) HasInlet(i Inlet) bool {
	_, ok := r.Inlets[i]
	return ok
}

// The sorted accessors below define the registry's canonical iteration
// order. Go map iteration is randomized, so every consumer that produces
// user-visible output (the validator's diagnostic list, the backend's
// emitted text) iterates through these to stay deterministic run-to-run.

// SortedDomains returns the domains ordered by name.
func (r *Registry) SortedDomains() []Domain {
	out := make([]Domain, 0, len(r.Domains))
	for d := range r.Domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DomainNames returns the names of all domains, sorted.
func (r *Registry) DomainNames() []string {
	names := make([]string, 0, len(r.Domains))
	for d := range r.Domains {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// SortedInlets returns the inlets ordered by domain name, then number.
func (r *Registry) SortedInlets() []Inlet {
	out := make([]Inlet, 0, len(r.Inlets))
	for i := range r.Inlets {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return lessInlet(out[i], out[j]) })
	return out
}

// SortedCommChannels returns the channels ordered by their canonical keys.
func (r *Registry) SortedCommChannels() []CommChannel {
	keys := make([]string, 0, len(r.CommChannels))
	for k := range r.CommChannels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]CommChannel, len(keys))
	for i, k := range keys {
		out[i] = r.CommChannels[k]
	}
	return out
}

// SortedIRQChannels returns the IRQ channels ordered by interrupt number,
// then inlet.
func (r *Registry) SortedIRQChannels() []IRQChannel {
	out := make([]IRQChannel, 0, len(r.IRQChannels))
	for ic := range r.IRQChannels {
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IRQ != out[j].IRQ {
			return out[i].IRQ < out[j].IRQ
		}
		return lessInlet(out[i].Inlet, out[j].Inlet)
	})
	return out
}

// SortedMappedMemoryRegions returns the mappings ordered by domain name,
// region name, then address.
func (r *Registry) SortedMappedMemoryRegions() []MappedMemoryRegion {
	out := make([]MappedMemoryRegion, 0, len(r.MappedMemoryRegions))
	for m := range r.MappedMemoryRegions {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Domain.Name != b.Domain.Name {
			return a.Domain.Name < b.Domain.Name
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Address < b.Address
	})
	return out
}

// DebugString renders the registry's contents in canonical order, one
// entity class per line. Intended for debug logging and test failures.
func (r *Registry) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PDs:     %v\n", r.DomainNames())

	ppc := make([]string, 0, len(r.DomainsProvidingPrivilegedCall))
	for d := range r.DomainsProvidingPrivilegedCall {
		ppc = append(ppc, d.Name)
	}
	sort.Strings(ppc)
	fmt.Fprintf(&b, "PDs ppc: %v\n", ppc)

	fmt.Fprintf(&b, "Inlets:  %v\n", r.SortedInlets())

	chans := make([]string, 0, len(r.CommChannels))
	for k := range r.CommChannels {
		chans = append(chans, k)
	}
	sort.Strings(chans)
	fmt.Fprintf(&b, "commch:  %v\n", chans)

	fmt.Fprintf(&b, "irqch:   %v\n", r.SortedIRQChannels())

	mmrs := make([]string, 0, len(r.MappedMemoryRegions))
	for _, m := range r.SortedMappedMemoryRegions() {
		mmrs = append(mmrs, fmt.Sprintf("(%s, %s)", m.Domain.Name, m.Name))
	}
	fmt.Fprintf(&b, "mmrs:    %v\n", mmrs)
	return b.String()
}
