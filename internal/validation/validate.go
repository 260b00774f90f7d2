package validation

import (
	"github.com/comas/mantletool/internal/registry"
)

// Validate runs every rule family against the registry and returns all
// violations found, in the registry's canonical order. An empty result means
// the registry is valid.
//
// The rule families are independent of each other:
//
//  1. protection domain and memory region names (and patch symbols) use only
//     supported identifier characters;
//  2. every protection domain has a priority in the supported range;
//  3. every inlet references a defined protection domain and a number in
//     0..63;
//  4. every communication channel has exactly two endpoints;
//  5. every communication channel endpoint is a defined inlet;
//  6. no inlet serves more than one communication channel;
//  7. every IRQ channel targets a defined inlet;
//  8. no interrupt number backs more than one IRQ channel;
//  9. no inlet is shared between a communication channel and an IRQ channel.
//
// Overlapping memory regions are deliberately not checked here: the system
// build tool reports those, and they do not affect interface generation.
func Validate(reg *registry.Registry) []Diagnostic {
	var all []Diagnostic

	// 1. name charset
	for _, d := range reg.SortedDomains() {
		if chars := NameViolations(d.Name); len(chars) > 0 {
			all = append(all, InvalidDomainName{Registry: reg, Domain: d, InvalidChars: chars})
		}
	}
	for _, m := range reg.SortedMappedMemoryRegions() {
		if chars := NameViolations(m.Name); len(chars) > 0 {
			all = append(all, InvalidMemoryRegionName{Registry: reg, Region: m, InvalidChars: chars})
		}
		if m.PatchSymbol != "" {
			if chars := NameViolations(m.PatchSymbol); len(chars) > 0 {
				all = append(all, InvalidMemoryRegionPatchSymbol{
					Registry:     reg,
					Domain:       m.Domain,
					Region:       m,
					InvalidChars: chars,
				})
			}
		}
	}

	// 2. priority range. A missing entry reads as zero, and zero itself is
	// rejected: it doubles as the unset default, so a domain that wants the
	// lowest priority cannot ask for it explicitly.
	for _, d := range reg.SortedDomains() {
		if p := reg.PriorityByDomain[d]; p <= 0 || p > 254 {
			all = append(all, InvalidDomainPriority{Registry: reg, Domain: d})
		}
	}

	// 3. inlet validity
	for _, in := range reg.SortedInlets() {
		if !reg.HasDomain(in.Domain) {
			all = append(all, InvalidInletDomain{Registry: reg, Inlet: in})
		}
	}
	for _, in := range reg.SortedInlets() {
		if in.Number < 0 || in.Number > 63 {
			all = append(all, InvalidInletNumber{Registry: reg, Inlet: in})
		}
	}

	// 4. comm channel arity
	channels := reg.SortedCommChannels()
	for _, c := range channels {
		if len(c.Endpoints) != 2 {
			all = append(all, InvalidCommChannelCount{Registry: reg, Channel: c})
		}
	}

	// 5./6. comm channel endpoint existence and exclusivity
	for _, c := range channels {
		for _, in := range c.Endpoints {
			if !reg.HasInlet(in) {
				all = append(all, InvalidCommChannelInlet{Registry: reg, Channel: c, Inlet: in})
			}
		}
		for _, in := range c.Endpoints {
			for _, other := range channels {
				if other.Equal(c) || !other.Contains(in) {
					continue
				}
				all = append(all, InvalidCommChannelDuplicate{Registry: reg, Channel: c, Inlet: in})
				break
			}
		}
	}

	// 7. IRQ channel endpoint existence
	irqChannels := reg.SortedIRQChannels()
	for _, ic := range irqChannels {
		if !reg.HasInlet(ic.Inlet) {
			all = append(all, InvalidIRQChannelInlet{Registry: reg, Channel: ic})
		}
	}

	// 8. IRQ uniqueness
	for _, ic := range irqChannels {
		for _, other := range irqChannels {
			if other != ic && other.IRQ == ic.IRQ {
				all = append(all, InvalidIRQChannelDuplicate{Registry: reg, Channel: ic})
				break
			}
		}
	}

	// 9. comm/IRQ disjointness
	for _, ic := range irqChannels {
		for _, c := range channels {
			if c.Contains(ic.Inlet) {
				all = append(all, InvalidCommAndIRQClash{Registry: reg, CommChannel: c, IRQChannel: ic})
			}
		}
	}

	return all
}
