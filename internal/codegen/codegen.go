// Package codegen emits the per-domain interface artifacts from a validated
// registry: a low-level C header and the two halves of the typed
// interface/module pair layered on the runtime library's mantle_* wrappers.
//
// Generation is pure text assembly. It assumes the registry has already
// passed validation; feed it an unvalidated registry and the output is
// unspecified. All iteration goes through the registry's canonical order, so
// output is deterministic for a given registry.
package codegen

import (
	"fmt"
	"strings"

	"github.com/comas/mantletool/internal/registry"
)

// API is the backend's product: three independent sequences of output
// lines. The driver writes each requested sequence newline-joined to the
// file the user asked for.
type API struct {
	CLines         []string
	InterfaceLines []string
	ModuleLines    []string
}

// peerLink is one communication channel as seen from the target: the local
// channel id and the inlet on the far side.
type peerLink struct {
	Name    string
	LocalID int
	Peer    registry.Inlet
	PPCall  bool
}

// irqLink is one interrupt wired to the target.
type irqLink struct {
	IRQ int
	ID  int
}

// Generate produces the API artifacts for one target domain.
func Generate(reg *registry.Registry, target registry.Domain) API {
	links := peerLinks(reg, target)
	irqs := irqLinks(reg, target)
	regions := targetRegions(reg, target)

	return API{
		CLines:         cHeader(target, links, irqs, regions),
		InterfaceLines: interfaceText(target, links, irqs, regions),
		ModuleLines:    moduleText(target, links, irqs, regions),
	}
}

func peerLinks(reg *registry.Registry, target registry.Domain) []peerLink {
	var links []peerLink
	used := make(map[string]int)
	for _, c := range reg.SortedCommChannels() {
		for i, in := range c.Endpoints {
			if in.Domain != target {
				continue
			}
			peer := c.Endpoints[(i+1)%len(c.Endpoints)]
			name := peer.Domain.Name
			// Two channels to the same peer domain need distinct names.
			used[name]++
			if used[name] > 1 {
				name = fmt.Sprintf("%s_%d", name, used[name])
			}
			_, ppc := reg.DomainsProvidingPrivilegedCall[peer.Domain]
			links = append(links, peerLink{
				Name:    name,
				LocalID: in.Number,
				Peer:    peer,
				PPCall:  ppc,
			})
		}
	}
	return links
}

func irqLinks(reg *registry.Registry, target registry.Domain) []irqLink {
	var irqs []irqLink
	for _, ic := range reg.SortedIRQChannels() {
		if ic.Inlet.Domain == target {
			irqs = append(irqs, irqLink{IRQ: ic.IRQ, ID: ic.Inlet.Number})
		}
	}
	return irqs
}

func targetRegions(reg *registry.Registry, target registry.Domain) []registry.MappedMemoryRegion {
	var regions []registry.MappedMemoryRegion
	for _, m := range reg.SortedMappedMemoryRegions() {
		if m.Domain == target {
			regions = append(regions, m)
		}
	}
	return regions
}

func cHeader(target registry.Domain, links []peerLink, irqs []irqLink, regions []registry.MappedMemoryRegion) []string {
	guard := fmt.Sprintf("MANTLE_%s_API_H", strings.ToUpper(target.Name))
	lines := []string{
		fmt.Sprintf("/* Generated interface for protection domain '%s'. Do not edit. */", target.Name),
		"#ifndef " + guard,
		"#define " + guard,
		"",
		"#include <stdint.h>",
	}

	if len(links) > 0 {
		lines = append(lines, "", "/* Communication channel ids */")
		for _, l := range links {
			lines = append(lines, fmt.Sprintf("#define %s_CHANNEL %d",
				strings.ToUpper(l.Name), l.LocalID))
		}
	}

	if len(irqs) > 0 {
		lines = append(lines, "", "/* Interrupt channel ids */")
		for _, irq := range irqs {
			lines = append(lines, fmt.Sprintf("#define IRQ_%d_CHANNEL %d", irq.IRQ, irq.ID))
		}
	}

	if len(regions) > 0 {
		lines = append(lines, "", "/* Mapped memory regions */")
		for _, m := range regions {
			upper := strings.ToUpper(m.Name)
			lines = append(lines,
				fmt.Sprintf("#define %s_VADDR UINT64_C(0x%x)", upper, m.Address),
				fmt.Sprintf("#define %s_SIZE UINT64_C(0x%x)", upper, m.Size))
			if m.PatchSymbol != "" {
				// Definition, not declaration: the build tool patches the
				// symbol's contents with the mapping address.
				lines = append(lines, fmt.Sprintf("uintptr_t %s;", m.PatchSymbol))
			}
		}
	}

	lines = append(lines, "", "#endif /* "+guard+" */")
	return lines
}

func interfaceText(target registry.Domain, links []peerLink, irqs []irqLink, regions []registry.MappedMemoryRegion) []string {
	lines := []string{
		fmt.Sprintf("-- Generated interface for protection domain '%s'. Do not edit.", target.Name),
		"module interface Mantle.Api is",
	}

	for _, l := range links {
		lines = append(lines,
			fmt.Sprintf("    constant channel_%s: Nat8;", l.Name),
			fmt.Sprintf("    function Notify_%s(): Unit;", l.Name))
		if l.PPCall {
			lines = append(lines,
				fmt.Sprintf("    function Call_%s(label: Nat64, count: Nat16): Nat64;", l.Name))
		}
	}
	for _, irq := range irqs {
		lines = append(lines,
			fmt.Sprintf("    constant irq_%d_channel: Nat8;", irq.IRQ),
			fmt.Sprintf("    function Ack_Irq_%d(): Unit;", irq.IRQ))
	}
	for _, m := range regions {
		lines = append(lines,
			fmt.Sprintf("    constant %s_vaddr: Nat64;", m.Name),
			fmt.Sprintf("    constant %s_size: Nat64;", m.Name))
	}

	lines = append(lines, "end module interface.")
	return lines
}

func moduleText(target registry.Domain, links []peerLink, irqs []irqLink, regions []registry.MappedMemoryRegion) []string {
	lines := []string{
		fmt.Sprintf("-- Generated module for protection domain '%s'. Do not edit.", target.Name),
		"module body Mantle.Api is",
	}

	for _, l := range links {
		lines = append(lines,
			fmt.Sprintf("    constant channel_%s: Nat8 := %d;", l.Name, l.LocalID),
			fmt.Sprintf("    function Notify_%s(): Unit is", l.Name),
			fmt.Sprintf("        Mantle.Unsafe.Notify(channel_%s);", l.Name),
			"        return nil;",
			"    end;")
		if l.PPCall {
			lines = append(lines,
				fmt.Sprintf("    function Call_%s(label: Nat64, count: Nat16): Nat64 is", l.Name),
				fmt.Sprintf("        return Mantle.Unsafe.PPCall(channel_%s, label, count);", l.Name),
				"    end;")
		}
	}
	for _, irq := range irqs {
		lines = append(lines,
			fmt.Sprintf("    constant irq_%d_channel: Nat8 := %d;", irq.IRQ, irq.ID),
			fmt.Sprintf("    function Ack_Irq_%d(): Unit is", irq.IRQ),
			fmt.Sprintf("        Mantle.Unsafe.IrqAck(irq_%d_channel);", irq.IRQ),
			"        return nil;",
			"    end;")
	}
	for _, m := range regions {
		lines = append(lines,
			fmt.Sprintf("    constant %s_vaddr: Nat64 := %d;", m.Name, m.Address),
			fmt.Sprintf("    constant %s_size: Nat64 := %d;", m.Name, m.Size))
	}

	lines = append(lines, "end module body.")
	return lines
}
