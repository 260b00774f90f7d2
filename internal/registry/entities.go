package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Domain identifies a protection domain by name. Whether the name is legal
// is a validation concern, not a construction-time one.
type Domain struct {
	Name string
}

// Inlet identifies a point of entry into a protection domain: the local
// channel id at which the domain receives a notification. A channel between
// domains P and Q may use a different id on each side; an Inlet names one
// side unambiguously.
type Inlet struct {
	Domain Domain
	Number int
}

func (i Inlet) String() string {
	return fmt.Sprintf("('%s', %d)", i.Domain.Name, i.Number)
}

// IRQChannel wires a hardware interrupt number to the inlet it notifies.
type IRQChannel struct {
	IRQ   int
	Inlet Inlet
}

// MappedMemoryRegion is one placement of a named memory region into one
// domain's address space at a fixed virtual address. The same region name
// may be mapped into several domains, as distinct entities. PatchSymbol, if
// non-empty, names the link-time symbol to be overwritten with Address.
type MappedMemoryRegion struct {
	Name        string
	Domain      Domain
	Address     uint64
	Size        uint64
	Writable    bool
	PatchSymbol string
}

// CommChannel is a bidirectional pairing of inlets. The endpoints form an
// unordered set, intended to have exactly two members; malformed input can
// produce fewer or more, which the validator reports rather than the
// constructor.
type CommChannel struct {
	// Endpoints is kept sorted and deduplicated by NewCommChannel so that
	// channels compare structurally regardless of declaration order.
	Endpoints []Inlet
}

// NewCommChannel builds a channel from its endpoints, normalizing them into
// the canonical sorted order and discarding exact duplicates.
func NewCommChannel(endpoints ...Inlet) CommChannel {
	sorted := make([]Inlet, len(endpoints))
	copy(sorted, endpoints)
	sort.Slice(sorted, func(i, j int) bool {
		return lessInlet(sorted[i], sorted[j])
	})
	deduped := sorted[:0]
	for i, in := range sorted {
		if i > 0 && in == sorted[i-1] {
			continue
		}
		deduped = append(deduped, in)
	}
	return CommChannel{Endpoints: deduped}
}

// Key returns a canonical rendering of the endpoint set, used both as the
// channel's set-membership key and in diagnostics.
func (c CommChannel) Key() string {
	parts := make([]string, len(c.Endpoints))
	for i, in := range c.Endpoints {
		parts[i] = in.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Contains reports whether inlet is one of the channel's endpoints.
func (c CommChannel) Contains(inlet Inlet) bool {
	for _, in := range c.Endpoints {
		if in == inlet {
			return true
		}
	}
	return false
}

// Equal reports structural equality of the endpoint sets.
func (c CommChannel) Equal(other CommChannel) bool {
	if len(c.Endpoints) != len(other.Endpoints) {
		return false
	}
	for i, in := range c.Endpoints {
		if in != other.Endpoints[i] {
			return false
		}
	}
	return true
}

func lessInlet(a, b Inlet) bool {
	if a.Domain.Name != b.Domain.Name {
		return a.Domain.Name < b.Domain.Name
	}
	return a.Number < b.Number
}
