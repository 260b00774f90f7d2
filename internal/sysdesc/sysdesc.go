package sysdesc

import "fmt"

// Loc points at an element in a source document. Columns are zero-based byte
// offsets within the line, matching what expat-style parsers report.
type Loc struct {
	Path string
	Line int
	Col  int
}

func (l Loc) String() string {
	return fmt.Sprintf("%s:%d.%d", l.Path, l.Line, l.Col)
}

// StructuralError reports a document that cannot be turned into a system
// model at all: malformed markup, unknown elements or attributes, bad
// literals, cardinality limits. Structural errors are always fatal and
// parsing stops at the first one.
type StructuralError struct {
	Message string
	Loc     *Loc
}

func (e *StructuralError) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s @ %s", e.Message, e.Loc)
	}
	return e.Message
}

// Map is one declared mapping of a named memory region into the declaring
// protection domain's address space.
type Map struct {
	MR          string
	VAddr       uint64
	Perms       string
	Cached      bool
	SetVarVAddr string
	Loc         Loc
}

// IRQ wires a hardware interrupt number to a channel id local to the
// declaring protection domain.
type IRQ struct {
	IRQ int
	ID  int
	Loc Loc
}

// SetVar declares a link-time symbol to be overwritten with an address.
// Either VAddr is set (for symbols declared through a map's setvar_vaddr) or
// RegionPAddr names a region whose physical address is patched in.
type SetVar struct {
	Symbol      string
	RegionPAddr string
	VAddr       uint64
	HasVAddr    bool
	Loc         Loc
}

// ProtectionDomain is one declared protection domain with its scheduling
// parameters and child declarations.
type ProtectionDomain struct {
	Name     string
	Priority int
	Budget   int
	Period   int
	PP       bool
	Maps     []Map
	IRQs     []IRQ
	SetVars  []SetVar
	Loc      Loc
}

// MemoryRegion is one declared memory region. PageCount is pre-resolved to
// Size / PageSize; both divisibility and page-size membership are checked
// during parsing.
type MemoryRegion struct {
	Name        string
	Size        uint64
	PageSize    uint64
	PageCount   uint64
	PhysAddr    uint64
	HasPhysAddr bool
	Loc         Loc
}

// ChannelEnd names a protection domain and a channel id local to it.
type ChannelEnd struct {
	Domain string
	ID     int
	Loc    Loc
}

// Channel is one declared channel: a list of ends, normally exactly two.
// Arity is a validity condition checked later, not a parse error.
type Channel struct {
	Ends []ChannelEnd
	Loc  Loc
}

// SystemDescription is the intermediate tree produced by parsing one SDF
// document. It is consumed once, by registry.FromSystem, and discarded.
type SystemDescription struct {
	MemoryRegions     []MemoryRegion
	ProtectionDomains []ProtectionDomain
	Channels          []Channel
}
