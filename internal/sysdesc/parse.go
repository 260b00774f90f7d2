package sysdesc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/comas/mantletool/internal/ctxlog"
	"github.com/comas/mantletool/internal/platform"
)

// maxProtectionDomains is the cap imposed by the kernel's badge space.
const maxProtectionDomains = 63

// Parse reads and parses the SDF document at path. The document handle is
// opened, fully read and closed before any parsing begins, on every path.
func Parse(ctx context.Context, path string, plat platform.Description) (*SystemDescription, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &StructuralError{Message: fmt.Sprintf("could not read system description: %v", err)}
	}
	return ParseBytes(ctx, src, path, plat)
}

// ParseBytes parses an in-memory SDF document. path appears only in the
// locations attached to the produced tree and its errors.
func ParseBytes(ctx context.Context, src []byte, path string, plat platform.Description) (*SystemDescription, error) {
	logger := ctxlog.FromContext(ctx)

	dp := &docParser{path: path, plat: plat, lineStarts: indexLines(src)}
	root, terr := dp.tree(src)
	if terr != nil {
		return nil, terr
	}
	sys, serr := dp.system(root)
	if serr != nil {
		return nil, serr
	}

	logger.Debug("Parsed system description.",
		"path", path,
		"memory_regions", len(sys.MemoryRegions),
		"protection_domains", len(sys.ProtectionDomains),
		"channels", len(sys.Channels))
	return sys, nil
}

// element is one node of the raw document tree, before any typing.
type element struct {
	name     string
	attrs    map[string]string
	loc      Loc
	children []*element
}

type docParser struct {
	path       string
	plat       platform.Description
	lineStarts []int
}

// tree tokenizes the document into a raw element tree, rejecting any
// non-whitespace text along the way. The SDF format is attribute-only.
func (p *docParser) tree(src []byte) (*element, *StructuralError) {
	dec := xml.NewDecoder(bytes.NewReader(src))
	var root *element
	var stack []*element

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			loc := p.locAt(off)
			if syn, ok := err.(*xml.SyntaxError); ok {
				loc = Loc{Path: p.path, Line: syn.Line}
			}
			return nil, &StructuralError{Message: fmt.Sprintf("XML parsing error: %v", err), Loc: &loc}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:  t.Name.Local,
				attrs: make(map[string]string, len(t.Attr)),
				loc:   p.locAt(off),
			}
			for _, a := range t.Attr {
				if _, dup := el.attrs[a.Name.Local]; dup {
					return nil, &StructuralError{
						Message: fmt.Sprintf("duplicate attribute '%s' on element '%s'", a.Name.Local, el.name),
						Loc:     &el.loc,
					}
				}
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &StructuralError{
						Message: fmt.Sprintf("unexpected element '%s' after the document element", el.name),
						Loc:     &el.loc,
					}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				loc := p.locAt(off)
				in := "document"
				if len(stack) > 0 {
					in = stack[len(stack)-1].name
				}
				return nil, &StructuralError{Message: fmt.Sprintf("unexpected text found in element '%s'", in), Loc: &loc}
			}
		}
	}

	if root == nil {
		loc := Loc{Path: p.path, Line: 1}
		return nil, &StructuralError{Message: "document contains no elements", Loc: &loc}
	}
	return root, nil
}

// system types the raw tree into the intermediate SystemDescription.
func (p *docParser) system(root *element) (*SystemDescription, *StructuralError) {
	sys := &SystemDescription{}
	seenPDs := make(map[string]bool)
	seenMRs := make(map[string]bool)

	for _, child := range root.children {
		switch child.name {
		case "memory_region":
			mr, err := p.memoryRegion(child)
			if err != nil {
				return nil, err
			}
			if seenMRs[mr.Name] {
				return nil, p.errAt(child, "memory region '%s' defined multiple times", mr.Name)
			}
			seenMRs[mr.Name] = true
			sys.MemoryRegions = append(sys.MemoryRegions, mr)
		case "protection_domain":
			pd, err := p.protectionDomain(child)
			if err != nil {
				return nil, err
			}
			if seenPDs[pd.Name] {
				return nil, p.errAt(child, "protection domain '%s' defined multiple times", pd.Name)
			}
			seenPDs[pd.Name] = true
			sys.ProtectionDomains = append(sys.ProtectionDomains, pd)
		case "channel":
			ch, err := p.channel(child)
			if err != nil {
				return nil, err
			}
			sys.Channels = append(sys.Channels, ch)
		default:
			return nil, p.errAt(child, "invalid element '%s'", child.name)
		}
	}

	if n := len(sys.ProtectionDomains); n > maxProtectionDomains {
		return nil, p.errAt(root, "too many protection domains (%d) defined, the maximum is %d", n, maxProtectionDomains)
	}
	return sys, nil
}

func (p *docParser) memoryRegion(el *element) (MemoryRegion, *StructuralError) {
	if err := p.checkAttrs(el, "name", "size", "page_size", "phys_addr"); err != nil {
		return MemoryRegion{}, err
	}
	if len(el.children) > 0 {
		child := el.children[0]
		return MemoryRegion{}, p.errAt(child, "invalid element '%s'", child.name)
	}

	name, err := p.requiredAttr(el, "name")
	if err != nil {
		return MemoryRegion{}, err
	}
	sizeRaw, err := p.requiredAttr(el, "size")
	if err != nil {
		return MemoryRegion{}, err
	}
	size, err := p.parseUint(el, "size", sizeRaw)
	if err != nil {
		return MemoryRegion{}, err
	}

	pageSize := p.plat.SmallestPageSize()
	if raw, ok := el.attrs["page_size"]; ok {
		if pageSize, err = p.parseUint(el, "page_size", raw); err != nil {
			return MemoryRegion{}, err
		}
	}
	if !p.plat.SupportsPageSize(pageSize) {
		return MemoryRegion{}, p.errAt(el, "page size 0x%x is not supported by the platform", pageSize)
	}
	if size%pageSize != 0 {
		return MemoryRegion{}, p.errAt(el, "size is not a multiple of the page size")
	}

	var physAddr uint64
	var hasPhysAddr bool
	if raw, ok := el.attrs["phys_addr"]; ok {
		if physAddr, err = p.parseUint(el, "phys_addr", raw); err != nil {
			return MemoryRegion{}, err
		}
		hasPhysAddr = true
		if physAddr%pageSize != 0 {
			return MemoryRegion{}, p.errAt(el, "phys_addr is not aligned to the page size")
		}
	}

	return MemoryRegion{
		Name:        name,
		Size:        size,
		PageSize:    pageSize,
		PageCount:   size / pageSize,
		PhysAddr:    physAddr,
		HasPhysAddr: hasPhysAddr,
		Loc:         el.loc,
	}, nil
}

func (p *docParser) protectionDomain(el *element) (ProtectionDomain, *StructuralError) {
	if err := p.checkAttrs(el, "name", "priority", "pp", "budget", "period"); err != nil {
		return ProtectionDomain{}, err
	}

	name, err := p.requiredAttr(el, "name")
	if err != nil {
		return ProtectionDomain{}, err
	}

	priority := 0
	if raw, ok := el.attrs["priority"]; ok {
		if priority, err = p.parseInt(el, "priority", raw); err != nil {
			return ProtectionDomain{}, err
		}
	}
	budget := 1000
	if raw, ok := el.attrs["budget"]; ok {
		if budget, err = p.parseInt(el, "budget", raw); err != nil {
			return ProtectionDomain{}, err
		}
	}
	period := budget
	if raw, ok := el.attrs["period"]; ok {
		if period, err = p.parseInt(el, "period", raw); err != nil {
			return ProtectionDomain{}, err
		}
	}
	pp := false
	if raw, ok := el.attrs["pp"]; ok {
		if pp, err = p.parseBool(el, "pp", raw); err != nil {
			return ProtectionDomain{}, err
		}
	}

	pd := ProtectionDomain{
		Name:     name,
		Priority: priority,
		Budget:   budget,
		Period:   period,
		PP:       pp,
		Loc:      el.loc,
	}

	for _, child := range el.children {
		switch child.name {
		case "program_image":
			// Binary path, irrelevant to interface generation.
		case "map":
			if err := p.checkAttrs(child, "mr", "vaddr", "perms", "cached", "setvar_vaddr"); err != nil {
				return ProtectionDomain{}, err
			}
			mr, err := p.requiredAttr(child, "mr")
			if err != nil {
				return ProtectionDomain{}, err
			}
			vaddrRaw, err := p.requiredAttr(child, "vaddr")
			if err != nil {
				return ProtectionDomain{}, err
			}
			vaddr, err := p.parseUint(child, "vaddr", vaddrRaw)
			if err != nil {
				return ProtectionDomain{}, err
			}
			perms := "rw"
			if raw, ok := child.attrs["perms"]; ok {
				perms = raw
			}
			cached := true
			if raw, ok := child.attrs["cached"]; ok {
				if cached, err = p.parseBool(child, "cached", raw); err != nil {
					return ProtectionDomain{}, err
				}
			}
			setvarVAddr := child.attrs["setvar_vaddr"]
			if setvarVAddr != "" {
				pd.SetVars = append(pd.SetVars, SetVar{
					Symbol:   setvarVAddr,
					VAddr:    vaddr,
					HasVAddr: true,
					Loc:      child.loc,
				})
			}
			pd.Maps = append(pd.Maps, Map{
				MR:          mr,
				VAddr:       vaddr,
				Perms:       perms,
				Cached:      cached,
				SetVarVAddr: setvarVAddr,
				Loc:         child.loc,
			})
		case "irq":
			if err := p.checkAttrs(child, "irq", "id"); err != nil {
				return ProtectionDomain{}, err
			}
			irqRaw, err := p.requiredAttr(child, "irq")
			if err != nil {
				return ProtectionDomain{}, err
			}
			irq, err := p.parseInt(child, "irq", irqRaw)
			if err != nil {
				return ProtectionDomain{}, err
			}
			idRaw, err := p.requiredAttr(child, "id")
			if err != nil {
				return ProtectionDomain{}, err
			}
			id, err := p.parseInt(child, "id", idRaw)
			if err != nil {
				return ProtectionDomain{}, err
			}
			pd.IRQs = append(pd.IRQs, IRQ{IRQ: irq, ID: id, Loc: child.loc})
		case "setvar":
			if err := p.checkAttrs(child, "symbol", "region_paddr"); err != nil {
				return ProtectionDomain{}, err
			}
			symbol, err := p.requiredAttr(child, "symbol")
			if err != nil {
				return ProtectionDomain{}, err
			}
			regionPAddr, err := p.requiredAttr(child, "region_paddr")
			if err != nil {
				return ProtectionDomain{}, err
			}
			pd.SetVars = append(pd.SetVars, SetVar{
				Symbol:      symbol,
				RegionPAddr: regionPAddr,
				Loc:         child.loc,
			})
		default:
			return ProtectionDomain{}, p.errAt(child, "invalid element '%s'", child.name)
		}
	}

	return pd, nil
}

func (p *docParser) channel(el *element) (Channel, *StructuralError) {
	if err := p.checkAttrs(el); err != nil {
		return Channel{}, err
	}

	ch := Channel{Loc: el.loc}
	for _, child := range el.children {
		if child.name != "end" {
			return Channel{}, p.errAt(child, "invalid element '%s'", child.name)
		}
		if err := p.checkAttrs(child, "pd", "id"); err != nil {
			return Channel{}, err
		}
		pd, err := p.requiredAttr(child, "pd")
		if err != nil {
			return Channel{}, err
		}
		idRaw, err := p.requiredAttr(child, "id")
		if err != nil {
			return Channel{}, err
		}
		id, err := p.parseInt(child, "id", idRaw)
		if err != nil {
			return Channel{}, err
		}
		ch.Ends = append(ch.Ends, ChannelEnd{Domain: pd, ID: id, Loc: child.loc})
	}
	return ch, nil
}

func (p *docParser) errAt(el *element, format string, args ...any) *StructuralError {
	loc := el.loc
	return &StructuralError{Message: fmt.Sprintf(format, args...), Loc: &loc}
}

// checkAttrs rejects attributes outside the valid set. Attribute names are
// visited in sorted order so the reported offender is deterministic.
func (p *docParser) checkAttrs(el *element, valid ...string) *StructuralError {
	names := make([]string, 0, len(el.attrs))
	for name := range el.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		known := false
		for _, v := range valid {
			if name == v {
				known = true
				break
			}
		}
		if !known {
			return p.errAt(el, "invalid attribute '%s' on element '%s'", name, el.name)
		}
	}
	return nil
}

func (p *docParser) requiredAttr(el *element, name string) (string, *StructuralError) {
	v, ok := el.attrs[name]
	if !ok {
		return "", p.errAt(el, "missing required attribute '%s' on element '%s'", name, el.name)
	}
	return v, nil
}

// parseUint parses raw under the conventional prefixes: 0x hexadecimal,
// 0 octal, decimal otherwise.
func (p *docParser) parseUint(el *element, attr, raw string) (uint64, *StructuralError) {
	v, err := strconv.ParseUint(raw, 0, 64)
	if err != nil {
		return 0, p.errAt(el, "attribute '%s' on element '%s' is not a valid number: '%s'", attr, el.name, raw)
	}
	return v, nil
}

// parseInt is parseUint for values whose valid range is checked later by the
// validator, so out-of-range negatives must survive parsing.
func (p *docParser) parseInt(el *element, attr, raw string) (int, *StructuralError) {
	v, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return 0, p.errAt(el, "attribute '%s' on element '%s' is not a valid number: '%s'", attr, el.name, raw)
	}
	return int(v), nil
}

func (p *docParser) parseBool(el *element, attr, raw string) (bool, *StructuralError) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, p.errAt(el, "attribute '%s' on element '%s' is not a valid boolean: '%s'", attr, el.name, raw)
}

func indexLines(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (p *docParser) locAt(off int64) Loc {
	i := sort.Search(len(p.lineStarts), func(i int) bool {
		return p.lineStarts[i] > int(off)
	}) - 1
	return Loc{Path: p.path, Line: i + 1, Col: int(off) - p.lineStarts[i]}
}
