package validation

import (
	"fmt"
	"strings"

	"github.com/comas/mantletool/internal/registry"
	"github.com/comas/mantletool/internal/suggest"
)

// Diagnostic is one validation finding. Short renders a one-line summary;
// Detail adds a description of the problem, a remediation hint where one is
// plausible, and the registry's provenance. The union is closed: every
// implementation lives in this package, so a switch over the concrete types
// can be kept exhaustive when a new rule is added.
type Diagnostic interface {
	Short() string
	Detail() string

	isDiagnostic()
}

// render assembles the common detail layout.
func render(short, description, hint, provenance string) string {
	return fmt.Sprintf("[ERROR] %s\n\n%s\n%s\nLocation: %s\n", short, description, hint, provenance)
}

// quoteList renders names the way hints show them: ['a', 'bb'].
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func nameSuggestionHint(reg *registry.Registry, invalidName string) string {
	candidates := suggest.ByLength(invalidName, reg.DomainNames(), 3)
	return fmt.Sprintf("Hint: Did you mean one of %s?", quoteList(candidates))
}

const nameCharsetHint = "Hint: You can use letters of the English alphabet, numbers and underscores. Start with a letter."

// InvalidDomainName reports a protection domain whose name contains
// characters that generated identifiers cannot carry.
type InvalidDomainName struct {
	Registry     *registry.Registry
	Domain       registry.Domain
	InvalidChars []string
}

func (d InvalidDomainName) isDiagnostic() {}

func (d InvalidDomainName) Short() string {
	return fmt.Sprintf("Protection domain has invalid name: '%s'.", d.Domain.Name)
}

func (d InvalidDomainName) Detail() string {
	desc := fmt.Sprintf("The name of this protection domain contains some characters (%s) that are not supported.", quoteList(d.InvalidChars))
	return render(d.Short(), desc, nameCharsetHint, d.Registry.Description)
}

// InvalidMemoryRegionName reports a mapped memory region whose name contains
// unsupported characters.
type InvalidMemoryRegionName struct {
	Registry     *registry.Registry
	Region       registry.MappedMemoryRegion
	InvalidChars []string
}

func (d InvalidMemoryRegionName) isDiagnostic() {}

func (d InvalidMemoryRegionName) Short() string {
	return fmt.Sprintf("Mapped memory region has invalid name: '%s'.", d.Region.Name)
}

func (d InvalidMemoryRegionName) Detail() string {
	desc := fmt.Sprintf("The name of this memory region contains some characters (%s) that are not supported.", quoteList(d.InvalidChars))
	return render(d.Short(), desc, nameCharsetHint, d.Registry.Description)
}

// InvalidMemoryRegionPatchSymbol reports a mapping whose setvar_vaddr symbol
// contains unsupported characters.
type InvalidMemoryRegionPatchSymbol struct {
	Registry     *registry.Registry
	Domain       registry.Domain
	Region       registry.MappedMemoryRegion
	InvalidChars []string
}

func (d InvalidMemoryRegionPatchSymbol) isDiagnostic() {}

func (d InvalidMemoryRegionPatchSymbol) Short() string {
	return fmt.Sprintf("Mapped memory region has invalid patch symbol: '%s' in '%s'.", d.Region.PatchSymbol, d.Domain.Name)
}

func (d InvalidMemoryRegionPatchSymbol) Detail() string {
	desc := fmt.Sprintf("The setvar_vaddr of this memory region contains characters (%s) that are not supported.", quoteList(d.InvalidChars))
	return render(d.Short(), desc, nameCharsetHint, d.Registry.Description)
}

// InvalidDomainPriority reports a protection domain with no usable priority
// setting: absent, zero, or outside the supported range.
type InvalidDomainPriority struct {
	Registry *registry.Registry
	Domain   registry.Domain
}

func (d InvalidDomainPriority) isDiagnostic() {}

func (d InvalidDomainPriority) Short() string {
	return fmt.Sprintf("Protection domain has invalid priority: '%s'.", d.Domain.Name)
}

func (d InvalidDomainPriority) Detail() string {
	desc := "This protection domain has its priority set to a value that is not supported."
	hint := "Hint: Set the priority using 'priority=' to a value in the range 0..254 (inclusive)."
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidInletDomain reports an inlet whose protection domain is not a
// member of the registry, e.g. a channel end naming a domain that was never
// declared.
type InvalidInletDomain struct {
	Registry *registry.Registry
	Inlet    registry.Inlet
}

func (d InvalidInletDomain) isDiagnostic() {}

func (d InvalidInletDomain) Short() string {
	return fmt.Sprintf("Inlet's protection domain does not exist: %s.", d.Inlet)
}

func (d InvalidInletDomain) Detail() string {
	desc := "The protection domain of this inlet has not been defined in this registry."
	hint := nameSuggestionHint(d.Registry, d.Inlet.Domain.Name)
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidInletNumber reports an inlet whose number falls outside the
// supported channel id range.
type InvalidInletNumber struct {
	Registry *registry.Registry
	Inlet    registry.Inlet
}

func (d InvalidInletNumber) isDiagnostic() {}

func (d InvalidInletNumber) Short() string {
	return fmt.Sprintf("Inlet's number is invalid: %s.", d.Inlet)
}

func (d InvalidInletNumber) Detail() string {
	desc := "The inlet number (channel id) of this inlet falls outside the supported range."
	hint := "Hint: The number should belong to the range 0..63, inclusive."
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidCommChannelCount reports a communication channel that does not
// connect exactly two inlets.
type InvalidCommChannelCount struct {
	Registry *registry.Registry
	Channel  registry.CommChannel
}

func (d InvalidCommChannelCount) isDiagnostic() {}

func (d InvalidCommChannelCount) issue() string {
	if len(d.Channel.Endpoints) < 2 {
		return "too few"
	}
	return "too many"
}

func (d InvalidCommChannelCount) Short() string {
	return fmt.Sprintf("Comm channel has %s inlets: %s.", d.issue(), d.Channel.Key())
}

func (d InvalidCommChannelCount) Detail() string {
	desc := fmt.Sprintf("This communication channel connects %s protection domains.", d.issue())
	hint := "Hint: A communication channel should have exactly 2 inlets."
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidCommChannelInlet reports a channel endpoint that is not a member of
// the registry's inlet set.
type InvalidCommChannelInlet struct {
	Registry *registry.Registry
	Channel  registry.CommChannel
	Inlet    registry.Inlet
}

func (d InvalidCommChannelInlet) isDiagnostic() {}

func (d InvalidCommChannelInlet) Short() string {
	return fmt.Sprintf("Comm channel's inlet does not exist: %s in %s.", d.Inlet, d.Channel.Key())
}

func (d InvalidCommChannelInlet) Detail() string {
	desc := "One of the inlets of this communication channel has not been defined in this registry."
	hint := nameSuggestionHint(d.Registry, d.Inlet.Domain.Name)
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidCommChannelDuplicate reports an inlet serving as an endpoint of
// more than one distinct communication channel.
type InvalidCommChannelDuplicate struct {
	Registry *registry.Registry
	Channel  registry.CommChannel
	Inlet    registry.Inlet
}

func (d InvalidCommChannelDuplicate) isDiagnostic() {}

func (d InvalidCommChannelDuplicate) Short() string {
	return fmt.Sprintf("Comm channel targets an inlet already in use: %s in %s.", d.Inlet, d.Channel.Key())
}

func (d InvalidCommChannelDuplicate) Detail() string {
	desc := "This communication channel shares one of its inlets with another communication channel."

	// Suggest an unoccupied inlet number of the same domain: the nearest
	// free number below the minimum occupied, or above the maximum occupied.
	// When both exist the above-maximum suggestion wins.
	name := d.Inlet.Domain.Name
	minOccupied, maxOccupied := 63, 0
	for in := range d.Registry.Inlets {
		if in.Domain != d.Inlet.Domain {
			continue
		}
		if in.Number < minOccupied {
			minOccupied = in.Number
		}
		if in.Number > maxOccupied {
			maxOccupied = in.Number
		}
	}
	hint := fmt.Sprintf("Hint: Use 'id=' to move this channel to another inlet of '%s'.", name)
	if minOccupied > 0 {
		hint = fmt.Sprintf("Hint: Use 'id=' to move this channel to inlet %d of '%s'.", minOccupied-1, name)
	}
	if maxOccupied < 63 {
		hint = fmt.Sprintf("Hint: Use 'id=' to move this channel to inlet %d of '%s'.", maxOccupied+1, name)
	}
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidIRQChannelInlet reports an IRQ channel whose inlet is not a member
// of the registry's inlet set. The document format cannot express this (irq
// elements live inside the protection_domain they notify), but registries
// built directly in code can.
type InvalidIRQChannelInlet struct {
	Registry *registry.Registry
	Channel  registry.IRQChannel
}

func (d InvalidIRQChannelInlet) isDiagnostic() {}

func (d InvalidIRQChannelInlet) Short() string {
	return fmt.Sprintf("IRQ channel's inlet does not exist: %s for IRQ %d.", d.Channel.Inlet, d.Channel.IRQ)
}

func (d InvalidIRQChannelInlet) Detail() string {
	desc := "The inlet of this IRQ channel has not been defined in this registry."
	hint := nameSuggestionHint(d.Registry, d.Channel.Inlet.Domain.Name)
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidIRQChannelDuplicate reports an interrupt number backing more than
// one IRQ channel.
type InvalidIRQChannelDuplicate struct {
	Registry *registry.Registry
	Channel  registry.IRQChannel
}

func (d InvalidIRQChannelDuplicate) isDiagnostic() {}

func (d InvalidIRQChannelDuplicate) Short() string {
	return fmt.Sprintf("IRQ channel targets an IRQ already in use: %s for IRQ %d.", d.Channel.Inlet, d.Channel.IRQ)
}

func (d InvalidIRQChannelDuplicate) Detail() string {
	desc := "This IRQ channel targets an IRQ number which is already set up to notify another inlet."

	var competing []string
	for _, ic := range d.Registry.SortedIRQChannels() {
		if ic.IRQ == d.Channel.IRQ {
			competing = append(competing, ic.Inlet.String())
		}
	}
	if len(competing) > 2 {
		competing = competing[:2]
	}
	hint := fmt.Sprintf("Hint: Remove this irq from one of the following inlets: [%s].", strings.Join(competing, ", "))
	return render(d.Short(), desc, hint, d.Registry.Description)
}

// InvalidCommAndIRQClash reports an inlet that is simultaneously a
// communication channel endpoint and an IRQ channel target. The receiving
// domain cannot tell from the notification whether the peer signalled or the
// interrupt fired, so a single handler cannot decide whether to acknowledge
// the IRQ.
type InvalidCommAndIRQClash struct {
	Registry    *registry.Registry
	CommChannel registry.CommChannel
	IRQChannel  registry.IRQChannel
}

func (d InvalidCommAndIRQClash) isDiagnostic() {}

func (d InvalidCommAndIRQClash) Short() string {
	return fmt.Sprintf("Comm and IRQ channel occupy same inlet: %s for IRQ %d and %s.",
		d.IRQChannel.Inlet, d.IRQChannel.IRQ, d.CommChannel.Key())
}

func (d InvalidCommAndIRQClash) Detail() string {
	desc := "A communication channel and an IRQ channel notify the same inlet. This is not supported."
	hint := fmt.Sprintf("Hint: Use 'id=' to set this IRQ to notify a different inlet of '%s'.", d.IRQChannel.Inlet.Domain.Name)
	return render(d.Short(), desc, hint, d.Registry.Description)
}
