package validation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comas/mantletool/internal/registry"
)

// randomValidRegistry assembles a registry that satisfies every rule: legal
// names, in-range priorities, two-endpoint channels over existing inlets,
// unique IRQ numbers, and no inlet shared between channel kinds.
func randomValidRegistry(rng *rand.Rand) *registry.Registry {
	reg := emptyRegistry()

	domains := make([]registry.Domain, 2+rng.Intn(5))
	for i := range domains {
		domains[i] = addDomain(reg, fmt.Sprintf("pd_%d", i), 1+rng.Intn(254))
	}

	// Hand out inlet numbers so that no (domain, number) pair repeats.
	nextNumber := make(map[registry.Domain]int)
	takeInlet := func(d registry.Domain) registry.Inlet {
		n := nextNumber[d]
		nextNumber[d]++
		return addInlet(reg, d, n)
	}

	for i := 0; i < rng.Intn(4); i++ {
		a := domains[rng.Intn(len(domains))]
		b := domains[rng.Intn(len(domains))]
		if a == b {
			continue
		}
		addCommChannel(reg, takeInlet(a), takeInlet(b))
	}

	for i := 0; i < rng.Intn(4); i++ {
		d := domains[rng.Intn(len(domains))]
		addIRQChannel(reg, 32+i, takeInlet(d))
	}

	return reg
}

func TestValidate_RandomValidRegistries(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		reg := randomValidRegistry(rng)
		require.Empty(t, Validate(reg), "registry %d:\n%s", i, reg.DebugString())
	}
}

func TestValidate_RemovingReferencedDomainIsReported(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		reg := randomValidRegistry(rng)
		if len(reg.Inlets) == 0 {
			continue
		}
		victim := reg.SortedInlets()[rng.Intn(len(reg.Inlets))].Domain
		delete(reg.Domains, victim)
		delete(reg.PriorityByDomain, victim)

		diags := Validate(reg)
		require.NotEmpty(t, diags, "registry %d:\n%s", i, reg.DebugString())
		found := false
		for _, d := range diags {
			if dd, ok := d.(InvalidInletDomain); ok && dd.Inlet.Domain == victim {
				found = true
			}
		}
		require.True(t, found, "registry %d:\n%s", i, reg.DebugString())
	}
}

func TestValidate_ChimeraChannelIsReported(t *testing.T) {
	// Rewiring one endpoint of a channel onto an endpoint of another channel
	// must trip the exclusivity rule.
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		reg := randomValidRegistry(rng)
		channels := reg.SortedCommChannels()
		if len(channels) < 2 {
			continue
		}
		chimera := registry.NewCommChannel(channels[0].Endpoints[0], channels[1].Endpoints[1])
		if _, exists := reg.CommChannels[chimera.Key()]; exists {
			continue
		}
		reg.CommChannels[chimera.Key()] = chimera

		diags := Validate(reg)
		found := false
		for _, d := range diags {
			if _, ok := d.(InvalidCommChannelDuplicate); ok {
				found = true
			}
		}
		require.True(t, found, "registry %d:\n%s", i, reg.DebugString())
	}
}

func TestValidate_DuplicatedIRQIsReported(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		reg := randomValidRegistry(rng)
		irqs := reg.SortedIRQChannels()
		if len(irqs) == 0 {
			continue
		}
		src := irqs[rng.Intn(len(irqs))]
		d := reg.SortedDomains()[rng.Intn(len(reg.Domains))]
		in := registry.Inlet{Domain: d, Number: 40 + rng.Intn(10)}
		if reg.HasInlet(in) || in == src.Inlet {
			continue
		}
		reg.Inlets[in] = struct{}{}
		reg.IRQChannels[registry.IRQChannel{IRQ: src.IRQ, Inlet: in}] = struct{}{}

		diags := Validate(reg)
		found := false
		for _, diag := range diags {
			if _, ok := diag.(InvalidIRQChannelDuplicate); ok {
				found = true
			}
		}
		require.True(t, found, "registry %d:\n%s", i, reg.DebugString())
	}
}
