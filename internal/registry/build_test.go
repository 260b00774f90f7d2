package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comas/mantletool/internal/platform"
	"github.com/comas/mantletool/internal/sysdesc"
)

func buildFromDoc(t *testing.T, doc string) *Registry {
	t.Helper()
	sys, err := sysdesc.ParseBytes(context.Background(), []byte(doc), "test.system", platform.Default())
	require.NoError(t, err)
	return FromSystem(context.Background(), sys, "test.system")
}

func TestFromSystem(t *testing.T) {
	reg := buildFromDoc(t, `<system>
    <memory_region name="buf" size="0x2000" />
    <protection_domain name="serial" priority="100" pp="true">
        <map mr="buf" vaddr="0x4000000" perms="rw" setvar_vaddr="buf_base" />
        <irq irq="33" id="2" />
    </protection_domain>
    <protection_domain name="client" priority="50">
        <map mr="buf" vaddr="0x4000000" perms="r" />
    </protection_domain>
    <channel>
        <end pd="serial" id="1" />
        <end pd="client" id="1" />
    </channel>
</system>`)

	require.Equal(t, "parsed from test.system", reg.Description)

	serial := Domain{Name: "serial"}
	client := Domain{Name: "client"}
	require.Equal(t, []Domain{client, serial}, reg.SortedDomains())
	require.Equal(t, 100, reg.PriorityByDomain[serial])
	require.Equal(t, 50, reg.PriorityByDomain[client])
	require.Contains(t, reg.DomainsProvidingPrivilegedCall, serial)
	require.NotContains(t, reg.DomainsProvidingPrivilegedCall, client)

	require.Equal(t, []Inlet{
		{Domain: client, Number: 1},
		{Domain: serial, Number: 1},
		{Domain: serial, Number: 2},
	}, reg.SortedInlets())

	require.Equal(t, []IRQChannel{
		{IRQ: 33, Inlet: Inlet{Domain: serial, Number: 2}},
	}, reg.SortedIRQChannels())

	channels := reg.SortedCommChannels()
	require.Len(t, channels, 1)
	require.Equal(t, NewCommChannel(
		Inlet{Domain: serial, Number: 1},
		Inlet{Domain: client, Number: 1},
	), channels[0])

	mapped := reg.SortedMappedMemoryRegions()
	require.Equal(t, []MappedMemoryRegion{
		{Name: "buf", Domain: client, Address: 0x4000000, Size: 0x2000, Writable: false},
		{Name: "buf", Domain: serial, Address: 0x4000000, Size: 0x2000, Writable: true, PatchSymbol: "buf_base"},
	}, mapped)
}

func TestFromSystem_DropsMapsOfUndeclaredRegions(t *testing.T) {
	reg := buildFromDoc(t, `<system>
    <protection_domain name="a" priority="1">
        <map mr="ghost" vaddr="0x1000" />
    </protection_domain>
</system>`)
	require.Empty(t, reg.MappedMemoryRegions)
}

func TestFromSystem_ChannelEndsBecomeInlets(t *testing.T) {
	// Channel ends naming undeclared domains still enter the inlet set; the
	// validator is what reports the dangling reference.
	reg := buildFromDoc(t, `<system>
    <channel>
        <end pd="ghost" id="1" />
        <end pd="phantom" id="2" />
    </channel>
</system>`)

	require.Empty(t, reg.Domains)
	require.Equal(t, []Inlet{
		{Domain: Domain{Name: "ghost"}, Number: 1},
		{Domain: Domain{Name: "phantom"}, Number: 2},
	}, reg.SortedInlets())
}

func TestFromSystem_DuplicateChannelsCollapse(t *testing.T) {
	reg := buildFromDoc(t, `<system>
    <protection_domain name="a" priority="1" />
    <protection_domain name="b" priority="1" />
    <channel>
        <end pd="a" id="1" />
        <end pd="b" id="1" />
    </channel>
    <channel>
        <end pd="b" id="1" />
        <end pd="a" id="1" />
    </channel>
</system>`)
	require.Len(t, reg.CommChannels, 1)
}

func TestNewCommChannel_Normalizes(t *testing.T) {
	a1 := Inlet{Domain: Domain{Name: "a"}, Number: 1}
	b2 := Inlet{Domain: Domain{Name: "b"}, Number: 2}

	forward := NewCommChannel(a1, b2)
	backward := NewCommChannel(b2, a1)
	require.True(t, forward.Equal(backward))
	require.Equal(t, forward.Key(), backward.Key())
	require.Equal(t, "[('a', 1), ('b', 2)]", forward.Key())
}

func TestNewCommChannel_DeduplicatesEndpoints(t *testing.T) {
	a1 := Inlet{Domain: Domain{Name: "a"}, Number: 1}
	ch := NewCommChannel(a1, a1)
	require.Equal(t, []Inlet{a1}, ch.Endpoints)
}

func TestCommChannel_Contains(t *testing.T) {
	a1 := Inlet{Domain: Domain{Name: "a"}, Number: 1}
	b2 := Inlet{Domain: Domain{Name: "b"}, Number: 2}
	ch := NewCommChannel(a1, b2)
	require.True(t, ch.Contains(a1))
	require.False(t, ch.Contains(Inlet{Domain: Domain{Name: "a"}, Number: 2}))
}

func TestFindDomain(t *testing.T) {
	reg := buildFromDoc(t, `<system>
    <protection_domain name="serial" priority="1" />
    <protection_domain name="timer" priority="1" />
    <protection_domain name="eth" priority="1" />
</system>`)

	d, err := reg.FindDomain("serial")
	require.NoError(t, err)
	require.Equal(t, Domain{Name: "serial"}, d)

	_, err = reg.FindDomain("serail")
	var notFound *DomainNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "serail", notFound.Name)
	require.Equal(t, []string{"serial", "timer", "eth"}, notFound.Suggestions)
}

func TestRegistry_HasDomainHasInlet(t *testing.T) {
	reg := buildFromDoc(t, `<system>
    <protection_domain name="a" priority="1">
        <irq irq="1" id="0" />
    </protection_domain>
</system>`)

	require.True(t, reg.HasDomain(Domain{Name: "a"}))
	require.False(t, reg.HasDomain(Domain{Name: "b"}))
	require.True(t, reg.HasInlet(Inlet{Domain: Domain{Name: "a"}, Number: 0}))
	require.False(t, reg.HasInlet(Inlet{Domain: Domain{Name: "a"}, Number: 1}))
}
