package sdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comas/mantletool/internal/platform"
	"github.com/comas/mantletool/internal/sysdesc"
	"github.com/comas/mantletool/internal/validation"
)

const validDoc = `<system>
    <memory_region name="buf" size="0x2000" />
    <protection_domain name="serial" priority="100" pp="true">
        <map mr="buf" vaddr="0x4000000" setvar_vaddr="buf_base" />
        <irq irq="33" id="2" />
    </protection_domain>
    <protection_domain name="client" priority="50" />
    <channel>
        <end pd="serial" id="1" />
        <end pd="client" id="1" />
    </channel>
</system>`

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.system")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	reg, errs := LoadRegistry(context.Background(), writeDoc(t, validDoc), platform.Default())
	require.Empty(t, errs)
	require.NotNil(t, reg)
	require.Equal(t, "parsed from test.system", reg.Description)
	require.Equal(t, []string{"client", "serial"}, reg.DomainNames())
}

func TestLoadRegistry_Deterministic(t *testing.T) {
	path := writeDoc(t, validDoc)
	first, errs := LoadRegistry(context.Background(), path, platform.Default())
	require.Empty(t, errs)
	for i := 0; i < 10; i++ {
		reg, errs := LoadRegistry(context.Background(), path, platform.Default())
		require.Empty(t, errs)
		require.Equal(t, first, reg)
		require.Equal(t, first.DebugString(), reg.DebugString())
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	reg, errs := LoadRegistry(context.Background(), filepath.Join(t.TempDir(), "nope.system"), platform.Default())
	require.Nil(t, reg)
	require.Len(t, errs, 1)
	perr, ok := errs[0].(*ParseError)
	require.True(t, ok)
	require.Contains(t, perr.Short(), "could not read system description")
	require.Contains(t, perr.Detail(), "The system description file could not be parsed.")
}

func TestLoadRegistry_StructuralError(t *testing.T) {
	path := writeDoc(t, `<system>
    <widget />
</system>`)
	reg, errs := LoadRegistry(context.Background(), path, platform.Default())
	require.Nil(t, reg)
	require.Len(t, errs, 1)
	_, ok := errs[0].(*ParseError)
	require.True(t, ok)
	require.Contains(t, errs[0].Short(), "invalid element 'widget'")
}

func TestLoadRegistry_WithheldOnDiagnostics(t *testing.T) {
	path := writeDoc(t, `<system>
    <protection_domain name="a" priority="300" />
    <protection_domain name="b" priority="400" />
</system>`)
	reg, errs := LoadRegistry(context.Background(), path, platform.Default())
	require.Nil(t, reg)
	require.Len(t, errs, 2)
	for _, e := range errs {
		_, ok := e.(validation.InvalidDomainPriority)
		require.True(t, ok)
	}
}

func TestBuildRegistry(t *testing.T) {
	sys, err := sysdesc.ParseBytes(context.Background(), []byte(validDoc), "inline.system", platform.Default())
	require.NoError(t, err)

	reg, diags := BuildRegistry(context.Background(), sys, "inline.system")
	require.Empty(t, diags)
	require.Equal(t, "parsed from inline.system", reg.Description)
}

func TestBuildRegistry_WithholdsInvalid(t *testing.T) {
	sys, err := sysdesc.ParseBytes(context.Background(), []byte(`<system>
    <protection_domain name="a" priority="0" />
</system>`), "inline.system", platform.Default())
	require.NoError(t, err)

	reg, diags := BuildRegistry(context.Background(), sys, "inline.system")
	require.Nil(t, reg)
	require.Len(t, diags, 1)
}
