package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePlatformFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "platform.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	d := Default()
	require.Equal(t, []uint64{0x1000, 0x200000}, d.PageSizes)
	require.Equal(t, uint64(0x1000), d.SmallestPageSize())
	require.True(t, d.SupportsPageSize(0x200000))
	require.False(t, d.SupportsPageSize(0x4000))
}

func TestLoad(t *testing.T) {
	path := writePlatformFile(t, `
platform "qemu_virt_aarch64" {
  page_sizes = [4096, 2097152]
}
`)
	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "qemu_virt_aarch64", d.Name)
	require.Equal(t, []uint64{4096, 2097152}, d.PageSizes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}

func TestLoad_RejectsMultiplePlatformBlocks(t *testing.T) {
	path := writePlatformFile(t, `
platform "a" {
  page_sizes = [4096]
}
platform "b" {
  page_sizes = [4096]
}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "exactly one platform block")
}

func TestLoad_RejectsEmptyPageSizes(t *testing.T) {
	path := writePlatformFile(t, `
platform "a" {
  page_sizes = []
}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "must not be empty")
}

func TestLoad_RejectsNonNumericPageSize(t *testing.T) {
	path := writePlatformFile(t, `
platform "a" {
  page_sizes = [4096, "big"]
}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "must be a number")
}

func TestLoad_RejectsZeroPageSize(t *testing.T) {
	path := writePlatformFile(t, `
platform "a" {
  page_sizes = [0]
}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "must not contain zero")
}
