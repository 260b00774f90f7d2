// Package platform describes the memory properties of the hardware platform
// a system description targets. The structural parser needs to know which
// page sizes exist so it can reject memory regions the kernel could never
// map. Platforms are either the built-in default or loaded from a small HCL
// support file, one block per platform:
//
//	platform "qemu_virt_aarch64" {
//	  page_sizes = [4096, 2097152]
//	}
//
// HCL numeric literals are decimal only, so page sizes in platform files are
// written out in full even though the system description format itself
// accepts hex.
package platform

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Description lists the page sizes a platform supports, in bytes.
type Description struct {
	Name      string
	PageSizes []uint64
}

// Default returns the platform assumed when no platform file is given:
// 4KiB and 2MiB pages.
func Default() Description {
	return Description{
		Name:      "default",
		PageSizes: []uint64{0x1_000, 0x200_000},
	}
}

// SupportsPageSize reports whether size is one of the platform's page sizes.
func (d Description) SupportsPageSize(size uint64) bool {
	for _, ps := range d.PageSizes {
		if ps == size {
			return true
		}
	}
	return false
}

// SmallestPageSize returns the smallest supported page size. It is the
// default page size for memory regions that do not declare one.
func (d Description) SmallestPageSize() uint64 {
	smallest := d.PageSizes[0]
	for _, ps := range d.PageSizes[1:] {
		if ps < smallest {
			smallest = ps
		}
	}
	return smallest
}

type platformFile struct {
	Platforms []*platformBlock `hcl:"platform,block"`
}

type platformBlock struct {
	Name      string         `hcl:"name,label"`
	PageSizes hcl.Expression `hcl:"page_sizes"`
}

// Load reads a platform description from an HCL support file. The file must
// declare exactly one platform block with a non-empty page_sizes list.
func Load(path string) (Description, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Description{}, fmt.Errorf("failed to parse platform file %s: %w", path, diags)
	}

	var parsed platformFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return Description{}, fmt.Errorf("failed to decode platform file %s: %w", path, diags)
	}

	if len(parsed.Platforms) != 1 {
		return Description{}, fmt.Errorf("platform file %s must declare exactly one platform block, found %d", path, len(parsed.Platforms))
	}
	block := parsed.Platforms[0]

	sizes, err := pageSizesFromExpression(block.PageSizes)
	if err != nil {
		return Description{}, fmt.Errorf("platform %q: %w", block.Name, err)
	}

	return Description{Name: block.Name, PageSizes: sizes}, nil
}

// pageSizesFromExpression evaluates the page_sizes attribute into concrete
// integers. Going through cty directly rather than a straight struct decode
// gives a per-element error message when one entry is not a whole number.
func pageSizesFromExpression(expr hcl.Expression) ([]uint64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate page_sizes: %w", diags)
	}
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("page_sizes must be a list of numbers, got %s", val.Type().FriendlyName())
	}

	var sizes []uint64
	it := val.ElementIterator()
	for it.Next() {
		idx, elem := it.Element()
		if elem.Type() != cty.Number {
			return nil, fmt.Errorf("page_sizes element %v must be a number, got %s", idx.AsBigFloat(), elem.Type().FriendlyName())
		}
		var size uint64
		if err := gocty.FromCtyValue(elem, &size); err != nil {
			return nil, fmt.Errorf("page_sizes element %v is not a valid page size: %w", idx.AsBigFloat(), err)
		}
		if size == 0 {
			return nil, fmt.Errorf("page_sizes must not contain zero")
		}
		sizes = append(sizes, size)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("page_sizes must not be empty")
	}
	return sizes, nil
}
