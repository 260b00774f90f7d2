// Package sdf ties the pipeline together: it turns a System Description
// File into a validated Registry, or into the errors explaining why not.
//
// Two disjoint error taxonomies meet here. Structural errors from the parser
// mean the document could not be turned into a model at all; they are fatal
// and surface one at a time. Validation diagnostics mean the document parsed
// but the model violates system rules; the validator collects all of them.
// Both satisfy the Error interface so callers can report a mixed list
// uniformly.
package sdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/comas/mantletool/internal/platform"
	"github.com/comas/mantletool/internal/registry"
	"github.com/comas/mantletool/internal/sysdesc"
	"github.com/comas/mantletool/internal/validation"
)

// Error is the common shape of everything that can go wrong between reading
// a document and obtaining a validated registry. It matches
// validation.Diagnostic, so diagnostics are Errors as-is.
type Error interface {
	Short() string
	Detail() string
}

// ParseError wraps a structural parsing failure for uniform reporting
// alongside validation diagnostics.
type ParseError struct {
	Message string
}

func (e *ParseError) Short() string {
	return e.Message
}

func (e *ParseError) Detail() string {
	return fmt.Sprintf("[ERROR] %s\n\nThe system description file could not be parsed.\n", e.Message)
}

// BuildRegistry reshapes a parsed system description into a Registry and
// validates it. On success the diagnostics are empty and the registry is
// ready for the backend; otherwise the registry is withheld and all
// violations found are returned.
func BuildRegistry(ctx context.Context, sys *sysdesc.SystemDescription, inputLabel string) (*registry.Registry, []validation.Diagnostic) {
	reg := registry.FromSystem(ctx, sys, inputLabel)
	if diags := validation.Validate(reg); len(diags) > 0 {
		return nil, diags
	}
	return reg, nil
}

// LoadRegistry runs the whole pipeline for the document at path: read,
// parse, build, validate. It returns either a validated registry or a
// non-empty ordered error list.
func LoadRegistry(ctx context.Context, path string, plat platform.Description) (*registry.Registry, []Error) {
	sys, err := sysdesc.Parse(ctx, path, plat)
	if err != nil {
		return nil, []Error{&ParseError{Message: err.Error()}}
	}

	reg, diags := BuildRegistry(ctx, sys, filepath.Base(path))
	if len(diags) > 0 {
		errs := make([]Error, len(diags))
		for i, d := range diags {
			errs[i] = d
		}
		return nil, errs
	}
	return reg, nil
}
