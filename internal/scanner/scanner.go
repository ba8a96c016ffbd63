// Package scanner finds the package files a build left in an output
// directory.
package scanner

import (
	"context"

	"github.com/ralt/buildmeta/internal/dist"
)

// File is a built package file
type File struct {
	Path   string
	Family dist.Family
	Size   int64
}

// Scanner lists built package files
type Scanner interface {
	// Scan walks dir and returns the package files of family.
	// dist.FamilyUnknown matches every family.
	Scan(ctx context.Context, dir string, family dist.Family) ([]File, error)
}
