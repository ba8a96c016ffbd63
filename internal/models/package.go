package models

import "sort"

// PackageSet identifies the platform a package list is built for
type PackageSet string

const (
	// Dom0 is the privileged control domain (host) package set
	Dom0 PackageSet = "dom0"
	// VM is the guest domain package set
	VM PackageSet = "vm"
)

// PackageSets lists the known package sets in output order
var PackageSets = []PackageSet{Dom0, VM}

// Valid reports whether s names a known package set
func (s PackageSet) Valid() bool {
	return s == Dom0 || s == VM
}

// Package is a binary package declared by a component's packaging metadata
type Package struct {
	Name    string
	Version string // optional
	Release string // optional
	Arches  []string
}

// Arch returns the first architecture of the package, or an empty string
func (p Package) Arch() string {
	if len(p.Arches) == 0 {
		return ""
	}
	return p.Arches[0]
}

// PackageTable maps a package set and a distribution name to a list of
// package names (raw or fully qualified)
type PackageTable map[PackageSet]map[string][]string

// NewPackageTable returns a table with both package sets present
func NewPackageTable() PackageTable {
	return PackageTable{
		Dom0: map[string][]string{},
		VM:   map[string][]string{},
	}
}

// Clone returns a deep copy of the table
func (t PackageTable) Clone() PackageTable {
	out := NewPackageTable()
	for set, dists := range t {
		m := make(map[string][]string, len(dists))
		for dist, pkgs := range dists {
			m[dist] = append([]string{}, pkgs...)
		}
		out[set] = m
	}
	return out
}

// Dists returns the distribution names recorded for set, sorted
func (t PackageTable) Dists(set PackageSet) []string {
	dists := make([]string, 0, len(t[set]))
	for d := range t[set] {
		dists = append(dists, d)
	}
	sort.Strings(dists)
	return dists
}

// Artifact is a built package file found on disk
type Artifact struct {
	Name     string
	Version  string
	Release  string
	Arch     string
	Filename string
	Size     int64
}
