package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/buildmeta/internal/dist"
)

var (
	// ar archive whose first member is debian-binary
	debMagic = []byte("!<arch>\ndebian")

	// RPM lead
	rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}
)

// Detect returns the packaging family of a file from its magic bytes, then
// from its extension. Source RPMs and empty files are FamilyUnknown.
func Detect(path string) (dist.Family, error) {
	if strings.HasSuffix(filepath.Base(path), ".src.rpm") {
		return dist.FamilyUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return dist.FamilyUnknown, err
	}
	defer f.Close()

	header := make([]byte, len(debMagic))
	n, err := io.ReadFull(f, header)
	if n == 0 {
		if err == io.EOF {
			return dist.FamilyUnknown, nil
		}
		return dist.FamilyUnknown, err
	}
	header = header[:n]

	ext := filepath.Ext(path)
	switch {
	case bytes.HasPrefix(header, debMagic) || ext == ".deb":
		return dist.FamilyDeb, nil
	case bytes.HasPrefix(header, rpmMagic) || ext == ".rpm":
		return dist.FamilyRPM, nil
	}
	return dist.FamilyUnknown, nil
}

// IsDebugPackage reports whether a package file name is a split debug
// package. Those are produced by the build but never listed by components.
func IsDebugPackage(name string) bool {
	for _, marker := range []string{"-debuginfo-", "-debugsource-", "-dbgsym_", "-dbg_"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
