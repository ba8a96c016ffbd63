// Package dist describes the target distributions packages are built for.
package dist

import (
	"fmt"
	"strconv"
	"strings"
)

// Family represents the packaging toolchain of a distribution
type Family int

const (
	FamilyUnknown Family = iota
	FamilyRPM
	FamilyDeb
	FamilyArch
)

// String returns the string representation of Family
func (f Family) String() string {
	switch f {
	case FamilyRPM:
		return "rpm"
	case FamilyDeb:
		return "deb"
	case FamilyArch:
		return "archlinux"
	default:
		return "unknown"
	}
}

// debian maps codenames to their release label.
var debian = map[string]string{
	"stretch":  "debian-9",
	"buster":   "debian-10",
	"bullseye": "debian-11",
	"bookworm": "debian-12",
	"trixie":   "debian-13",
}

// whonix maps template names to their short alias, and short aliases to the
// Debian flavor they are built from.
var whonix = map[string]string{
	"whonix-gateway-15":     "whonix-gw-15",
	"whonix-workstation-15": "whonix-ws-15",
	"whonix-gw-15":          "buster+whonix-gateway+minimal+no-recommends",
	"whonix-ws-15":          "buster+whonix-workstation+minimal+no-recommends",

	"whonix-gateway-16":     "whonix-gw-16",
	"whonix-workstation-16": "whonix-ws-16",
	"whonix-gw-16":          "bullseye+whonix-gateway+minimal+no-recommends",
	"whonix-ws-16":          "bullseye+whonix-workstation+minimal+no-recommends",

	"whonix-gateway-17":     "whonix-gw-17",
	"whonix-workstation-17": "whonix-ws-17",
	"whonix-gw-17":          "bookworm+whonix-gateway+minimal+no-recommends",
	"whonix-ws-17":          "bookworm+whonix-workstation+minimal+no-recommends",
}

// Distribution is a target OS distribution identified by its name
// (e.g. "fc37", "bookworm", "archlinux").
type Distribution struct {
	Name string
}

// New creates a Distribution from its name
func New(name string) Distribution {
	return Distribution{Name: name}
}

// FromNames creates one Distribution per name, preserving order
func FromNames(names []string) []Distribution {
	dists := make([]Distribution, 0, len(names))
	for _, n := range names {
		dists = append(dists, New(n))
	}
	return dists
}

// Names returns the names of dists, preserving order
func Names(dists []Distribution) []string {
	names := make([]string, 0, len(dists))
	for _, d := range dists {
		names = append(names, d.Name)
	}
	return names
}

func (d Distribution) String() string {
	return d.Name
}

// IsRPM reports whether the distribution is Fedora or CentOS based
func (d Distribution) IsRPM() bool {
	return strings.HasPrefix(d.Name, "fc") || strings.HasPrefix(d.Name, "centos")
}

// IsDeb reports whether the distribution is a known Debian codename
func (d Distribution) IsDeb() bool {
	_, ok := debian[d.Name]
	return ok
}

// IsArch reports whether the distribution is Arch Linux based
func (d Distribution) IsArch() bool {
	return strings.HasPrefix(d.Name, "archlinux")
}

// IsWhonix reports whether the distribution is a known Whonix name
func (d Distribution) IsWhonix() bool {
	_, ok := whonix[d.Name]
	return ok
}

// Family returns the packaging family of the distribution
func (d Distribution) Family() Family {
	switch {
	case d.IsRPM():
		return FamilyRPM
	case d.IsDeb():
		return FamilyDeb
	case d.IsArch():
		return FamilyArch
	default:
		return FamilyUnknown
	}
}

// Version returns the numeric OS version. For Debian it comes from the
// codename table, for Fedora and CentOS from the trailing digits of the name.
func (d Distribution) Version() (int, bool) {
	if release, ok := debian[d.Name]; ok {
		_, num, _ := strings.Cut(release, "-")
		v, err := strconv.Atoi(num)
		return v, err == nil
	}
	if d.IsRPM() {
		return trailingNumber(d.Name)
	}
	return 0, false
}

func trailingNumber(s string) (int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}
	v, err := strconv.Atoi(s[i:])
	return v, err == nil
}

// Labels returns the template label declarations ("name:label") for the
// distribution, in base, minimal, xfce order.
func (d Distribution) Labels() []string {
	var labels []string

	var label string
	switch {
	case strings.HasPrefix(d.Name, "fc"):
		label = strings.ReplaceAll(d.Name, "fc", "fedora-")
	case strings.HasPrefix(d.Name, "centos"):
		label = strings.ReplaceAll(d.Name, "centos", "centos-")
	case d.IsDeb():
		label = debian[d.Name]
	case d.IsWhonix():
		label = whonix[d.Name]
	}

	if label != "" {
		if !d.IsWhonix() {
			labels = append(labels,
				fmt.Sprintf("%s:%s", d.Name, label),
				fmt.Sprintf("%s+minimal:%s-minimal", d.Name, label),
				fmt.Sprintf("%s+xfce:%s-xfce", d.Name, label),
			)
		} else if flavor, ok := whonix[label]; ok {
			labels = append(labels, fmt.Sprintf("%s:%s", flavor, label))
		}
	}

	if strings.HasPrefix(d.Name, "gentoo") || strings.HasPrefix(d.Name, "archlinux") {
		labels = append(labels,
			fmt.Sprintf("%s+minimal:%s-minimal", d.Name, d.Name),
			fmt.Sprintf("%s+xfce:%s-xfce", d.Name, d.Name),
		)
	}

	return labels
}

// Aliases returns the template alias declarations ("name:alias")
func (d Distribution) Aliases() []string {
	switch {
	case d.IsDeb():
		return []string{
			fmt.Sprintf("%[1]s:%[1]s+standard", d.Name),
			fmt.Sprintf("%[1]s+gnome:%[1]s+gnome+standard", d.Name),
			fmt.Sprintf("%[1]s+minimal:%[1]s+minimal+no-recommends", d.Name),
		}
	case d.IsWhonix():
		return []string{fmt.Sprintf("%s:%s", d.Name, whonix[d.Name])}
	default:
		return nil
	}
}
