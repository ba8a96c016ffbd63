package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamily(t *testing.T) {
	tests := []struct {
		name   string
		family Family
	}{
		{"fc37", FamilyRPM},
		{"centos-stream8", FamilyRPM},
		{"bullseye", FamilyDeb},
		{"bookworm", FamilyDeb},
		{"archlinux", FamilyArch},
		{"whonix-gateway-16", FamilyUnknown},
		{"gentoo", FamilyUnknown},
		{"windows-10", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.name)
			assert.Equal(t, tt.family, d.Family())
			assert.False(t, d.IsRPM() && d.IsDeb(), "IsRPM and IsDeb must be exclusive")
		})
	}
}

func TestUnknownDistribution(t *testing.T) {
	d := New("plan9")
	assert.False(t, d.IsRPM())
	assert.False(t, d.IsDeb())
	assert.Empty(t, d.Labels())
	assert.Empty(t, d.Aliases())

	_, ok := d.Version()
	assert.False(t, ok)
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"bullseye", 11},
		{"bookworm", 12},
		{"stretch", 9},
		{"fc37", 37},
		{"centos8", 8},
	}

	for _, tt := range tests {
		v, ok := New(tt.name).Version()
		assert.True(t, ok, tt.name)
		assert.Equal(t, tt.want, v, tt.name)
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{
			name: "fc37",
			want: []string{"fc37:fedora-37", "fc37+minimal:fedora-37-minimal", "fc37+xfce:fedora-37-xfce"},
		},
		{
			name: "centos8",
			want: []string{"centos8:centos-8", "centos8+minimal:centos-8-minimal", "centos8+xfce:centos-8-xfce"},
		},
		{
			name: "bullseye",
			want: []string{"bullseye:debian-11", "bullseye+minimal:debian-11-minimal", "bullseye+xfce:debian-11-xfce"},
		},
		{
			name: "whonix-gateway-15",
			want: []string{"buster+whonix-gateway+minimal+no-recommends:whonix-gw-15"},
		},
		{
			name: "archlinux",
			want: []string{"archlinux+minimal:archlinux-minimal", "archlinux+xfce:archlinux-xfce"},
		},
		{
			name: "gentoo",
			want: []string{"gentoo+minimal:gentoo-minimal", "gentoo+xfce:gentoo-xfce"},
		},
		{
			name: "whonix-gw-15",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.name).Labels())
		})
	}
}

func TestAliases(t *testing.T) {
	assert.Equal(t, []string{
		"bullseye:bullseye+standard",
		"bullseye+gnome:bullseye+gnome+standard",
		"bullseye+minimal:bullseye+minimal+no-recommends",
	}, New("bullseye").Aliases())

	assert.Equal(t, []string{"whonix-gw-16:bullseye+whonix-gateway+minimal+no-recommends"},
		New("whonix-gw-16").Aliases())

	assert.Nil(t, New("fc37").Aliases())
}

func TestNames(t *testing.T) {
	names := []string{"fc37", "bookworm", "archlinux"}
	assert.Equal(t, names, Names(FromNames(names)))
}
