package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag is a 0/1 switch in a component or release file. It is set when the
// value is true or 1 and unset for anything else. The value is written back
// as it was read.
type Flag struct {
	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(b []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	f.raw = buf.Bytes()
	return nil
}

// MarshalJSON implements json.Marshaler. A flag never read encodes as 0.
func (f Flag) MarshalJSON() ([]byte, error) {
	if len(f.raw) == 0 {
		return []byte("0"), nil
	}
	return f.raw, nil
}

// Set reports whether the flag is present and enabled
func (f *Flag) Set() bool {
	if f == nil {
		return false
	}
	switch s := string(f.raw); s {
	case "true":
		return true
	case "", "false", "null":
		return false
	default:
		v, err := strconv.ParseFloat(s, 64)
		return err == nil && v == 1
	}
}

// Options holds the component flags stored next to the release entries.
// Keys this version does not know about are kept in Extra and written back
// untouched.
type Options struct {
	Maintainers  []string
	Plugin       *Flag
	ISOComponent *Flag
	Extra        map[string]json.RawMessage
}

// ReleaseEntry is the persisted state of a component for one release
type ReleaseEntry struct {
	Branch string              `json:"branch"`
	Dom0   map[string][]string `json:"dom0"`
	VM     map[string][]string `json:"vm"`
}

// File is the content of a component file, without the name wrapper
type File struct {
	Releases map[string]ReleaseEntry
	Options  Options
}

const (
	keyReleases     = "releases"
	keyMaintainers  = "maintainers"
	keyPlugin       = "plugin"
	keyISOComponent = "iso-component"
)

// UnmarshalJSON implements json.Unmarshaler
func (f *File) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*f = File{}
	if v, ok := raw[keyReleases]; ok {
		if err := json.Unmarshal(v, &f.Releases); err != nil {
			return fmt.Errorf("invalid %s: %w", keyReleases, err)
		}
		delete(raw, keyReleases)
	}
	if v, ok := raw[keyMaintainers]; ok {
		if err := json.Unmarshal(v, &f.Options.Maintainers); err != nil {
			return fmt.Errorf("invalid %s: %w", keyMaintainers, err)
		}
		delete(raw, keyMaintainers)
	}
	if v, ok := raw[keyPlugin]; ok {
		f.Options.Plugin = new(Flag)
		if err := f.Options.Plugin.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("invalid %s: %w", keyPlugin, err)
		}
		delete(raw, keyPlugin)
	}
	if v, ok := raw[keyISOComponent]; ok {
		f.Options.ISOComponent = new(Flag)
		if err := f.Options.ISOComponent.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("invalid %s: %w", keyISOComponent, err)
		}
		delete(raw, keyISOComponent)
	}

	if len(raw) > 0 {
		f.Options.Extra = make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return fmt.Errorf("invalid %s: %w", k, err)
			}
			f.Options.Extra[k] = buf.Bytes()
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f File) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Options.Extra)+4)
	for k, v := range f.Options.Extra {
		out[k] = v
	}

	releases := f.Releases
	if releases == nil {
		releases = map[string]ReleaseEntry{}
	}
	out[keyReleases] = releases

	if f.Options.Maintainers != nil {
		out[keyMaintainers] = f.Options.Maintainers
	}
	if f.Options.Plugin != nil {
		out[keyPlugin] = f.Options.Plugin
	}
	if f.Options.ISOComponent != nil {
		out[keyISOComponent] = f.Options.ISOComponent
	}

	return json.Marshal(out)
}

// MarshalJSON implements json.Marshaler, writing empty tables as {}
func (e ReleaseEntry) MarshalJSON() ([]byte, error) {
	type plain ReleaseEntry
	p := plain(e)
	if p.Dom0 == nil {
		p.Dom0 = map[string][]string{}
	}
	if p.VM == nil {
		p.VM = map[string][]string{}
	}
	return json.Marshal(p)
}

// Decode reads a component file and returns the entry of component name.
// A file without that entry decodes to an empty File.
func Decode(name string, data []byte) (*File, error) {
	var wrapped map[string]*File
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	if f, ok := wrapped[name]; ok && f != nil {
		return f, nil
	}
	return &File{}, nil
}

// EncodeFile serializes f wrapped under name, the way component files are
// stored on disk
func EncodeFile(name string, f *File) ([]byte, error) {
	data, err := json.MarshalIndent(map[string]*File{name: f}, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
