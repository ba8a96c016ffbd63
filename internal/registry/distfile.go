package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ralt/buildmeta/internal/models"
	"github.com/ralt/buildmeta/internal/utils"
)

// field is one member of a JSON object
type field struct {
	Key   string
	Value json.RawMessage
}

// object is a JSON object that keeps its member order
type object []field

func decodeObject(data []byte) (object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var obj object
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		obj = append(obj, field{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (o object) get(key string) (json.RawMessage, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// set replaces the value of key in place, or appends it
func (o *object) set(key string, value json.RawMessage) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = value
			return
		}
	}
	*o = append(*o, field{Key: key, Value: value})
}

// MarshalJSON implements json.Marshaler
func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CreateDistfile writes the release definition with its component list
// replaced by the content of every existing component file, in list order.
// Both are read from disk; the loaded components are not used. A path
// ending in ".gz" is gzip-compressed.
func (r *Registry) CreateDistfile(path string) error {
	data, err := os.ReadFile(r.config.ReleaseFile)
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	release, err := decodeObject(data)
	if err != nil {
		return &models.BuildError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("parsing release file %s: %w", r.config.ReleaseFile, err),
		}
	}

	var names []string
	if raw, ok := release.get("components"); ok {
		if err := json.Unmarshal(raw, &names); err != nil {
			return &models.BuildError{
				Type: models.ErrInvalidConfig,
				Err:  fmt.Errorf("invalid components in %s: %w", r.config.ReleaseFile, err),
			}
		}
	}

	components := object{}
	for _, name := range names {
		content, err := r.readComponentEntry(name)
		if err != nil {
			return err
		}
		if content == nil {
			continue
		}
		components = append(components, field{Key: name, Value: content})
	}

	encoded, err := json.Marshal(components)
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	release.set("components", encoded)

	out, err := json.MarshalIndent(release, "", "    ")
	if err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	out = append(out, '\n')

	if out, err = utils.Compress(path, out); err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}

	if err := utils.WriteFile(path, out, 0644); err != nil {
		return &models.BuildError{Type: models.ErrFileOp, Err: err}
	}
	logrus.Infof("Wrote %d components to %s", len(components), path)
	return nil
}

// readComponentEntry returns the content of a component file without its
// name wrapper, or nil when there is no file
func (r *Registry) readComponentEntry(name string) (json.RawMessage, error) {
	data, err := os.ReadFile(r.config.ComponentFile(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &models.BuildError{Type: models.ErrFileOp, Component: name, Err: err}
	}

	wrapped, err := decodeObject(data)
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrInvalidConfig, Component: name, Err: err}
	}
	if content, ok := wrapped.get(name); ok {
		return content, nil
	}
	return json.RawMessage("{}"), nil
}
