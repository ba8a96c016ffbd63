package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/buildmeta/internal/utils"
)

func keys(t *testing.T, data []byte) []string {
	t.Helper()
	obj, err := decodeObject(data)
	require.NoError(t, err)
	out := make([]string, 0, len(obj))
	for _, f := range obj {
		out = append(out, f.Key)
	}
	return out
}

func TestCreateDistfile(t *testing.T) {
	f := newFixture(t)
	r := f.load(t)

	// the distfile reflects the files on disk, not the loaded state
	require.NoError(t, os.WriteFile(f.cfg.ComponentFile("builder-rpm"),
		[]byte(`{"builder-rpm": {"releases": {}, "plugin": 1, "url": "https://example.org"}}`), 0644))

	out := filepath.Join(t.TempDir(), "distfile.json")
	require.NoError(t, r.CreateDistfile(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"releases", "components"}, keys(t, data))

	var parsed struct {
		Releases   map[string]json.RawMessage `json:"releases"`
		Components json.RawMessage            `json:"components"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Len(t, parsed.Releases, 2)
	assert.Equal(t, []string{"core-admin", "gui-agent-windows", "builder-rpm", "core-agent-linux"}, keys(t, parsed.Components))

	var components map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(parsed.Components, &components))
	assert.JSONEq(t, `{"releases": {}, "plugin": 1, "url": "https://example.org"}`, string(components["builder-rpm"]))
	assert.Contains(t, string(data), "\n    \"releases\": {")
}

func TestCreateDistfileGzip(t *testing.T) {
	f := newFixture(t)
	r := f.load(t)
	dir := t.TempDir()

	require.NoError(t, r.CreateDistfile(filepath.Join(dir, "distfile.json")))
	require.NoError(t, r.CreateDistfile(filepath.Join(dir, "distfile.json.gz")))

	plain, err := os.ReadFile(filepath.Join(dir, "distfile.json"))
	require.NoError(t, err)
	packed, err := os.ReadFile(filepath.Join(dir, "distfile.json.gz"))
	require.NoError(t, err)

	unpacked, err := utils.Decompress("distfile.json.gz", packed)
	require.NoError(t, err)
	assert.Equal(t, string(plain), string(unpacked))
}

func TestDecodeObject(t *testing.T) {
	obj, err := decodeObject([]byte(`{"z": 1, "a": {"b": [1, 2]}, "m": null}`))
	require.NoError(t, err)
	require.Len(t, obj, 3)
	assert.Equal(t, "z", obj[0].Key)
	assert.Equal(t, "m", obj[2].Key)

	obj.set("a", json.RawMessage(`"x"`))
	obj.set("n", json.RawMessage(`2`))
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null,"n":2}`, string(data))

	_, err = decodeObject([]byte(`[1]`))
	assert.Error(t, err)
}
