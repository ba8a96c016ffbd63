package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/buildmeta/internal/component"
	"github.com/ralt/buildmeta/internal/dist"
	"github.com/ralt/buildmeta/internal/models"
)

const releaseFile = `{
    "releases": {
        "4.1": {"devel": 0, "dom0": ["fc32"], "vm": ["fc34", "bullseye"]},
        "4.2": {"devel": 1, "dom0": ["fc37"], "vm": ["fc37", "bookworm", "whonix-gateway-17"]}
    },
    "components": ["core-admin", "gui-agent-windows", "missing-one", "builder-rpm", "core-agent-linux"]
}`

var componentFiles = map[string]string{
	"core-admin": `{"core-admin": {
        "releases": {
            "3.2": {"branch": "release3.2", "dom0": {"fc25": ["old"]}, "vm": {}},
            "4.1": {"branch": "release4.1", "dom0": {"fc32": ["qubes-core-dom0"]}, "vm": {}},
            "4.2": {"branch": "main", "dom0": {"fc37": ["qubes-core-dom0"]}, "vm": {}}
        },
        "maintainers": ["marmarek"],
        "iso-component": 1
    }}`,
	"gui-agent-windows": `{"gui-agent-windows": {
        "releases": {"4.2": {"branch": "master", "dom0": {}, "vm": {}}},
        "maintainers": ["marmarek", "fepitre"]
    }}`,
	"builder-rpm": `{"builder-rpm": {
        "releases": {"4.2": {"branch": "master", "dom0": {}, "vm": {}}},
        "maintainers": ["fepitre"],
        "plugin": 1
    }}`,
	"core-agent-linux": `{"core-agent-linux": {
        "releases": {
            "4.1": {"branch": "master", "dom0": {}, "vm": {"fc34": ["qubes-core-agent"]}},
            "4.2": {"branch": "master", "dom0": {}, "vm": {"fc37": ["qubes-core-agent"], "bookworm": []}}
        }
    }}`,
}

type fakeVCS struct{}

func (fakeVCS) Checkout(context.Context, string, string) error { return nil }

type fakeExtractor struct {
	family dist.Family
	failOn string
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, src string, d dist.Distribution, set models.PackageSet) ([]models.Package, error) {
	name := filepath.Base(src)
	f.calls = append(f.calls, name+"/"+string(set)+"/"+d.Name)
	if name == f.failOn {
		return nil, errors.New("rpmspec failed")
	}
	return []models.Package{{Name: name + "-" + d.Name, Arches: []string{"x86_64"}}}, nil
}

func (f *fakeExtractor) Family() dist.Family { return f.family }

type fixture struct {
	cfg *models.Config
	rpm *fakeExtractor
	deb *fakeExtractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := &models.Config{
		ReleaseFile:   filepath.Join(root, "release.json"),
		ComponentsDir: filepath.Join(root, "components"),
		SourcesDir:    filepath.Join(root, "qubes-src"),
	}
	require.NoError(t, os.WriteFile(cfg.ReleaseFile, []byte(releaseFile), 0644))
	require.NoError(t, os.MkdirAll(cfg.ComponentsDir, 0755))
	for name, content := range componentFiles {
		require.NoError(t, os.WriteFile(cfg.ComponentFile(name), []byte(content), 0644))
		require.NoError(t, os.MkdirAll(cfg.SourcePath(name), 0755))
	}

	return &fixture{
		cfg: cfg,
		rpm: &fakeExtractor{family: dist.FamilyRPM},
		deb: &fakeExtractor{family: dist.FamilyDeb},
	}
}

func (f *fixture) load(t *testing.T) *Registry {
	t.Helper()
	r := New(f.cfg, component.Toolchain{VCS: fakeVCS{}, RPM: f.rpm, Deb: f.deb})
	require.NoError(t, r.Load())
	return r
}

func TestLoad(t *testing.T) {
	r := newFixture(t).load(t)

	assert.Equal(t, []string{"core-admin", "gui-agent-windows", "builder-rpm", "core-agent-linux"}, r.ComponentNames())
	assert.Equal(t, []string{"4.1", "4.2"}, r.Definition().ReleaseIDs())
	assert.Equal(t, []string{"fc37"}, dist.Names(r.Dom0("4.2")))
	assert.Equal(t, []string{"fc37", "bookworm", "whonix-gateway-17"}, dist.Names(r.VM("4.2")))
	assert.True(t, r.IsDevel("4.2"))
	assert.False(t, r.IsDevel("4.1"))
	assert.Nil(t, r.Component("missing-one"))
}

func TestReloadKeepsEarlierSlices(t *testing.T) {
	f := newFixture(t)
	r := f.load(t)

	before := r.ComponentsFromName([]string{All})
	names := make([]string, 0, len(before))
	for _, c := range before {
		names = append(names, c.Name)
	}

	require.NoError(t, os.Remove(f.cfg.ComponentFile("core-admin")))
	require.NoError(t, r.Load())

	assert.Equal(t, []string{"gui-agent-windows", "builder-rpm", "core-agent-linux"}, r.ComponentNames())
	after := make([]string, 0, len(before))
	for _, c := range before {
		after = append(after, c.Name)
	}
	assert.Equal(t, names, after)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing release file", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.ReleaseFile = filepath.Join(t.TempDir(), "nope.json")
		err := New(f.cfg, component.Toolchain{}).Load()
		require.Error(t, err)
		assert.True(t, models.IsType(err, models.ErrInvalidConfig))
	})

	t.Run("malformed release file", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.cfg.ReleaseFile, []byte("{"), 0644))
		err := New(f.cfg, component.Toolchain{}).Load()
		assert.True(t, models.IsType(err, models.ErrInvalidConfig))
	})

	t.Run("malformed component file", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.cfg.ComponentFile("builder-rpm"), []byte(`{"builder-rpm": []}`), 0644))
		err := New(f.cfg, component.Toolchain{}).Load()
		require.Error(t, err)
		assert.True(t, models.IsType(err, models.ErrInvalidConfig))
		assert.Contains(t, err.Error(), "builder-rpm")
	})
}

func TestComponentsFromName(t *testing.T) {
	r := newFixture(t).load(t)

	names := func(filter ...string) []string {
		var out []string
		for _, c := range r.ComponentsFromName(filter) {
			out = append(out, c.Name)
		}
		return out
	}

	assert.Equal(t, r.ComponentNames(), names("core-agent-linux", All))
	assert.Equal(t, []string{"core-agent-linux", "core-admin"}, names("core-agent-linux", "unknown", "core-admin"))
	assert.Empty(t, names("unknown"))
	assert.Empty(t, names())
}

func TestUpdateComponents(t *testing.T) {
	f := newFixture(t)
	r := f.load(t)

	require.NoError(t, r.UpdateComponents(context.Background(), []string{"core-admin"}))

	data, err := os.ReadFile(f.cfg.ComponentFile("core-admin"))
	require.NoError(t, err)
	file, err := component.Decode("core-admin", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"core-admin-fc32"}, file.Releases["4.1"].Dom0["fc32"])
	assert.Equal(t, []string{"core-admin-fc34"}, file.Releases["4.1"].VM["fc34"])
	assert.Equal(t, []string{"core-admin-bullseye"}, file.Releases["4.1"].VM["bullseye"])
	assert.Equal(t, []string{"core-admin-bookworm"}, file.Releases["4.2"].VM["bookworm"])
	assert.Equal(t, []string{}, file.Releases["4.2"].VM["whonix-gateway-17"])
	assert.Equal(t, "main", file.Releases["4.2"].Branch)
	assert.True(t, file.Options.ISOComponent.Set())

	// 3.2 is unknown to the release definition: kept, not refreshed
	assert.Equal(t, []string{"old"}, file.Releases["3.2"].Dom0["fc25"])
	assert.NotContains(t, f.rpm.calls, "core-admin/dom0/fc25")
}

func TestUpdateComponentsStopsAtFirstError(t *testing.T) {
	f := newFixture(t)
	f.rpm.failOn = "core-agent-linux"
	r := f.load(t)

	before := map[string][]byte{}
	for _, name := range []string{"core-agent-linux", "gui-agent-windows"} {
		data, err := os.ReadFile(f.cfg.ComponentFile(name))
		require.NoError(t, err)
		before[name] = data
	}

	err := r.UpdateComponents(context.Background(), []string{"core-admin", "core-agent-linux", "gui-agent-windows"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpmspec failed")

	// first component persisted
	data, err := os.ReadFile(f.cfg.ComponentFile("core-admin"))
	require.NoError(t, err)
	file, err := component.Decode("core-admin", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"core-admin-fc32"}, file.Releases["4.1"].Dom0["fc32"])

	// failing and following components untouched
	for name, want := range before {
		got, err := os.ReadFile(f.cfg.ComponentFile(name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
	for _, call := range append(f.rpm.calls, f.deb.calls...) {
		assert.NotContains(t, call, "gui-agent-windows")
	}
}

func TestAddComponent(t *testing.T) {
	f := newFixture(t)
	r := f.load(t)

	path, err := r.AddComponent("app-linux-split-gpg")
	require.NoError(t, err)
	assert.Equal(t, f.cfg.ComponentFile("app-linux-split-gpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"app-linux-split-gpg": {"releases": {
        "4.1": {"branch": "release4.1", "dom0": {}, "vm": {}},
        "4.2": {"branch": "master", "dom0": {}, "vm": {}}
    }}}`, string(data))

	_, err = r.AddComponent("core-admin")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrFileOp))

	data, err = os.ReadFile(f.cfg.ComponentFile("core-admin"))
	require.NoError(t, err)
	assert.Equal(t, componentFiles["core-admin"], string(data))
}
