package makefile

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueWithoutBuilderFile(t *testing.T) {
	r := NewMakeResolver()

	v, err := r.Value(context.Background(), t.TempDir(), "RPM_SPEC_FILES", nil)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestValue(t *testing.T) {
	if _, err := exec.LookPath("make"); err != nil {
		t.Skip("make not available")
	}

	src := t.TempDir()
	builder := `ifeq ($(PACKAGE_SET),dom0)
RPM_SPEC_FILES := rpm_spec/dom0.spec
else ifeq ($(PACKAGE_SET),vm)
ifneq ($(filter $(DISTRIBUTION), debian),)
DEBIAN_BUILD_DIRS := debian-$(DIST)
endif
RPM_SPEC_FILES := rpm_spec/vm.spec rpm_spec/vm-extra.spec
endif
`
	require.NoError(t, os.WriteFile(filepath.Join(src, BuilderFile), []byte(builder), 0o644))

	r := NewMakeResolver()
	ctx := context.Background()

	v, err := r.Value(ctx, src, "RPM_SPEC_FILES", Env(map[string]string{"PACKAGE_SET": "vm"}))
	require.NoError(t, err)
	assert.Equal(t, "rpm_spec/vm.spec rpm_spec/vm-extra.spec", v)

	v, err = r.Value(ctx, src, "DEBIAN_BUILD_DIRS", Env(map[string]string{
		"PACKAGE_SET":  "vm",
		"DISTRIBUTION": "debian",
		"DIST":         "bookworm",
	}))
	require.NoError(t, err)
	assert.Equal(t, "debian-bookworm", v)

	// The wrapper makefile must not be left behind.
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
