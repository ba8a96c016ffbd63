// Package makefile reads variables out of a component's Makefile.builder.
package makefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// BuilderFile is the name of the build definition in a component checkout
const BuilderFile = "Makefile.builder"

// Resolver evaluates a make variable for a component
type Resolver interface {
	// Value returns the expanded value of variable as seen by the component's
	// Makefile.builder. A component without Makefile.builder yields "".
	Value(ctx context.Context, sourcePath, variable string, env []string) (string, error)
}

// wrapper is written next to Makefile.builder and includes it so that the
// print-% rule can expand any variable.
const wrapper = `
ORIG_SRC ?= %[1]s
ifneq (,$(findstring mgmt-salt-,$(COMPONENT)))
include $(ORIG_SRC)/../mgmt-salt/Makefile.builder
endif
GITHUB_STATE_DIR = $(HOME)/github-notify-state
include %[2]s

print-%%  : ; @echo $($*)
`

// MakeResolver runs GNU make to expand variables
type MakeResolver struct {
	// Make is the make binary, "make" when empty
	Make string
}

// NewMakeResolver creates a resolver using make from PATH
func NewMakeResolver() *MakeResolver {
	return &MakeResolver{Make: "make"}
}

// Value implements Resolver
func (r *MakeResolver) Value(ctx context.Context, sourcePath, variable string, env []string) (string, error) {
	makefile := filepath.Join(sourcePath, BuilderFile)
	if _, err := os.Stat(makefile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("No %s in %s", BuilderFile, sourcePath)
			return "", nil
		}
		return "", err
	}

	tmp, err := os.CreateTemp(sourcePath, ".buildmeta-*.mk")
	if err != nil {
		return "", fmt.Errorf("failed to create wrapper makefile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintf(tmp, wrapper, sourcePath, makefile); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write wrapper makefile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	bin := r.Make
	if bin == "" {
		bin = "make"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-f", tmp.Name(), "print-"+variable)
	cmd.Dir = sourcePath
	cmd.Env = env
	cmd.Stderr = &stderr

	logrus.Debugf("Resolving %s in %s", variable, sourcePath)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("make print-%s failed: %w: %s", variable, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(string(out), "\n"), nil
}

// Env builds an environment for make from the current process environment
// plus the given overrides.
func Env(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
