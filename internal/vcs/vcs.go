// Package vcs switches component checkouts between branches.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// VCS checks out a branch of a component source tree
type VCS interface {
	Checkout(ctx context.Context, dir, branch string) error
}

// Git implements VCS with the git command line
type Git struct {
	// Binary is the git executable, "git" when empty
	Binary string
}

// NewGit creates a Git VCS using git from PATH
func NewGit() *Git {
	return &Git{Binary: "git"}
}

// Checkout runs "git checkout" for branch in dir
func (g *Git) Checkout(ctx context.Context, dir, branch string) error {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-C", dir, "checkout", "-q", branch)
	cmd.Stderr = &stderr

	logrus.Debugf("Checking out %s in %s", branch, dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git checkout %s: %w: %s", branch, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
