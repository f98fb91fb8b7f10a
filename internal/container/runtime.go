// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs document-conversion images through whichever
// container runtime (docker or podman) is installed.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides the container operations the converters need.
type Runtime interface {
	// Name returns the runtime binary name ("docker" or "podman").
	Name() string

	// Available reports whether the binary is on PATH and answers "info".
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes image with stdin piped in and stdout captured. The
	// container's stderr is folded into the returned error on failure.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime implements Runtime for one binary. Docker and Podman differ only
// in the subcommand used to check for an image.
type runtime struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.bin, "info") == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := r.exec.RunSilent(ctx, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	args := []string{"run", "--rm", "-i", "--network", "none", image}
	if err := r.exec.RunPiped(ctx, r.bin, args, stdin, stdout, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s container %s: %w: %s", r.bin, image, err, msg)
		}
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newRuntime(bin string, exec executor) (*runtime, error) {
	switch bin {
	case binDocker:
		return &runtime{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, exec: exec}, nil
	case binPodman:
		return &runtime{bin: binPodman, imageCheckCmd: []string{"image", "exists"}, exec: exec}, nil
	default:
		return nil, fmt.Errorf("unsupported container runtime %q: use %s or %s", bin, binDocker, binPodman)
	}
}

// DetectRuntime returns the preferred runtime when it is named and
// operational; with an empty preference it tries docker, then podman.
func DetectRuntime(ctx context.Context, preferred string) (Runtime, error) {
	return detectRuntime(ctx, osExecutor{}, preferred)
}

func detectRuntime(ctx context.Context, exec executor, preferred string) (Runtime, error) {
	candidates := []string{binDocker, binPodman}
	if preferred != "" {
		candidates = []string{preferred}
	}

	for _, bin := range candidates {
		rt, err := newRuntime(bin, exec)
		if err != nil {
			return nil, err
		}
		if rt.Available(ctx) {
			return rt, nil
		}
	}

	return nil, fmt.Errorf("no container runtime available: tried %s",
		strings.Join(candidates, ", "))
}
