// Package fixture compiles generated Rust with rustc for integration
// tests. It is a thin external-collaborator shim, not part of the
// transpiler's core pipeline: tests use it to confirm emitted code is
// actually valid Rust, not just structurally plausible.
//
// Grounded on pkgs/execution/context.go's executeShellInterpreter:
// exec.CommandContext, an optional working directory, captured
// stdout/stderr, and the command's error wrapped with context.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// CompileResult is what a compile attempt produced.
type CompileResult struct {
	Stdout     string
	Stderr     string
	Err        error
	BinaryPath string
}

// Compile writes src to a temporary crate file and invokes
// "rustc --edition 2021" against it, returning the produced binary's path
// on success. The caller owns cleanup of the returned directory.
func Compile(ctx context.Context, src string, extraArgs ...string) (*CompileResult, error) {
	dir, err := os.MkdirTemp("", "veltrano-fixture-*")
	if err != nil {
		return nil, fmt.Errorf("fixture: create temp dir: %w", err)
	}

	srcPath := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		return nil, fmt.Errorf("fixture: write source: %w", err)
	}

	binPath := filepath.Join(dir, "main")
	args := append([]string{"--edition", "2021", "-o", binPath, srcPath}, extraArgs...)

	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "rustc", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := &CompileResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Err:        runErr,
		BinaryPath: binPath,
	}
	if runErr != nil {
		return result, fmt.Errorf("fixture: rustc failed: %w\n%s", runErr, stderr.String())
	}
	return result, nil
}

// Run executes a previously compiled binary, returning its combined
// stdout/stderr.
func Run(ctx context.Context, binaryPath string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binaryPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("fixture: run %s: %w", binaryPath, err)
	}
	return string(out), nil
}

// Available reports whether rustc is reachable on PATH, so integration
// tests can skip gracefully in environments without a Rust toolchain.
func Available() bool {
	_, err := exec.LookPath("rustc")
	return err == nil
}
