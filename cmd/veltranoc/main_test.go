package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.vl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestBuildSucceedsOnValidSource(t *testing.T) {
	path := writeSource(t, "fun main() {\n    println(\"hi\")\n}\n")
	code := run([]string{"build", path})
	require.Equal(t, ExitSuccess, code)
}

func TestCheckSucceedsOnValidSource(t *testing.T) {
	path := writeSource(t, "fun main() {\n    val x = 1\n}\n")
	code := run([]string{"check", path})
	require.Equal(t, ExitSuccess, code)
}

func TestCheckReportsDiagnosticsOnUndefinedVariable(t *testing.T) {
	path := writeSource(t, "fun main() {\n    println(missing)\n}\n")
	code := run([]string{"check", path})
	require.Equal(t, ExitDiagnostics, code)
}

func TestBuildFailsOnMissingFile(t *testing.T) {
	code := run([]string{"build", filepath.Join(t.TempDir(), "does-not-exist.vl")})
	require.Equal(t, ExitIOError, code)
}

func TestRunRejectsUnknownSubcommand(t *testing.T) {
	code := run([]string{"frobnicate"})
	require.Equal(t, ExitInvalidArguments, code)
}
