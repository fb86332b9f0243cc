package interop_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSourceQuerier_ScansInherentMethods(t *testing.T) {
	ws := t.TempDir()
	crateDir := filepath.Join(ws, "mycrate")
	writeFile(t, filepath.Join(crateDir, "Cargo.toml"), "[package]\nname = \"mycrate\"\nversion = \"0.3.1\"\n")
	writeFile(t, filepath.Join(crateDir, "src", "lib.rs"), `
pub struct Widget {
    name: String,
}

impl Widget {
    pub fn new(name: String) -> Widget {
        Widget { name }
    }

    pub fn describe(&self) -> String {
        self.name.clone()
    }
}
`)

	q := interop.NewSourceQuerier([]string{ws})
	assert.True(t, q.SupportsCrate("mycrate"))

	info, err := q.QueryCrate(context.Background(), "mycrate")
	require.NoError(t, err)
	require.Contains(t, info.Types, interop.RustTypePath("Widget"))

	methods := info.Types["Widget"].Methods
	assert.Contains(t, methods, "new")
	assert.Contains(t, methods, "describe")
}

func TestSourceQuerier_UnsupportedCrate(t *testing.T) {
	q := interop.NewSourceQuerier([]string{t.TempDir()})
	assert.False(t, q.SupportsCrate("nonexistent"))
}
