// Package testutils holds fixtures shared by the barrel package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/barrel/internal/config"
	"github.com/conneroisu/barrel/internal/source"
)

// MemTree creates an in-memory tree. Keys are absolute paths; a key ending
// in "/" creates an empty directory.
func MemTree(t testing.TB, files map[string]string) *source.FS {
	t.Helper()
	src := source.NewMemory()
	WriteTree(t, src.Fs(), files)
	return src
}

// WriteTree writes files into fs.
func WriteTree(t testing.TB, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if path[len(path)-1] == '/' {
			require.NoError(t, fs.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

// CreateTempProject lays files out under a fresh temporary directory. Keys
// are relative paths. It returns the project root.
func CreateTempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	abs := make(map[string]string, len(files))
	for path, content := range files {
		abs[filepath.Join(root, path)+trailingSlash(path)] = content
	}
	WriteTree(t, afero.NewOsFs(), abs)
	return root
}

func trailingSlash(path string) string {
	if path != "" && path[len(path)-1] == '/' {
		return "/"
	}
	return ""
}

// Settings compiles the default configuration after applying mutate.
func Settings(t testing.TB, mutate func(c *config.BarrelConfig)) *config.Settings {
	t.Helper()
	cfg := config.Default().Barrel
	if mutate != nil {
		mutate(&cfg)
	}
	settings, err := cfg.Compile()
	require.NoError(t, err)
	return settings
}

// NoHeader is a Settings mutator that disables the header comment.
func NoHeader(c *config.BarrelConfig) {
	c.IncludeHeader = false
}

// ReadText reads path from src and fails the test on error.
func ReadText(t testing.TB, src source.Source, path string) string {
	t.Helper()
	text, err := src.ReadText(path)
	require.NoError(t, err)
	return text
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// WaitForFileContent waits for the file at path to hold want (useful for
// testing the watcher).
func WaitForFileContent(t *testing.T, path, want string, timeout time.Duration) {
	t.Helper()
	WaitFor(t, timeout, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == want
	}, "content of "+path)
}
