package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.apk-group.net/hosting/backend/wordpress-ops/internal/remote"
)

func TestLocalExecutor_Execute(t *testing.T) {
	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	res, err := executor.Execute(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestLocalExecutor_Execute_NonZeroExitIsNotAnError(t *testing.T) {
	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	res, err := executor.Execute(context.Background(), "exit 3")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.ExitCode)
}

func TestLocalExecutor_Execute_FoldsStderr(t *testing.T) {
	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	res, err := executor.Execute(context.Background(), "echo oops >&2; exit 1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Stdout, "oops")
}

func TestLocalExecutor_FileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wp-login.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php"), 0o644))

	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	ctx := context.Background()

	ok, err := executor.FileExists(ctx, file)
	require.NoError(t, err)
	assert.True(t, ok)

	// A directory is not a file and vice versa.
	ok, err = executor.FileExists(ctx, dir)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = executor.DirectoryExists(ctx, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = executor.DirectoryExists(ctx, file)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = executor.FileExists(ctx, filepath.Join(dir, "missing.php"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalExecutor_ExpandWildcard(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"site-b", "site-a", "site-c"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name, "public_html"), 0o755))
	}

	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	paths, err := executor.ExpandWildcard(context.Background(), filepath.Join(root, "*", "public_html"))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// Results come back sorted regardless of creation order.
	assert.Equal(t, filepath.Join(root, "site-a", "public_html"), paths[0])
	assert.Equal(t, filepath.Join(root, "site-b", "public_html"), paths[1])
	assert.Equal(t, filepath.Join(root, "site-c", "public_html"), paths[2])
}

func TestLocalExecutor_ExpandWildcard_NoMatches(t *testing.T) {
	executor := remote.NewLocalExecutor(remote.Options{})
	defer executor.Close()

	paths, err := executor.ExpandWildcard(context.Background(), filepath.Join(t.TempDir(), "*", "public_html"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestIsLocalHost(t *testing.T) {
	assert.True(t, remote.IsLocalHost(""))
	assert.True(t, remote.IsLocalHost("localhost"))
	assert.True(t, remote.IsLocalHost("LOCALHOST"))
	assert.True(t, remote.IsLocalHost("127.0.0.1"))
	assert.True(t, remote.IsLocalHost("::1"))
	assert.True(t, remote.IsLocalHost("  localhost  "))

	assert.False(t, remote.IsLocalHost("10.0.0.5"))
	assert.False(t, remote.IsLocalHost("web01.example.com"))
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'/var/www/html'", remote.ShellQuote("/var/www/html"))
	assert.Equal(t, `'/var/www/o'\''brien'`, remote.ShellQuote("/var/www/o'brien"))
	assert.Equal(t, "'$(rm -rf /)'", remote.ShellQuote("$(rm -rf /)"))
}
