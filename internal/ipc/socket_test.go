package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRuntimeSocketPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	path, err := RuntimeSocketPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "earshot.sock"), path)
}

func TestRuntimeSocketPathRequiresRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	_, err := RuntimeSocketPath()
	require.Error(t, err)
}

func TestAcquireFreshSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earshot.sock")

	listener, err := Acquire(context.Background(), path, 100*time.Millisecond, 2)
	require.NoError(t, err)
	require.NoError(t, listener.Close())
}

func TestAcquireReclaimsStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earshot.sock")

	// A bound-then-closed unix socket leaves a stale file behind only if we
	// recreate it manually, which is what a crashed daemon looks like.
	stale, err := net.Listen("unix", path)
	require.NoError(t, err)
	require.NoError(t, stale.Close())
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	listener, err := Acquire(context.Background(), path, 100*time.Millisecond, 2)
	require.NoError(t, err)
	require.NoError(t, listener.Close())
}

func TestAcquireDetectsLiveDaemon(t *testing.T) {
	path := startServer(t, HandlerFunc(func(context.Context, Request) Response {
		return Response{OK: true, State: "idle"}
	}))

	_, err := Acquire(context.Background(), path, time.Second, 1)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}
