package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandInjector(t *testing.T) {
	ctx := context.Background()

	t.Run("passes reply text on stdin", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.txt")
		inj := NewCommandInjector("cat > "+out, time.Second, zerolog.Nop())

		require.NoError(t, inj.Inject(ctx, "hello from slack"))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "hello from slack", string(data))
	})

	t.Run("command failure surfaces", func(t *testing.T) {
		inj := NewCommandInjector("exit 3", time.Second, zerolog.Nop())
		assert.Error(t, inj.Inject(ctx, "text"))
	})

	t.Run("no command configured", func(t *testing.T) {
		inj := NewCommandInjector("", time.Second, zerolog.Nop())
		assert.Error(t, inj.Inject(ctx, "text"))
	})

	t.Run("timeout kills the command", func(t *testing.T) {
		inj := NewCommandInjector("sleep 5", 100*time.Millisecond, zerolog.Nop())

		start := time.Now()
		err := inj.Inject(ctx, "text")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}

func TestPIDFile(t *testing.T) {
	t.Run("write, read, remove", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "listener.pid")

		require.NoError(t, WritePIDFile(path))
		assert.True(t, IsRunning(path), "our own pid is alive")

		pid, err := ReadPID(path)
		require.NoError(t, err)
		assert.Equal(t, os.Getpid(), pid)

		RemovePIDFile(path)
		assert.False(t, IsRunning(path))
	})

	t.Run("stale pid is not running", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "listener.pid")
		// Huge pid that cannot exist
		require.NoError(t, os.WriteFile(path, []byte("99999999"), 0600))
		assert.False(t, IsRunning(path))
	})

	t.Run("garbage pidfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "listener.pid")
		require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0600))
		assert.False(t, IsRunning(path))
	})
}
