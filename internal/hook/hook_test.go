package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waiterix/earshot/internal/config"
)

func TestRunnerDisabledWithoutCommand(t *testing.T) {
	runner := NewRunner(config.CommandConfig{}, nil)
	require.False(t, runner.Enabled())

	// Must be a no-op, not a panic.
	runner.Fire(context.Background(), "hey waiterix")
}

func TestRunnerWritesPhraseToStdin(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "phrase.txt")
	runner := NewRunner(config.CommandConfig{
		Raw:  "sh -c cat > " + outPath,
		Argv: []string{"sh", "-c", "cat > " + outPath},
	}, nil)
	require.True(t, runner.Enabled())

	runner.Fire(context.Background(), "hey waiterix")

	contents, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "hey waiterix", string(contents))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "x")
	require.Error(t, err)
}

func TestRunCommandWithInputReportsFailure(t *testing.T) {
	err := runCommandWithInput(context.Background(), []string{"false"}, "")
	require.Error(t, err)
}
