package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringIncludesBuildMetadata(t *testing.T) {
	s := String()
	require.Contains(t, s, "earshot ")
	require.Contains(t, s, Version)
	require.Contains(t, s, "commit="+Commit)
	require.Contains(t, s, "go="+runtime.Version())
}
