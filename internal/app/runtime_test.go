package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefreshTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "true")
	require.True(t, RefreshTestMode())
	require.True(t, InTestMode())

	t.Setenv(testModeEnv, "nope")
	require.False(t, RefreshTestMode())
	require.False(t, InTestMode())

	t.Setenv(testModeEnv, "1")
	require.True(t, RefreshTestMode())
}
