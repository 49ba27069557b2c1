package appointments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusScheduled, StatusConfirmed))
	require.True(t, CanTransition(StatusScheduled, StatusInProgress))
	require.True(t, CanTransition(StatusConfirmed, StatusInProgress))
	require.True(t, CanTransition(StatusInProgress, StatusCompleted))

	// Terminal states never move.
	require.False(t, CanTransition(StatusCompleted, StatusInProgress))
	require.False(t, CanTransition(StatusCancelled, StatusScheduled))
	require.False(t, CanTransition(StatusNoShow, StatusConfirmed))

	// No backwards moves.
	require.False(t, CanTransition(StatusInProgress, StatusScheduled))
	require.False(t, CanTransition(StatusConfirmed, StatusScheduled))
}
