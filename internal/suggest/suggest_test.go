package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByLength_RanksByLengthDistance(t *testing.T) {
	got := ByLength("serial", []string{"timer", "serial_drv", "uart", "server"}, 3)
	require.Equal(t, []string{"server", "timer", "uart"}, got)
}

func TestByLength_TiesResolveLexicographically(t *testing.T) {
	got := ByLength("abc", []string{"zzz", "aaa", "mmm"}, 3)
	require.Equal(t, []string{"aaa", "mmm", "zzz"}, got)
}

func TestByLength_TruncatesToN(t *testing.T) {
	got := ByLength("x", []string{"a", "b", "c", "d"}, 3)
	require.Len(t, got, 3)
}

func TestByLength_EmptyCandidates(t *testing.T) {
	require.Empty(t, ByLength("x", nil, 3))
}

func TestByLength_DoesNotMutateInput(t *testing.T) {
	candidates := []string{"zz", "a", "yyy"}
	ByLength("a", candidates, 3)
	require.Equal(t, []string{"zz", "a", "yyy"}, candidates)
}
