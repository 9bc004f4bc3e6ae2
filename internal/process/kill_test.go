package process

// Notes:
// - Real group kills are covered by the browser integration tests; unit
//   tests only use PIDs that cannot hit a live process.

import "testing"

func TestKillProcessGroup_IgnoresNonPositive(t *testing.T) {
	t.Parallel()

	// Must return without signalling our own process group.
	KillProcessGroup(0)
	KillProcessGroup(-1)
}

func TestKillProcessGroup_UnknownPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}
