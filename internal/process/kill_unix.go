//go:build !windows

// Package process stops a launched browser together with its helper
// processes.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid.
// Non-positive PIDs are ignored: -0 would target our own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// The launcher's own Kill runs afterwards, so the error is not needed.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
