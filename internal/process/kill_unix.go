//go:build !windows

// Package process terminates the browser process trees left behind by
// diagram rendering.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, which
// takes Chrome's renderer and GPU children down with it. Non-positive pids
// are ignored: -0 would signal our own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; launcher.Cleanup runs afterwards either way.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
