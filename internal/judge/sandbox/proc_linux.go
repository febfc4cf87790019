//go:build linux

package sandbox

import "syscall"

// sysProcAttr puts the child in its own process group so a timeout kill
// reaches everything it spawned, and ties its lifetime to ours.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
