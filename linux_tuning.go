package uringcp

import (
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

func setProcessPriority() error {
	pid := os.Getpid()

	if err := syscall.Setpriority(syscall.PRIO_PROCESS, pid, -19); err != nil {
		return os.NewSyscallError("setpriority", err)
	}

	return nil
}

func setAffinity(cpu int) error {
	var newMask unix.CPUSet
	newMask.Zero()
	cpuIndex := cpu % runtime.NumCPU()
	newMask.Set(cpuIndex)
	err := unix.SchedSetaffinity(0, &newMask)
	if err != nil {
		return fmt.Errorf("SchedSetaffinity: %w, %v", err, newMask)
	}

	return nil
}

// tuneThread applies the thread and process settings of config to the calling
// goroutine. The returned function undoes the thread lock.
func tuneThread(config Config) (func(), error) {
	if config.ProcessPriority {
		if err := setProcessPriority(); err != nil {
			return nil, err
		}
	}

	if !config.LockOSThread {
		return func() {}, nil
	}

	runtime.LockOSThread()
	if config.CPUAffinity >= 0 {
		if err := setAffinity(config.CPUAffinity); err != nil {
			runtime.UnlockOSThread()

			return nil, err
		}
	}

	return runtime.UnlockOSThread, nil
}
