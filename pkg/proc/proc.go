// Package proc lists processes from a procfs mount.
package proc

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"sort"
	"syscall"

	"github.com/prometheus/procfs"
)

// DefaultRoot is where procfs is normally mounted.
const DefaultRoot = "/proc"

const commandSize = 256

type Process struct {
	PID     int
	Command string
}

// List returns every process under root ordered by PID. Processes that exit
// while they are being listed are skipped.
func List(root string) ([]Process, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", root, err)
	}

	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", root, err)
	}

	processes := make([]Process, 0, len(procs))
	for _, p := range procs {
		command, err := p.Comm()
		if errors.Is(err, iofs.ErrNotExist) || errors.Is(err, syscall.ESRCH) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read command of %d: %w", p.PID, err)
		}

		processes = append(processes, Process{PID: p.PID, Command: truncate(command)})
	}

	sort.Slice(processes, func(i, j int) bool {
		return processes[i].PID < processes[j].PID
	})

	return processes, nil
}

// truncate bounds a command name to what a single comm read returns.
func truncate(command string) string {
	if len(command) > commandSize-1 {
		return command[:commandSize-1]
	}

	return command
}

// Fprint writes processes in the classic ps layout.
func Fprint(w io.Writer, processes []Process) error {
	if _, err := fmt.Fprintln(w, "   PID CMD"); err != nil {
		return err
	}

	for _, process := range processes {
		if _, err := fmt.Fprintf(w, " %5d %s\n", process.PID, process.Command); err != nil {
			return err
		}
	}

	return nil
}
