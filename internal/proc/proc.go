package proc

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/yusufpapurcu/wmi"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
)

// killTimeout caps each taskkill invocation.
const killTimeout = 10 * time.Second

// pollInterval is how often WaitExit rechecks the process list.
const pollInterval = 500 * time.Millisecond

// ErrStillRunning is returned when the browser survives a kill.
var ErrStillRunning = errors.New("browser processes still running")

// Info is one running browser process.
type Info struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// List returns the browser's live processes. Processes whose name cannot be
// read (access denied on protected processes) are skipped.
func List(ctx context.Context, b browser.Browser) ([]Info, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var out []Info
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		for _, want := range b.ProcessNames {
			if strings.EqualFold(name, want) {
				out = append(out, Info{PID: p.Pid, Name: name})
				break
			}
		}
	}
	return out, nil
}

// win32Process mirrors the WMI Win32_Process fields we query.
type win32Process struct {
	ProcessId uint32
	Name      string
}

// listWMI enumerates browser processes via WMI. Fallback for when the
// toolhelp snapshot behind gopsutil fails.
func listWMI(b browser.Browser) ([]Info, error) {
	var out []Info
	for _, name := range b.ProcessNames {
		var dst []win32Process
		q := fmt.Sprintf("SELECT ProcessId, Name FROM Win32_Process WHERE Name = '%s'", name)
		if err := wmi.Query(q, &dst); err != nil {
			return nil, fmt.Errorf("wmi query: %w", err)
		}
		for _, p := range dst {
			out = append(out, Info{PID: int32(p.ProcessId), Name: p.Name})
		}
	}
	return out, nil
}

// Running reports whether any of the browser's processes is alive. When
// both enumeration paths fail the browser is assumed running; deleting a
// profile under a possibly live browser is the failure mode to avoid.
func Running(ctx context.Context, b browser.Browser) bool {
	if procs, err := List(ctx, b); err == nil {
		return len(procs) > 0
	}
	if procs, err := listWMI(b); err == nil {
		return len(procs) > 0
	}
	return true
}

// Kill force-terminates the browser: taskkill /F /T per image name takes
// the whole process tree down, then a direct kill pass sweeps stragglers.
// Returns the number of processes observed before the kill.
func Kill(ctx context.Context, b browser.Browser) (int, error) {
	before, err := List(ctx, b)
	if err != nil {
		if before, err = listWMI(b); err != nil {
			before = nil
		}
	}

	for _, name := range b.ProcessNames {
		killCtx, cancel := context.WithTimeout(ctx, killTimeout)
		out, runErr := exec.CommandContext(killCtx, "taskkill", "/F", "/IM", name, "/T").CombinedOutput()
		cancel()
		if runErr != nil && !taskkillBenign(runErr) {
			return len(before), fmt.Errorf("taskkill %s: %w (%s)", name, runErr, strings.TrimSpace(string(out)))
		}
	}

	// Sweep processes taskkill missed (spawned mid-kill, detached trees).
	if stragglers, listErr := List(ctx, b); listErr == nil {
		for _, s := range stragglers {
			p, procErr := process.NewProcessWithContext(ctx, s.PID)
			if procErr != nil {
				continue
			}
			if termErr := p.TerminateWithContext(ctx); termErr != nil {
				_ = p.KillWithContext(ctx)
			}
		}
	}

	return len(before), nil
}

// taskkillBenign reports whether a taskkill failure just means there was
// nothing to kill. Exit code 128 is "process not found".
func taskkillBenign(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 128
	}
	return false
}

// WaitExit polls until every browser process is gone or the timeout
// elapses.
func WaitExit(ctx context.Context, b browser.Browser, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if !Running(ctx, b) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s", ErrStillRunning, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// EnsureClosed kills the browser and waits for it to exit.
func EnsureClosed(ctx context.Context, b browser.Browser, timeout time.Duration) (int, error) {
	killed, err := Kill(ctx, b)
	if err != nil {
		return killed, err
	}
	return killed, WaitExit(ctx, b, timeout)
}
