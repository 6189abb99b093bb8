package proc

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
)

func TestTaskkillBenign(t *testing.T) {
	if taskkillBenign(nil) {
		t.Error("nil error reported benign")
	}
	if taskkillBenign(errors.New("boom")) {
		t.Error("plain error reported benign")
	}

	// Exit code 128 is taskkill's "no such process".
	err := exec.Command("cmd", "/c", "exit 128").Run()
	if err == nil {
		t.Skip("cmd unavailable")
	}
	if !taskkillBenign(err) {
		t.Errorf("exit 128 not treated as benign: %v", err)
	}

	err = exec.Command("cmd", "/c", "exit 1").Run()
	if err != nil && taskkillBenign(err) {
		t.Errorf("exit 1 treated as benign: %v", err)
	}
}

func TestListAndRunning(t *testing.T) {
	ctx := context.Background()

	absent := browser.Browser{
		ID:           "test",
		Name:         "Test",
		ProcessNames: []string{"sitemole-test-no-such-process.exe"},
	}
	procs, err := List(ctx, absent)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(procs) != 0 {
		t.Errorf("found %d processes for a nonexistent image", len(procs))
	}
	if Running(ctx, absent) {
		t.Error("nonexistent image reported running")
	}

	// The test binary itself must be visible.
	exe, err := os.Executable()
	if err != nil {
		t.Skip("no executable path")
	}
	self := browser.Browser{
		ID:           "self",
		Name:         "Self",
		ProcessNames: []string{filepath.Base(exe)},
	}
	if !Running(ctx, self) {
		t.Error("own process not reported running")
	}
}

func TestWaitExitTimesOut(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skip("no executable path")
	}
	self := browser.Browser{
		ID:           "self",
		Name:         "Self",
		ProcessNames: []string{filepath.Base(exe)},
	}

	start := time.Now()
	err = WaitExit(context.Background(), self, 600*time.Millisecond)
	if !errors.Is(err, ErrStillRunning) {
		t.Fatalf("WaitExit = %v, want ErrStillRunning", err)
	}
	if elapsed := time.Since(start); elapsed < 600*time.Millisecond {
		t.Errorf("WaitExit returned after %s, before the timeout", elapsed)
	}
}

func TestWaitExitImmediate(t *testing.T) {
	absent := browser.Browser{
		ID:           "test",
		Name:         "Test",
		ProcessNames: []string{"sitemole-test-no-such-process.exe"},
	}
	if err := WaitExit(context.Background(), absent, time.Second); err != nil {
		t.Fatalf("WaitExit: %v", err)
	}
}

func TestWaitExitHonorsContext(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skip("no executable path")
	}
	self := browser.Browser{
		ID:           "self",
		Name:         "Self",
		ProcessNames: []string{filepath.Base(exe)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitExit(ctx, self, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("WaitExit = %v, want context.Canceled", err)
	}
}
