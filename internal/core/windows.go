package core

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// WindowsVersion returns the major, minor, and build numbers of the running
// Windows. RtlGetNtVersionNumbers reports the true version without needing
// a compatibility manifest.
func WindowsVersion() (major, minor, build uint32) {
	major, minor, build = windows.RtlGetNtVersionNumbers()
	// The build number carries flag bits in the high word; mask them off.
	build &= 0xFFFF
	return major, minor, build
}

// WindowsVersionString returns a display string like "Windows 11 (Build 22631)".
func WindowsVersionString() string {
	major, minor, build := WindowsVersion()

	var name string
	switch {
	case major == 10 && build >= 22000:
		name = "Windows 11"
	case major == 10:
		name = "Windows 10"
	default:
		name = fmt.Sprintf("Windows %d.%d", major, minor)
	}
	return fmt.Sprintf("%s (Build %d)", name, build)
}

// IsElevated reports whether the current process runs with administrator
// privileges. Browser data lives under the user profile, so elevation is
// not required; this only feeds status output.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
