package core

import "github.com/dustin/go-humanize"

// FormatSize renders a byte count in IEC units ("1.5 MiB", "12 GiB").
// Negative counts render as zero.
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
