package safety

import (
	"os"

	"github.com/shirou/gopsutil/v4/disk"
)

// FreeDiskBytes returns the free space on the filesystem holding path,
// or -1 when the path is not visible from this host. Running against a
// remote server is the normal reason for that, so callers treat -1 as
// "check unavailable" rather than an error.
func FreeDiskBytes(path string) int64 {
	if _, err := os.Stat(path); err != nil {
		return -1
	}
	usage, err := disk.Usage(path)
	if err != nil {
		return -1
	}
	return int64(usage.Free)
}
