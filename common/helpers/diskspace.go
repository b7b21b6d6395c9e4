package helpers

import (
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/disk"
)

/*
*
returns the percentage of space in use on the volume holding the given path,
rounded to one decimal place.
this is advisory data for the scanning concurrency gate; an error here means
the volume could not be statted at all.
*/
func DiskUsedPercent(forPath string) (float64, error) {
	usage, statErr := disk.Usage(forPath)
	if statErr != nil {
		return 0, fmt.Errorf("could not stat volume for %s: %s", forPath, statErr)
	}

	return math.Round(usage.UsedPercent*10) / 10, nil
}
