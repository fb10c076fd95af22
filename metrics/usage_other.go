//go:build !linux && !darwin && !freebsd

package metrics

import "time"

func cpuTime() (time.Duration, error) {
	return 0, ErrUnsupported
}

func diskUsage(path string) (total, free uint64, err error) {
	return 0, 0, ErrUnsupported
}
