// Package metrics holds the data-fetch side of the dashboard: the queries it
// polls and the poller that feeds their results into the render loop.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

var ErrUnsupported = errors.New("metrics: not supported on this platform")

// Source answers the dashboard's queries. Implementations must not have
// side effects beyond reading; each call may fail independently.
type Source interface {
	CPUInfo(ctx context.Context) (string, error)
	CPUDetails(ctx context.Context) (string, error)
	RAMInfo(ctx context.Context) (string, error)
	RAMDetails(ctx context.Context) (string, error)
	DiskInfo(ctx context.Context) (string, error)
	DiskDetails(ctx context.Context) (string, error)
}

// ProcessSource reports on the running process and the filesystem holding
// DiskPath.
type ProcessSource struct {
	diskPath string
	now      func() time.Time

	mu       sync.Mutex
	lastCPU  time.Duration
	lastWall time.Time
}

func NewProcessSource(diskPath string) *ProcessSource {
	s := &ProcessSource{diskPath: diskPath, now: time.Now}
	s.lastWall = s.now()
	s.lastCPU, _ = cpuTime()
	return s
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func (s *ProcessSource) CPUInfo(ctx context.Context) (string, error) {
	used, err := cpuTime()
	if err != nil {
		return "", fmt.Errorf("cpu time: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	wall := now.Sub(s.lastWall)
	delta := used - s.lastCPU
	s.lastWall, s.lastCPU = now, used
	if wall <= 0 {
		return "CPU: 0.0%", nil
	}
	pct := float64(delta) / float64(wall) / float64(runtime.NumCPU()) * 100
	return fmt.Sprintf("CPU: %.1f%%", round1(pct)), nil
}

func (s *ProcessSource) CPUDetails(ctx context.Context) (string, error) {
	return fmt.Sprintf("Cores: %d\nGoroutines: %d", runtime.NumCPU(), runtime.NumGoroutine()), nil
}

func (s *ProcessSource) RAMInfo(ctx context.Context) (string, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.Sys == 0 {
		return "RAM: 0.0%", nil
	}
	return fmt.Sprintf("RAM: %.1f%%", round1(float64(ms.HeapInuse)/float64(ms.Sys)*100)), nil
}

func (s *ProcessSource) RAMDetails(ctx context.Context) (string, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return fmt.Sprintf("Used: %s\nTotal: %s", humanize.Bytes(ms.HeapInuse), humanize.Bytes(ms.Sys)), nil
}

func (s *ProcessSource) DiskInfo(ctx context.Context) (string, error) {
	total, free, err := diskUsage(s.diskPath)
	if err != nil {
		return "", fmt.Errorf("disk usage of %s: %w", s.diskPath, err)
	}
	if total == 0 {
		return "Disk: 0.0%", nil
	}
	return fmt.Sprintf("Disk: %.1f%%", round1(float64(total-free)/float64(total)*100)), nil
}

func (s *ProcessSource) DiskDetails(ctx context.Context) (string, error) {
	total, free, err := diskUsage(s.diskPath)
	if err != nil {
		return "", fmt.Errorf("disk usage of %s: %w", s.diskPath, err)
	}
	return fmt.Sprintf("Used: %s\nTotal: %s", humanize.Bytes(total-free), humanize.Bytes(total)), nil
}
