package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

var errNoSamples = errors.New("no cpu samples")

// SystemSource reports host-wide usage.
type SystemSource struct {
	diskPath string
}

func NewSystemSource(diskPath string) *SystemSource {
	return &SystemSource{diskPath: diskPath}
}

// CPUInfo is the usage since the previous call.
func (s *SystemSource) CPUInfo(ctx context.Context) (string, error) {
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return "", fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return "", errNoSamples
	}
	return fmt.Sprintf("CPU: %.1f%%", round1(pct[0])), nil
}

func (s *SystemSource) CPUDetails(ctx context.Context) (string, error) {
	cores, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return "", fmt.Errorf("cpu cores: %w", err)
	}
	threads, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return "", fmt.Errorf("cpu threads: %w", err)
	}
	return fmt.Sprintf("Cores: %d\nThreads: %d", cores, threads), nil
}

func (s *SystemSource) RAMInfo(ctx context.Context) (string, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("virtual memory: %w", err)
	}
	return fmt.Sprintf("RAM: %.1f%%", round1(vm.UsedPercent)), nil
}

func (s *SystemSource) RAMDetails(ctx context.Context) (string, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("virtual memory: %w", err)
	}
	return fmt.Sprintf("Used: %s\nTotal: %s", humanize.IBytes(vm.Used), humanize.IBytes(vm.Total)), nil
}

func (s *SystemSource) DiskInfo(ctx context.Context) (string, error) {
	u, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return "", fmt.Errorf("disk usage of %s: %w", s.diskPath, err)
	}
	return fmt.Sprintf("Disk: %.1f%%", round1(u.UsedPercent)), nil
}

func (s *SystemSource) DiskDetails(ctx context.Context) (string, error) {
	u, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return "", fmt.Errorf("disk usage of %s: %w", s.diskPath, err)
	}
	return fmt.Sprintf("Used: %s\nTotal: %s", humanize.IBytes(u.Used), humanize.IBytes(u.Total)), nil
}
