package metrics_test

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delaneyj/slotparty/loop"
	"github.com/delaneyj/slotparty/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeSource) CPUInfo(ctx context.Context) (string, error) {
	n := f.calls.Add(1)
	if n == 1 {
		return "CPU: 42.0%", nil
	}
	return "CPU: 43.0%", nil
}

func (f *fakeSource) CPUDetails(ctx context.Context) (string, error) {
	return "Cores: 8\nGoroutines: 3", nil
}

func (f *fakeSource) RAMInfo(ctx context.Context) (string, error) {
	if f.fail {
		return "", errors.New("boom")
	}
	return "RAM: 10.0%", nil
}

func (f *fakeSource) RAMDetails(ctx context.Context) (string, error) {
	return "Used: 1 MB\nTotal: 10 MB", nil
}

func (f *fakeSource) DiskInfo(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (f *fakeSource) DiskDetails(ctx context.Context) (string, error) {
	return "Used: 1 GB\nTotal: 2 GB", nil
}

func TestPollSubmitsOneBatch(t *testing.T) {
	q := loop.New()
	src := &fakeSource{}
	var got map[string]string
	applied := 0
	p := metrics.NewPoller(q, time.Hour, func(r map[string]string) {
		applied++
		got = r
	}, metrics.Queries(src), metrics.WithTimeout(5*time.Millisecond))

	require.NoError(t, p.Poll(context.Background()))
	assert.Equal(t, 1, q.Len())
	assert.Zero(t, applied, "results are applied on the loop, not the poller")

	require.NoError(t, q.RunPending())
	assert.Equal(t, 1, applied)
	assert.Equal(t, "CPU: 42.0%", got["cpu"])
	assert.Equal(t, "RAM: 10.0%", got["ram"])
	_, hasDisk := got["disk"]
	assert.False(t, hasDisk, "timed out query is skipped")
}

func TestPollLogsFailures(t *testing.T) {
	q := loop.New()
	var buf bytes.Buffer
	src := &fakeSource{fail: true}
	var got map[string]string
	p := metrics.NewPoller(q, time.Hour, func(r map[string]string) { got = r },
		metrics.Queries(src),
		metrics.WithTimeout(time.Millisecond),
		metrics.WithLogger(zerolog.New(&buf)))

	require.NoError(t, p.Poll(context.Background()))
	require.NoError(t, q.RunPending())
	assert.NotContains(t, got, "ram")
	assert.Contains(t, got, "ram_details")
	assert.Contains(t, buf.String(), `"query":"ram"`)
	assert.Contains(t, buf.String(), "error updating metrics")
}

func TestPollAfterClose(t *testing.T) {
	q := loop.New()
	q.Close()
	p := metrics.NewPoller(q, time.Hour, func(map[string]string) {},
		metrics.Queries(&fakeSource{}), metrics.WithTimeout(time.Millisecond))
	assert.ErrorIs(t, p.Poll(context.Background()), loop.ErrClosed)
}

func TestStartStop(t *testing.T) {
	q := loop.New()
	src := &fakeSource{}
	p := metrics.NewPoller(q, 5*time.Millisecond, func(map[string]string) {},
		metrics.Queries(src), metrics.WithTimeout(time.Millisecond))

	stop := p.Start()
	assert.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, time.Millisecond)
	stop()
	stop()

	n := src.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, src.calls.Load(), "no polls after stop")
	assert.Positive(t, q.Len())
}

func TestProcessSourceFormats(t *testing.T) {
	src := metrics.NewProcessSource("/")
	ctx := context.Background()

	cpu, err := src.CPUInfo(ctx)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CPU: \d+\.\d%$`), cpu)

	details, err := src.CPUDetails(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^Cores: \d+\nGoroutines: \d+$`, details)

	ram, err := src.RAMInfo(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^RAM: \d+\.\d%$`, ram)

	ramDetails, err := src.RAMDetails(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^Used: .+\nTotal: .+$`, ramDetails)

	disk, err := src.DiskInfo(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^Disk: \d+\.\d%$`, disk)
}

func TestProcessSourceMissingDisk(t *testing.T) {
	src := metrics.NewProcessSource("/definitely/not/a/real/path")
	_, err := src.DiskInfo(context.Background())
	assert.Error(t, err)
	_, err = src.DiskDetails(context.Background())
	assert.Error(t, err)
}

func TestSystemSourceFormats(t *testing.T) {
	src := metrics.NewSystemSource("/")
	ctx := context.Background()

	details, err := src.CPUDetails(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^Cores: \d+\nThreads: \d+$`, details)

	ram, err := src.RAMInfo(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^RAM: \d+\.\d%$`, ram)

	disk, err := src.DiskDetails(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^Used: .+\nTotal: .+$`, disk)

	_, err = metrics.NewSystemSource("/definitely/not/a/real/path").DiskInfo(ctx)
	assert.Error(t, err)
}
