package metrics

import (
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

const (
	MetricCPUUTimeSeconds = "prngkit_cpu_utime_seconds"
	MetricCPUSTimeSeconds = "prngkit_cpu_stime_seconds"

	// ClockTicks is getconf CLK_TCK
	ClockTicks = 100
)

var (
	utimeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricCPUUTimeSeconds,
			Help: "CPU user time spent by the process as reported by /proc/<PID>/stat (seconds).",
		},
	)

	stimeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricCPUSTimeSeconds,
			Help: "CPU system time spent by the process as reported by /proc/<PID>/stat (seconds).",
		},
	)

	cpuCollectors = []prometheus.Collector{utimeGauge, stimeGauge}
	cpuOnce       sync.Once
)

// updateCPU refreshes the CPU time gauges of the current process.
func updateCPU() error {
	cpuOnce.Do(func() {
		prometheus.MustRegister(cpuCollectors...)
	})

	pid := os.Getpid()
	proc, err := procfs.NewProc(pid)
	if err != nil {
		return fmt.Errorf("CPU metric: failed to obtain proc object for PID %d: %w", pid, err)
	}
	procStat, err := proc.Stat()
	if err != nil {
		return fmt.Errorf("CPU metric: failed to obtain procStat object %d: %w", pid, err)
	}

	utimeGauge.Set(float64(procStat.UTime) / float64(ClockTicks))
	stimeGauge.Set(float64(procStat.STime) / float64(ClockTicks))

	return nil
}

// UpdateResources refreshes the process resource gauges. Failures (e.g. on
// platforms without procfs) are logged and otherwise ignored.
func UpdateResources() {
	if err := updateCPU(); err != nil {
		logger.Debug("failed to update resource metrics",
			"err", err,
		)
	}
}
