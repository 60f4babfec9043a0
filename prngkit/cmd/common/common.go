// Package common implements common prngkit command options and utilities.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang/snappy"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

// CfgConfigFile is the flag used to specify a config file.
const CfgConfigFile = "config"

var (
	// RootFlags has the flags that are common across all commands.
	RootFlags = flag.NewFlagSet("", flag.ContinueOnError)

	logger = logging.GetLogger("cmd")
)

// EarlyLogAndExit logs the error and exits.
//
// Note: This routine should only be used prior to the logging system
// being initialized.
func EarlyLogAndExit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// InitConfig loads the configuration file if any, applies the explicitly
// set flags on top of it and initializes logging.
func InitConfig() {
	if cfgFile := viper.GetString(CfgConfigFile); cfgFile != "" {
		if err := config.InitConfig(cfgFile); err != nil {
			EarlyLogAndExit(err)
		}
	}

	cfg := config.GlobalConfig
	applyLoggingFlags(&cfg.Log)
	applyMetricsFlags(&cfg.Metrics)
	if err := flags.Apply(&cfg); err != nil {
		EarlyLogAndExit(err)
	}
	if err := cfg.Validate(); err != nil {
		EarlyLogAndExit(fmt.Errorf("invalid configuration: %w", err))
	}
	config.GlobalConfig = cfg

	if err := initLogging(&cfg.Log); err != nil {
		EarlyLogAndExit(err)
	}
}

// Output opens the configured output, standard output if none.
func Output(cfg *config.Config) (io.WriteCloser, error) {
	var w io.WriteCloser = nopCloser{os.Stdout}
	if cfg.Output != "" {
		f, err := os.OpenFile(filepath.Clean(cfg.Output), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open output file: %w", err)
		}
		w = f
	}
	if cfg.Compress {
		w = &snappyWriteCloser{
			Writer: snappy.NewBufferedWriter(w),
			inner:  w,
		}
	}
	return w, nil
}

// Input opens a file written by Output, undoing the snappy framing if
// compressed is set.
func Input(path string, compressed bool) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	if !compressed {
		return f, nil
	}
	return &snappyReadCloser{
		Reader: snappy.NewReader(f),
		inner:  f,
	}, nil
}

type snappyReadCloser struct {
	*snappy.Reader
	inner io.Closer
}

func (r *snappyReadCloser) Close() error {
	return r.inner.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

type snappyWriteCloser struct {
	*snappy.Writer
	inner io.Closer
}

func (w *snappyWriteCloser) Close() error {
	return multierr.Append(w.Writer.Close(), w.inner.Close())
}

// ResolveSeed returns the configured seed, or the current time in seconds
// if none is configured.
func ResolveSeed(cfg *config.Config) uint64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	seed := uint64(time.Now().Unix())
	logger.Info("no seed configured, using the current time",
		"seed", seed,
	)
	return seed
}

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Run executes a command body with the configured output and metrics
// service, exiting non-zero on failure.
func Run(cfg *config.Config, fn func(ctx context.Context, w io.Writer) error) {
	if err := run(cfg, fn); err != nil {
		logger.Error("command failed",
			"err", err,
		)
		os.Exit(1)
	}
}

func run(cfg *config.Config, fn func(ctx context.Context, w io.Writer) error) (err error) {
	ctx, cancel := SignalContext()
	defer cancel()

	svc, err := StartMetrics(cfg)
	if err != nil {
		return fmt.Errorf("failed to start metrics service: %w", err)
	}
	defer StopMetrics(svc)

	w, err := Output(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	return fn(ctx, w)
}

// TestSample runs the battery over the sample and returns the report entry.
//
// The entry is complete even if some tests failed, in which case the
// failures are also returned.
func TestSample(ctx context.Context, source string, seed uint64, s *stattest.Sample, head int, tests []stattest.Test) (report.Entry, error) {
	values := s.Values()
	if head > len(values) {
		head = len(values)
	}

	results, err := stattest.Battery(ctx, s, tests)
	return report.Entry{
		Source:  source,
		Seed:    seed,
		Count:   s.Len(),
		Head:    values[:head:head],
		Results: results,
	}, err
}

func init() {
	initLoggingFlags()
	initMetricsFlags()

	RootFlags.StringP(CfgConfigFile, "c", "", "config file")
	_ = viper.BindPFlags(RootFlags)
	RootFlags.AddFlagSet(loggingFlags)
	RootFlags.AddFlagSet(metricsFlags)
}
