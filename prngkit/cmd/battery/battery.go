// Package battery implements the test sub-command.
package battery

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/generator"
	"github.com/simlab/prngkit/metrics"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

var (
	testCmd = &cobra.Command{
		Use:   "test",
		Short: "run the statistical test battery over a generated sequence",
		Run:   doTest,
	}

	logger = logging.GetLogger("cmd/battery")
)

func doTest(cmd *cobra.Command, args []string) {
	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(ctx context.Context, w io.Writer) error {
		return runBattery(ctx, w, cfg)
	})
}

func runBattery(ctx context.Context, w io.Writer, cfg *config.Config) error {
	tests, err := stattest.Resolve(cfg.Tests, stattest.Options{Lag: cfg.Lag})
	if err != nil {
		return err
	}

	seed := cmdCommon.ResolveSeed(cfg)
	gen := cfg.Generator(cfg.Method).WithSeed(seed)
	seq, err := generator.Generate(cfg.Count, &gen)
	if err != nil {
		return err
	}
	s, err := stattest.NewSample(seq.Float64s())
	if err != nil {
		return err
	}

	entry, testErr := cmdCommon.TestSample(ctx, cfg.Method.String(), seed, s, cfg.Head, tests)
	if testErr != nil {
		logger.Warn("some tests failed",
			"method", cfg.Method,
			"err", testErr,
		)
	}
	metrics.Observe(&entry)

	r := report.New()
	r.Add(entry)

	// Failed tests are reported before the failure is returned.
	return multierr.Append(r.Write(w, cfg.Format), testErr)
}

// Register registers the test sub-command.
func Register(parentCmd *cobra.Command) {
	testCmd.Flags().AddFlagSet(flags.GeneratorFlags)
	testCmd.Flags().AddFlagSet(flags.BatteryFlags)
	testCmd.Flags().AddFlagSet(flags.OutputFlags)

	parentCmd.AddCommand(testCmd)
}
