// Package distribution implements the distribution sub-commands.
package distribution

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/distribution"
	"github.com/simlab/prngkit/metrics"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

var (
	distributionCmd = &cobra.Command{
		Use:   "distribution",
		Short: "sample a distribution and test it against its theoretical law",
		Run:   doDistribution,
	}

	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "sample and test every distribution side by side",
		Run:   doCompare,
	}

	logger = logging.GetLogger("cmd/distribution")
)

func doDistribution(cmd *cobra.Command, args []string) {
	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(ctx context.Context, w io.Writer) error {
		return testDistributions(ctx, w, cfg, []distribution.Config{cfg.Distribution()})
	})
}

func doCompare(cmd *cobra.Command, args []string) {
	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(ctx context.Context, w io.Writer) error {
		return testDistributions(ctx, w, cfg, distribution.Presets())
	})
}

// testDistributions samples each distribution with the same seed, runs the
// battery followed by the theoretical fit and writes one report row per
// distribution.
func testDistributions(ctx context.Context, w io.Writer, cfg *config.Config, dists []distribution.Config) error {
	tests, err := stattest.Resolve(cfg.Tests, stattest.Options{Lag: cfg.Lag})
	if err != nil {
		return err
	}

	seed := cmdCommon.ResolveSeed(cfg)
	rep := report.New()
	var testErrs error
	for i := range dists {
		dc := &dists[i]

		d, err := distribution.New(dc, seed)
		if err != nil {
			return err
		}
		values, err := distribution.Sample(d, cfg.Count)
		if err != nil {
			return err
		}
		s, err := stattest.NewSample(values)
		if err != nil {
			return fmt.Errorf("%s: %w", dc.Kind, err)
		}

		entry, err := cmdCommon.TestSample(ctx, dc.Kind.String(), seed, s, cfg.Head, tests)
		if err != nil {
			logger.Warn("some tests failed",
				"distribution", dc.Kind,
				"err", err,
			)
			testErrs = multierr.Append(testErrs, fmt.Errorf("%s: %w", dc.Kind, err))
		}
		entry.Results = append(entry.Results, distribution.Fit(d, s)...)

		metrics.Observe(&entry)
		rep.Add(entry)
	}

	return multierr.Append(rep.Write(w, cfg.Format), testErrs)
}

// Register registers the distribution sub-commands.
func Register(parentCmd *cobra.Command) {
	for _, cmd := range []*cobra.Command{distributionCmd, compareCmd} {
		cmd.Flags().AddFlagSet(flags.GeneratorFlags)
		cmd.Flags().AddFlagSet(flags.BatteryFlags)
		cmd.Flags().AddFlagSet(flags.OutputFlags)
	}
	distributionCmd.Flags().AddFlagSet(flags.DistributionFlags)

	distributionCmd.AddCommand(compareCmd)
	parentCmd.AddCommand(distributionCmd)
}
