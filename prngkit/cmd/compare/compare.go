// Package compare implements the compare sub-command.
package compare

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/generator"
	"github.com/simlab/prngkit/generator/api"
	"github.com/simlab/prngkit/metrics"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	"github.com/simlab/prngkit/report"
	"github.com/simlab/prngkit/stattest"
)

var (
	compareCmd = &cobra.Command{
		Use:   "compare",
		Short: "run the statistical test battery over every method side by side",
		Run:   doCompare,
	}

	logger = logging.GetLogger("cmd/compare")
)

// run is a single method and seed combination.
type run struct {
	method api.Method
	seed   uint64
}

func doCompare(cmd *cobra.Command, args []string) {
	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(ctx context.Context, w io.Writer) error {
		return compare(ctx, w, cfg)
	})
}

// runs expands the configured methods and seeds into runs, method-major.
func runs(cfg *config.Config) ([]run, error) {
	seeds := cfg.Seeds
	if len(seeds) == 0 {
		seeds = []uint64{cmdCommon.ResolveSeed(cfg)}
	}

	grid := map[string][]string{}
	for _, m := range cfg.Methods {
		grid[flags.CfgMethod] = append(grid[flags.CfgMethod], m.String())
	}
	for _, seed := range seeds {
		grid[flags.CfgSeed] = append(grid[flags.CfgSeed], strconv.FormatUint(seed, 10))
	}

	var rs []run
	for _, ps := range cmdCommon.ParamSets(grid) {
		var r run
		if err := r.method.Set(ps[flags.CfgMethod]); err != nil {
			return nil, err
		}
		seed, err := strconv.ParseUint(ps[flags.CfgSeed], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed seed: %w", err)
		}
		r.seed = seed
		rs = append(rs, r)
	}
	return rs, nil
}

func compare(ctx context.Context, w io.Writer, cfg *config.Config) error {
	if len(cfg.Methods) == 0 {
		return fmt.Errorf("no methods to compare")
	}
	tests, err := stattest.Resolve(cfg.Tests, stattest.Options{Lag: cfg.Lag})
	if err != nil {
		return err
	}
	rs, err := runs(cfg)
	if err != nil {
		return err
	}

	// Each run owns its source, so runs proceed concurrently.
	entries := make([]report.Entry, len(rs))
	testErrs := make([]error, len(rs))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range rs {
		i, r := i, r
		g.Go(func() error {
			gen := cfg.Generator(r.method).WithSeed(r.seed)
			seq, gerr := generator.Generate(cfg.Count, &gen)
			if gerr != nil {
				return gerr
			}
			s, gerr := stattest.NewSample(seq.Float64s())
			if gerr != nil {
				return gerr
			}

			entries[i], testErrs[i] = cmdCommon.TestSample(gctx, r.method.String(), r.seed, s, cfg.Head, tests)
			if testErrs[i] != nil {
				testErrs[i] = fmt.Errorf("%s (seed %d): %w", r.method, r.seed, testErrs[i])
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		logger.Error("failed to generate sequences",
			"err", err,
		)
		return err
	}

	rep := report.New()
	for i := range entries {
		metrics.Observe(&entries[i])
		rep.Add(entries[i])
	}

	return multierr.Combine(append([]error{rep.Write(w, cfg.Format)}, testErrs...)...)
}

// Register registers the compare sub-command.
func Register(parentCmd *cobra.Command) {
	compareCmd.Flags().AddFlagSet(flags.GeneratorFlags)
	compareCmd.Flags().AddFlagSet(flags.CompareFlags)
	compareCmd.Flags().AddFlagSet(flags.BatteryFlags)
	compareCmd.Flags().AddFlagSet(flags.OutputFlags)

	parentCmd.AddCommand(compareCmd)
}
