// Package generate implements the generate sub-command.
package generate

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	"github.com/simlab/prngkit/generator"
	"github.com/simlab/prngkit/metrics"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	"github.com/simlab/prngkit/report"
)

var (
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "generate a pseudo-random sequence",
		Run:   doGenerate,
	}

	logger = logging.GetLogger("cmd/generate")
)

func doGenerate(cmd *cobra.Command, args []string) {
	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(_ context.Context, w io.Writer) error {
		return generate(w, cfg)
	})
}

func generate(w io.Writer, cfg *config.Config) error {
	seed := cmdCommon.ResolveSeed(cfg)
	gen := cfg.Generator(cfg.Method).WithSeed(seed)

	seq, err := generator.Generate(cfg.Count, &gen)
	if err != nil {
		logger.Error("failed to generate sequence",
			"err", err,
			"method", cfg.Method,
		)
		return err
	}

	metrics.Observe(&report.Entry{
		Source: cfg.Method.String(),
		Seed:   seed,
		Count:  len(seq),
	})

	return report.WriteSequence(w, cfg.Format, []uint64(seq))
}

// Register registers the generate sub-command.
func Register(parentCmd *cobra.Command) {
	generateCmd.Flags().AddFlagSet(flags.GeneratorFlags)
	generateCmd.Flags().AddFlagSet(flags.OutputFlags)

	parentCmd.AddCommand(generateCmd)
}
