// Package report implements the report sub-commands.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/simlab/prngkit/common/logging"
	"github.com/simlab/prngkit/config"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/common/flags"
	reportAPI "github.com/simlab/prngkit/report"
)

const (
	cfgInputFormat   = "input.format"
	cfgInputCompress = "input.compress"
)

var (
	inputFlags = flag.NewFlagSet("", flag.ContinueOnError)

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "saved report utilities",
	}

	showCmd = &cobra.Command{
		Use:   "show <file>",
		Short: "render a saved JSON or CBOR report in the output format",
		Args:  cobra.ExactArgs(1),
		Run:   doShow,
	}

	logger = logging.GetLogger("cmd/report")
)

func doShow(cmd *cobra.Command, args []string) {
	var in reportAPI.Format
	if err := in.Set(viper.GetString(cfgInputFormat)); err != nil {
		cmdCommon.EarlyLogAndExit(err)
	}

	cfg := &config.GlobalConfig
	cmdCommon.Run(cfg, func(_ context.Context, w io.Writer) error {
		return show(w, cfg, args[0], in, viper.GetBool(cfgInputCompress))
	})
}

func show(w io.Writer, cfg *config.Config, path string, in reportAPI.Format, compressed bool) error {
	r, err := cmdCommon.Input(path, compressed)
	if err != nil {
		return err
	}
	defer r.Close()

	rep, err := reportAPI.Read(r, in)
	if err != nil {
		logger.Error("failed to read report",
			"err", err,
			"path", path,
			"format", in,
		)
		return fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("read report",
		"path", path,
		"version", rep.Version,
		"entries", len(rep.Entries),
	)

	return rep.Write(w, cfg.Format)
}

// Register registers the report sub-commands.
func Register(parentCmd *cobra.Command) {
	showCmd.Flags().AddFlagSet(inputFlags)
	showCmd.Flags().AddFlagSet(flags.OutputFlags)

	reportCmd.AddCommand(showCmd)
	parentCmd.AddCommand(reportCmd)
}

func init() {
	in := reportAPI.FormatJSON
	inputFlags.Var(&in, cfgInputFormat, "saved report format [json,cbor]")
	inputFlags.Bool(cfgInputCompress, false, "saved report is snappy compressed")

	_ = viper.BindPFlags(inputFlags)
}
