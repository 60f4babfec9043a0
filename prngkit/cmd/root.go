// Package cmd implements the commands for the prngkit executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simlab/prngkit/common/version"
	"github.com/simlab/prngkit/distribution"
	"github.com/simlab/prngkit/generator/api"
	"github.com/simlab/prngkit/prngkit/cmd/battery"
	cmdCommon "github.com/simlab/prngkit/prngkit/cmd/common"
	"github.com/simlab/prngkit/prngkit/cmd/compare"
	cmdDistribution "github.com/simlab/prngkit/prngkit/cmd/distribution"
	"github.com/simlab/prngkit/prngkit/cmd/generate"
	cmdReport "github.com/simlab/prngkit/prngkit/cmd/report"
	"github.com/simlab/prngkit/stattest"
)

var (
	rootCmd = &cobra.Command{
		Use:     "prngkit",
		Short:   "Pseudo-random number generator toolkit",
		Version: version.SoftwareVersion,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List generation methods, statistical tests and distributions",
		Run:   runList,
	}
)

// RootCommand returns the root (top level) cobra.Command.
func RootCommand() *cobra.Command {
	return rootCmd
}

// Execute spawns the main entry point after handling the config file
// and command line arguments.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	var methods []string
	for _, m := range api.Methods() {
		methods = append(methods, m.String())
	}
	var dists []string
	for _, k := range distribution.Kinds() {
		dists = append(dists, k.String())
	}

	for _, v := range []struct {
		what  string
		names []string
	}{
		{"methods", methods},
		{"tests", stattest.Names()},
		{"distributions", dists},
	} {
		fmt.Fprintf(w, "Available %s:\n", v.what)
		for _, name := range v.names {
			fmt.Fprintf(w, "  * %v\n", name)
		}
	}
}

func initVersions() {
	cobra.AddTemplateFunc("prngkitVersion", func() interface{} { return version.Versions })

	rootCmd.SetVersionTemplate(`Software version: {{.Version}}
{{- with prngkitVersion }}
Report format version: {{ .ReportFormat }}
Go toolchain version: {{ .Toolchain }}
{{ end -}}
`)
}

func init() {
	cobra.OnInitialize(cmdCommon.InitConfig)
	initVersions()

	rootCmd.PersistentFlags().AddFlagSet(cmdCommon.RootFlags)
	rootCmd.AddCommand(listCmd)

	// Register all of the sub-commands.
	for _, v := range []func(*cobra.Command){
		generate.Register,
		battery.Register,
		compare.Register,
		cmdDistribution.Register,
		cmdReport.Register,
	} {
		v(rootCmd)
	}
}
