// Package cmd implements the dfbuffer command-line interface: a simulated
// acquisition (measure) and analysis (parse) writing through a dumper, and
// a loader (load) printing what a dumper left behind.
//
// See dfbuffer -help for a list of all commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zikwall/dataframe-buffer/cmd/load"
	"github.com/zikwall/dataframe-buffer/cmd/measure"
	"github.com/zikwall/dataframe-buffer/cmd/parse"
	"github.com/zikwall/dataframe-buffer/cmd/util"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dfbuffer",
		Short: "buffered dataframe dumper",
		Long: fmt.Sprintf(`dfbuffer (v%s)

Append record batches during a long running acquisition and have them written
to a SQLite file or a ClickHouse server every N appends or every T seconds,
whichever comes first.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dfbuffer",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dfbuffer v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	RootCmd.AddCommand(measure.MeasureCmd)
	RootCmd.AddCommand(parse.ParseCmd)
	RootCmd.AddCommand(load.LoadCmd)
	RootCmd.AddCommand(versionCmd)

	key := "debug"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("Log every write to the store and the acquisition progress"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
