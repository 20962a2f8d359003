package load

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/cmd/util"
	"github.com/zikwall/dataframe-buffer/src/cx"
)

// LoadCmd prints a table a dumper left behind
var LoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Print the table stored in a SQLite file or on the configured ClickHouse server",
	Long: `Print the full table, its index columns restored, or with --index-only the distinct index tuples.
Without --clickhouse-addr a SQLite file is required.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: util.BindCommandFlags,
	RunE:    run,
}

func init() {
	key := "index-only"
	LoadCmd.Flags().Bool(key, false, util.WrapString("Print only the distinct index tuples"))

	key = "format"
	LoadCmd.Flags().String(key, "csv", util.WrapString("Output format (csv, json)"))

	key = "clickhouse-addr"
	LoadCmd.Flags().String(key, "", util.WrapString("Load from this ClickHouse server instead of a SQLite file"))

	key = "clickhouse-database"
	LoadCmd.Flags().String(key, "default", util.WrapString("ClickHouse database holding the tables"))

	key = "clickhouse-user"
	LoadCmd.Flags().String(key, "", util.WrapString("ClickHouse user, the server default when empty"))

	key = "clickhouse-password"
	LoadCmd.Flags().String(key, "", util.WrapString("ClickHouse password, prefer DFBUFFER_CLICKHOUSE_PASSWORD over the command line"))
}

func run(cmd *cobra.Command, args []string) (err error) {
	write, err := writer(viper.GetString("format"))
	if err != nil {
		return err
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" && !util.UseClickhouse() {
		return errors.New("a SQLite file is required without --clickhouse-addr")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := util.OpenReader(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	var frame *cx.Frame
	if viper.GetBool("index-only") {
		frame, err = dataframebuffer.LoadIndexOnly(ctx, store)
	} else {
		frame, err = dataframebuffer.LoadFullTable(ctx, store)
	}
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), frame)
}

func writer(format string) (func(w io.Writer, frame *cx.Frame) error, error) {
	switch format {
	case "csv":
		return WriteCSV, nil
	case "json":
		return WriteJSON, nil
	default:
		return nil, fmt.Errorf("invalid format %s", format)
	}
}
