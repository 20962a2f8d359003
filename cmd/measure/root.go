package measure

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/cmd/util"
	"github.com/zikwall/dataframe-buffer/src/waveform"
)

// File is the store measure writes into the measurement directory
const File = "waveforms.sqlite"

// MeasureCmd simulates an acquisition loop feeding a dumper
var MeasureCmd = &cobra.Command{
	Use:   "measure <dir>",
	Short: "Simulate a waveform acquisition into <dir>/" + File,
	Long: `Simulate a detector acquisition: every event measures one gaussian waveform per device (LGAD, PMT)
and appends it, one row per sample, to a dumper. The table is indexed by n_waveform, n_event and device_name.
Interrupting the acquisition still writes every measured waveform.
Flags can be set via environment variables DFBUFFER_<FLAG> (e.g. DFBUFFER_REDIS_ADDR=localhost:6379)`,
	Args:    cobra.ExactArgs(1),
	PreRunE: util.BindCommandFlags,
	RunE:    run,
}

func init() {
	util.SetupStoreFlags(MeasureCmd)

	key := "events"
	MeasureCmd.Flags().Int(key, 999, util.WrapString("Number of events to acquire"))

	key = "samples"
	MeasureCmd.Flags().Int(key, 4444, util.WrapString("Samples per waveform"))

	key = "delay"
	MeasureCmd.Flags().Duration(key, 0, util.WrapString("Mean of the exponentially distributed acquisition time of one event (e.g. 300ms)"))

	key = "seed"
	MeasureCmd.Flags().Int64(key, time.Now().UnixNano(), util.WrapString("Seed of the simulated detector"))
}

func run(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// the dumper keeps its own context: an interrupt stops the acquisition, never the final write
	interrupted, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx := context.Background()

	store, err := util.OpenStore(ctx, filepath.Join(dir, File), true)
	if err != nil {
		return err
	}
	buffer, rdb, err := util.OpenBuffer(ctx, "measure")
	if err != nil {
		_ = store.Close()
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	logger := util.Logger()
	events := viper.GetInt("events")
	delay := viper.GetDuration("delay")
	generator := waveform.NewGenerator(viper.GetInt64("seed"), viper.GetInt("samples"))

	return dataframebuffer.WithDumper(ctx, store, buffer, util.DumperOptions(), func(d dataframebuffer.Dumper) error {
		var n int64
		for event := 0; event < events; event++ {
			select {
			case <-interrupted.Done():
				logger.Logf("acquisition interrupted after %d events", event)
				return nil
			case <-time.After(generator.Delay(delay)):
			}
			for _, device := range waveform.Devices {
				times, samples := generator.Measure(device)
				frame := waveform.Frame(n, int64(event), device, times, samples, generator.Temperature(), time.Now())
				if err := d.Append(frame); err != nil {
					return fmt.Errorf("event %d, %s: %w", event, device, err)
				}
				n++
			}
			if viper.GetBool("debug") {
				stats := d.Stats()
				logger.Logf("n_event=%d/%d, %d waveforms pending, %d dumped rows", event, events-1, stats.Pending, stats.Rows)
			}
		}
		return nil
	})
}
