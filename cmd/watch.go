package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photofiler/internal"
)

var settleFlag time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [source] [destination]",
	Short: "Organize the source folder, then keep organizing new files as they arrive",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, map[string]string{
			"use_exiftool": "exiftool",
			"manifest":     "manifest",
			"watch_settle": "settle",
			"extensions":   "ext",
		})
		if err != nil {
			return err
		}

		source, destination := conf.Source, conf.Destination
		if len(args) > 0 {
			source = args[0]
		}
		if len(args) > 1 {
			destination = args[1]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = runWatch(ctx, afero.NewOsFs(), conf, source, destination, cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}

// runWatch is the watch command minus cobra. The watcher is started before
// the initial run so files landing while it works still produce events;
// ones the run already moved are dropped by Watch as gone.
func runWatch(ctx context.Context, fs afero.Fs, conf *internal.Config, source, destination string, in io.Reader, out io.Writer) (internal.Summary, error) {
	source, destination, err := internal.NewPrompter(in, out).AskPaths(source, destination)
	if err != nil {
		return internal.NewSummary(), err
	}
	if source, err = internal.ResolvePath(source); err != nil {
		return internal.NewSummary(), err
	}
	if destination, err = internal.ResolvePath(destination); err != nil {
		return internal.NewSummary(), err
	}

	org, cleanup, err := newOrganizer(fs, conf, destination, false, out)
	if err != nil {
		return internal.NewSummary(), err
	}
	defer cleanup()

	if err := org.Prepare(source, destination); err != nil {
		if errors.Is(err, internal.ErrSourceNotFound) {
			fmt.Fprintf(out, "❌ Error: Source path does not exist: %s\n", source)
		}
		return internal.NewSummary(), err
	}

	w, err := internal.NewWatcher(source, org.Matches)
	if err != nil {
		return internal.NewSummary(), err
	}
	defer w.Close()

	// Files already waiting are handled like a normal run first.
	if sum, err := org.Run(source, destination); err != nil {
		if sum.Errors.Total > 0 {
			fmt.Fprint(out, sum.Errors.GenerateReport())
		}
		return sum, err
	}

	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", source)
	sum, err := org.Watch(ctx, w, source, destination, conf.WatchSettle)
	if sum.Errors.Total > 0 {
		fmt.Fprint(out, sum.Errors.GenerateReport())
	}
	return sum, err
}

func init() {
	watchCmd.Flags().BoolVar(&exifToolFlag, "exiftool", false, "Also read capture dates with the exiftool binary")
	watchCmd.Flags().BoolVar(&manifestFlag, "manifest", false, "Write a JSONL log under destination/.photofiler/runs")
	watchCmd.Flags().DurationVar(&settleFlag, "settle", 2*time.Second, "How long a new file must stay unchanged before it is moved")
	watchCmd.Flags().StringSliceVar(&extFlag, "ext", nil, "File extensions to pick up (repeatable; default: common image formats; '*' for every file)")

	rootCmd.AddCommand(watchCmd)
}
