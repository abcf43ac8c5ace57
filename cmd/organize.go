package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photofiler/internal"
)

var (
	dryRunFlag   bool
	exifToolFlag bool
	failFastFlag bool
	manifestFlag bool
	extFlag      []string
)

var organizeCmd = &cobra.Command{
	Use:   "organize [source] [destination]",
	Short: "Move photos from source into destination/YYYY/MM Month",
	Long: `Move every photo directly inside the source folder into
destination/<year>/<MM Month>/, dated by EXIF capture time or, failing that,
by modification time. Files whose content is already in the target month
folder are left where they are. Name clashes with different content get a
_1, _2, ... suffix; nothing is ever overwritten.

Paths that are neither given nor configured are asked for interactively.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, map[string]string{
			"use_exiftool": "exiftool",
			"fail_fast":    "fail-fast",
			"manifest":     "manifest",
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

		_, err = runOrganize(afero.NewOsFs(), conf, source, destination, dryRunFlag, cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}

// runOrganize is the organize command minus cobra: it prompts for missing
// paths, wires the organizer and prints the report.
func runOrganize(fs afero.Fs, conf *internal.Config, source, destination string, dryRun bool, in io.Reader, out io.Writer) (internal.Summary, error) {
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

	org, cleanup, err := newOrganizer(fs, conf, destination, dryRun, out)
	if err != nil {
		return internal.NewSummary(), err
	}
	defer cleanup()

	sum, err := org.Run(source, destination)
	if errors.Is(err, internal.ErrSourceNotFound) {
		fmt.Fprintf(out, "❌ Error: Source path does not exist: %s\n", source)
		return sum, err
	}
	if sum.Errors.Total > 0 {
		fmt.Fprint(out, sum.Errors.GenerateReport())
	}
	if err != nil {
		return sum, err
	}
	if sum.Failed > 0 {
		return sum, fmt.Errorf("%d of %d files failed", sum.Failed, sum.Scanned)
	}
	return sum, nil
}

// newOrganizer wires logger, metadata readers and optional manifest. The
// returned cleanup closes everything that was opened.
func newOrganizer(fs afero.Fs, conf *internal.Config, destination string, dryRun bool, out io.Writer) (*internal.Organizer, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	logger, err := internal.NewLogger(conf.LogFile, verboseFlag)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, logger.Close)

	var readers []internal.CaptureTimeReader
	if conf.UseExifTool {
		et, err := internal.NewExifToolReader()
		if err != nil {
			fmt.Fprintf(out, "Warning: %v; falling back to built-in EXIF reader\n", err)
			logger.Warn("%v", err)
		} else {
			readers = append(readers, et)
			closers = append(closers, et.Close)
		}
	}
	readers = append(readers, internal.NewExifReader(fs))

	org := internal.NewOrganizer(
		fs,
		internal.NewDateClassifier(fs, readers...),
		internal.NewConsoleReporter(out),
		logger,
		internal.Options{
			DryRun:     dryRun,
			FailFast:   conf.FailFast,
			Extensions: conf.Extensions,
		},
	)

	// The manifest lives under destination, so it waits until the source has
	// been checked; otherwise a missing source would still leave files behind.
	if conf.Manifest && !dryRun {
		org.SetManifestFactory(func() (*internal.RunManifest, error) {
			m, err := internal.NewRunManifest(fs, destination)
			if err == nil {
				closers = append(closers, m.Close)
			}
			return m, err
		})
	}

	return org, cleanup, nil
}

func init() {
	organizeCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would be moved without touching anything")
	organizeCmd.Flags().BoolVar(&exifToolFlag, "exiftool", false, "Also read capture dates with the exiftool binary")
	organizeCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "Stop at the first file that cannot be processed")
	organizeCmd.Flags().BoolVar(&manifestFlag, "manifest", false, "Write a JSONL log of the run under destination/.photofiler/runs")
	organizeCmd.Flags().StringSliceVar(&extFlag, "ext", nil, "File extensions to pick up (repeatable; default: common image formats; '*' for every file)")

	rootCmd.AddCommand(organizeCmd)
}
