package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photofiler/internal"
)

var (
	formatFlag     string
	duplicatesFlag bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [destination]",
	Short: "Summarize an organized library by year and month",
	Long: `Walk an organized destination tree and count files and bytes per
month folder. Files outside the YYYY/MM Month layout are listed separately.
With --duplicates every file is hashed and equal content within a month
folder is reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}

		destination := conf.Destination
		if len(args) > 0 {
			destination = args[0]
		}
		if destination == "" {
			return fmt.Errorf("no destination given and none configured")
		}
		if destination, err = internal.ResolvePath(destination); err != nil {
			return err
		}

		fs := afero.NewOsFs()
		if ok, err := afero.DirExists(fs, destination); err != nil || !ok {
			return fmt.Errorf("folder does not exist or is not a directory: %s", destination)
		}

		stats, err := internal.SurveyLibrary(fs, destination, duplicatesFlag)
		if err != nil {
			return err
		}
		return internal.DisplayLibraryStats(cmd.OutOrStdout(), stats, formatFlag)
	},
}

func init() {
	statsCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json, yaml")
	statsCmd.Flags().BoolVar(&duplicatesFlag, "duplicates", false, "Hash files and report equal content within a month folder (slower)")

	rootCmd.AddCommand(statsCmd)
}
