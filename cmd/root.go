package cmd

import (
	"github.com/spf13/cobra"

	"photofiler/internal"
)

// Version is overridden from the embedded VERSION file or -ldflags.
var Version = "dev"

var (
	configFlag  string
	envFileFlag string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "photofiler",
	Short:         "Sort photos into year/month folders without duplicates",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

// ApplyVersion copies Version onto the root command.
func ApplyVersion() {
	rootCmd.Version = Version
}

// loadConfig builds the viper stack for cmd: defaults, config file, env and
// the command's own flags, in increasing priority.
func loadConfig(cmd *cobra.Command, bind map[string]string) (*internal.Config, error) {
	if err := internal.LoadEnvFile(envFileFlag); err != nil {
		return nil, err
	}
	v := internal.NewViper(configFlag)
	for key, flag := range bind {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, err
		}
	}
	return internal.LoadConfig(v)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: $XDG_CONFIG_HOME/photofiler/photofiler.toml)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Load PHOTOFILER_* variables from this .env file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write debug lines to the log file")
	ApplyVersion()
}
