// Package cli implements the transitboard command line
package cli

import (
	"fmt"

	"github.com/abelzeko/transit-board/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "transitboard",
	Short: "Transit board - bus departures and railway line status tables",
	Long: `transitboard scrapes public transit-operator pages on a schedule and
writes normalized tables:

  - a bus departure schedule reconstructed from scheduled/estimated times
  - a railway line disruption report with tier precedence
  - a corridor view of that report

Tables are replaced atomically each cycle and optionally committed and
pushed with git.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteArgs runs the root command with explicit arguments
func ExecuteArgs(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("transitboard v0.3.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./transitboard.yaml or $HOME/.transitboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig points viper at the config file and ENV variables
func initConfig() {
	config.Prepare(viper.GetViper(), cfgFile)
}
