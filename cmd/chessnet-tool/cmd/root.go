package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chessnet/config"
)

var (
	confFile string
	conf     *config.Config
	adminURL string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chessnet-tool",
	Short: "chessnet tool",
	Long:  "Inspect a running chessnet server through its admin API, health endpoint and game history.",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if confFile == "" {
			conf = config.Default()
		} else {
			var err error
			conf, err = config.Load(confFile)
			if err != nil {
				return err
			}
		}
		if adminURL == "" {
			adminURL = fmt.Sprintf("http://localhost:%d", conf.Admin.Port)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&confFile, "config", "f", "", "Config toml file")
	rootCmd.PersistentFlags().StringVarP(&adminURL, "admin", "a", "", "Admin API base URL (default: http://localhost:<admin port>)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
