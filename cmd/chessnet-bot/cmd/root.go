package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chessnet/log"
)

var (
	serverAddr string
	protocolID string
	version    int32
	timeout    time.Duration
	verbose    bool

	logger *zap.SugaredLogger = log.Get(log.INFO)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chessnet-bot",
	Short: "chessnet testing bot",
	Long:  `chessnet testing bot`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lv := log.INFO
		if verbose {
			lv = log.DEBUG
		}
		logger = log.Get(lv)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "localhost:2570", "Game server address")
	rootCmd.PersistentFlags().StringVar(&protocolID, "protocol", "AlphaChess", "Protocol id")
	rootCmd.PersistentFlags().Int32Var(&version, "version", 400, "Client version")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Timeout waiting an event")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
