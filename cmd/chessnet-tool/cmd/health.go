package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

var healthHost string

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the game server health",
	Long:  "Call grpc.health.v1.Health/Check on the game server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if conf.Game.GRPCPort == 0 {
			return xerrors.Errorf("Game.grpc_port is not configured")
		}
		addr := fmt.Sprintf("%s:%d", healthHost, conf.Game.GRPCPort)
		conn, err := grpc.DialContext(cmd.Context(), addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return xerrors.Errorf("dial %v: %w", addr, err)
		}
		defer conn.Close()

		res, err := grpc_health_v1.NewHealthClient(conn).Check(cmd.Context(), &grpc_health_v1.HealthCheckRequest{})
		if err != nil {
			return xerrors.Errorf("health check: %w", err)
		}
		cmd.Println(res.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthHost, "host", "localhost", "Game server host")
}
