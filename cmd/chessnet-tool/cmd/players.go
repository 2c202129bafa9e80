package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"chessnet/binary"
	"chessnet/client"
)

// playersCmd represents the players command
var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Show connected player list",
	Long:  "Show connected player list",
	RunE: func(cmd *cobra.Command, args []string) error {
		players, err := client.Players(cmd.Context(), adminURL)
		if err != nil {
			return err
		}

		cmd.SetOut(os.Stdout)
		if verbose {
			cmd.Println("id\troom\ttype\tflags\tversion\tconnected\tname")
		}
		for _, p := range players {
			printPlayer(cmd, &p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playersCmd)
}

func printPlayer(cmd *cobra.Command, p *client.PlayerInfo) {
	room, typ := "-", "-"
	if p.Type >= 0 {
		room = itoa(p.RoomID)
		typ = binary.PlayerType(p.Type).String()
	}
	cmd.Printf("%v\t%v\t%v\t%v\t%v\t%v\t%s\n",
		p.ID, room, typ, playerFlags(p), p.Version,
		time.Duration(p.ConnectedSeconds)*time.Second, p.Name)
}

// playerFlags : r=ready s=synchronized
func playerFlags(p *client.PlayerInfo) string {
	f := []byte("--")
	if p.Ready {
		f[0] = 'r'
	}
	if p.Synchronized {
		f[1] = 's'
	}
	return string(f)
}
