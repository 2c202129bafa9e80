package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"chessnet/client"
)

var roomsAll bool

// roomsCmd represents the rooms command
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Show active room list",
	Long:  "Show active room list",
	RunE: func(cmd *cobra.Command, args []string) error {
		rooms, err := client.Rooms(cmd.Context(), adminURL, roomsAll)
		if err != nil {
			return err
		}

		cmd.SetOut(os.Stdout)
		if verbose {
			printRoomsHeader(cmd)
		}
		for _, r := range rooms {
			printRoom(cmd, &r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.Flags().BoolVar(&roomsAll, "all", false, "Include private rooms")
}

func printRoomsHeader(cmd *cobra.Command) {
	cmd.Println("id\tflags\toccupants\telapsed\tname")
}

func printRoom(cmd *cobra.Command, r *client.RoomInfo) {
	cmd.Printf("%v\t%v\t%d\t%v\t%s\n", r.ID, roomFlags(r), r.OccupantCount, elapsed(r.ElapsedMillis), r.Name)
}

// roomFlags : p=private s=started z=paused
func roomFlags(r *client.RoomInfo) string {
	f := []byte("---")
	if r.Private {
		f[0] = 'p'
	}
	if r.Started {
		f[1] = 's'
	}
	if r.Paused {
		f[2] = 'z'
	}
	return string(f)
}
