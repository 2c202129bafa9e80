package cmd

import (
	"context"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"chessnet/history"
)

const historyQuery = "" +
	"SELECT room_name, private, white, black, observers, elapsed_ms, ended_at " +
	"FROM game_history ORDER BY ended_at DESC LIMIT ?"

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently finished games",
	Long:  "Show recently finished games recorded in the game_history table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if conf.History.DSN == "" {
			return xerrors.Errorf("History.dsn is not configured")
		}
		db, err := history.OpenDB(conf.History.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		recs, err := selectHistory(cmd.Context(), db, historyLimit)
		if err != nil {
			return err
		}

		cmd.SetOut(os.Stdout)
		if verbose {
			cmd.Println("ended\tprivacy\twhite\tblack\tobservers\telapsed\tname")
		}
		for _, r := range recs {
			printRecord(cmd, r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of games")
}

func selectHistory(ctx context.Context, db *sqlx.DB, limit int) ([]*history.Record, error) {
	var recs []*history.Record
	if err := db.SelectContext(ctx, &recs, historyQuery, limit); err != nil {
		return nil, xerrors.Errorf("select game_history: %w", err)
	}
	return recs, nil
}

func printRecord(cmd *cobra.Command, r *history.Record) {
	privacy := "Public"
	if r.Private {
		privacy = "Private"
	}
	cmd.Printf("%v\t%v\t%s\t%s\t%d\t%v\t%s\n",
		r.EndedAt.Format(time.RFC3339), privacy, r.White, r.Black, r.Observers,
		elapsed(r.ElapsedMs), r.RoomName)
}
