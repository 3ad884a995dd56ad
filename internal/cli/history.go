package cli

import (
	"fmt"
	"io"

	"festquiz/internal/config"
	"festquiz/internal/domain"
	"github.com/spf13/cobra"
)

// NewHistoryCmd lists recently finished sessions from the configured archive.
func NewHistoryCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived answer keys, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg.Log.Level)

			deps, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			archive, persistent := deps.archive(cfg)
			if !persistent {
				return fmt.Errorf("no archive configured: set postgres.url or redis.addr")
			}
			facits, err := archive.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), facits)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")
	return cmd
}

func printHistory(out io.Writer, facits []domain.Facit) {
	if len(facits) == 0 {
		fmt.Fprintln(out, "no finished sessions")
		return
	}
	for _, f := range facits {
		room := f.RoomCode
		if room == "" {
			room = "-"
		}
		leader := "-"
		if len(f.Scoreboard) > 0 {
			leader = fmt.Sprintf("%s (%d)", f.Scoreboard[0].Name, f.Scoreboard[0].Score)
		}
		fmt.Fprintf(out, "%s  %s  room=%s  questions=%d  leader=%s\n",
			f.FinishedAt.Local().Format("2006-01-02 15:04"), f.ID, room, len(f.Records), leader)
	}
}
