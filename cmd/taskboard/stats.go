package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/model"
	"taskboard/internal/view"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's weekly statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Close()
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			src, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer src.Close()

			user, err := src.users.FindByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("find %s: %w", email, err)
			}
			tasks, err := src.tasks.ListByOwner(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), user.Email, tasks, time.Now().In(loc))
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email (required)")
	return cmd
}

func printStats(w io.Writer, email string, tasks []model.Task, now time.Time) {
	stats := view.WeeklyStats(tasks, now)
	series := view.WeeklySeries(tasks, now)

	fmt.Fprintf(w, "%s\n", email)
	fmt.Fprintf(w, "Tugas Selesai: %d\n", stats.Done)
	fmt.Fprintf(w, "Belum Selesai: %d\n", stats.Incomplete)
	if len(series.Data) != len(series.Labels) {
		fmt.Fprintln(w, "Tugas selesai per minggu: 0")
		return
	}
	for i, label := range series.Labels {
		fmt.Fprintf(w, "%-12s %d\n", label, series.Data[i])
	}
}
