package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"farmcal/internal/calendar"
	"farmcal/internal/ics"
)

var (
	scheduleYear  int
	scheduleMonth int
	scheduleWeek  int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the configured farm chores for a week",
	Long: `schedule expands the recurring tasks from the config file over one week.
Without flags the week containing today is shown.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleYear, "year", 0, "Year (default: current)")
	scheduleCmd.Flags().IntVar(&scheduleMonth, "month", 0, "Month 1-12 (default: current)")
	scheduleCmd.Flags().IntVar(&scheduleWeek, "week", 0, "Week anchor 1, 8, 15 or 22 (default: current week)")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, err := newNormalizer(cfg)
	if err != nil {
		return err
	}

	sel := calendar.WeekOf(time.Now().In(n.Location()))
	if scheduleYear != 0 {
		sel.Year = scheduleYear
	}
	if scheduleMonth != 0 {
		sel.Month = scheduleMonth
	}
	if scheduleWeek != 0 {
		sel.WeekAnchor = scheduleWeek
	}

	res, err := ics.WeekSchedule(cfg.Tasks, sel, n.Location())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, o := range res.Occurrences {
		start := calendar.WallClockOf(o.Start)
		end := calendar.WallClockOf(o.End)
		fmt.Fprintf(out, "%s  %s-%s  %s\n", start.DatePart(), start.TimePart(), end.TimePart(), o.Summary)
	}
	if len(res.Occurrences) == 0 {
		fmt.Fprintln(out, "no tasks scheduled")
	}
	return nil
}
