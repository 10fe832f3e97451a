package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"farmcal/internal/calendar"
)

var anchorCmd = &cobra.Command{
	Use:   "anchor YEAR MONTH WEEK",
	Short: "Print the backend fromDate for a year, month and week anchor",
	Long: `anchor resolves a week selection to the fromDate the backend expects.
WEEK is the day the week starts on: 1, 8, 15 or 22.

  farmcal anchor 2024 2 22   ->   2024-02-22 12:00:00`,
	Args: cobra.ExactArgs(3),
	RunE: runAnchor,
}

var parseCmd = &cobra.Command{
	Use:   "parse TIMESTAMP...",
	Short: "Normalize backend timestamps to transport and zoned form",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

var displayCmd = &cobra.Command{
	Use:   "display TIMESTAMP...",
	Short: "Render backend timestamps as DD/MM/YYYY HH:MM",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDisplay,
}

func runAnchor(cmd *cobra.Command, args []string) error {
	var fields [3]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("%q is not a number", a)
		}
		fields[i] = n
	}

	sel := calendar.PeriodSelector{Year: fields[0], Month: fields[1], WeekAnchor: fields[2]}
	anchor, err := calendar.ResolveAnchor(sel)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), anchor)
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, err := newNormalizer(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, raw := range args {
		w, err := n.Parse(raw)
		if err != nil {
			fmt.Fprintf(out, "%s\t!! %v\n", raw, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", raw, calendar.FormatTransport(w, n.OffsetAt(w)), w.Zoned(n.Location()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d timestamps could not be parsed", failed, len(args))
	}
	return nil
}

func runDisplay(cmd *cobra.Command, args []string) error {
	for _, raw := range args {
		fmt.Fprintln(cmd.OutOrStdout(), calendar.FormatDisplay(raw))
	}
	return nil
}
