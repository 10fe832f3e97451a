package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"farmcal/internal/ics"
	appLog "farmcal/internal/log"
)

var (
	importDays   int
	importDryRun bool
	importCache  string
	importRate   float64
)

var importCmd = &cobra.Command{
	Use:   "import FILE|URL",
	Short: "Import an iCalendar feed into the backend",
	Long: `import reads an .ics file or feed URL, expands recurring entries over the
next --days days and creates one backend event per occurrence. Feed URLs
are fetched with conditional requests; if the feed is unreachable the last
cached copy is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importDays, "days", 30, "How many days ahead to import")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Print the events instead of creating them")
	importCmd.Flags().StringVar(&importCache, "cache-dir", "./var/ics-cache", "Directory for cached feeds")
	importCmd.Flags().Float64Var(&importRate, "rate", 5, "Maximum backend creates per second")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	n, err := newNormalizer(cfg)
	if err != nil {
		return err
	}
	if importDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", importDays)
	}
	if importRate <= 0 {
		return fmt.Errorf("--rate must be positive, got %g", importRate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target := args[0]
	src := ics.Source{ID: target}
	var body []byte
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		src.URL = target
		res, err := ics.NewFetcher(importCache).Fetch(ctx, src)
		if err != nil {
			return err
		}
		body = res.Body
	} else {
		body, err = os.ReadFile(target)
		if err != nil {
			return err
		}
	}

	events, err := ics.ParseICS(src, body, n.Location())
	if err != nil {
		return err
	}

	now := time.Now().In(n.Location())
	res, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
		DisplayLocation: n.Location(),
		RangeStart:      now,
		RangeEnd:        now.AddDate(0, 0, importDays),
	})
	if err != nil {
		return err
	}
	payloads := ics.ToCreateEvents(res.Occurrences, n)

	appLog.Info("ics import expanded",
		"source", src.ID,
		"events", len(events),
		"occurrences", len(payloads),
		"truncated", len(res.TruncatedEvents),
	)

	out := cmd.OutOrStdout()
	if importDryRun {
		for _, p := range payloads {
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.Start, p.End, p.Title)
		}
		return nil
	}

	repo, err := newEventRepository(cfg)
	if err != nil {
		return err
	}
	limiter := rate.NewLimiter(rate.Limit(importRate), 1)
	created := 0
	for _, p := range payloads {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("import stopped after %d events: %w", created, err)
		}
		if _, err := repo.Create(ctx, p); err != nil {
			appLog.Error("ics import: create failed", err, "title", p.Title, "start", p.Start)
			continue
		}
		created++
	}
	fmt.Fprintf(out, "created %d of %d events\n", created, len(payloads))
	if created < len(payloads) {
		return fmt.Errorf("%d events failed to import", len(payloads)-created)
	}
	return nil
}
