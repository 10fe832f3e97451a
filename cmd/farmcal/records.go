package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"farmcal/internal/backend"
	"farmcal/internal/calendar"
	"farmcal/internal/model"
)

var (
	expenseDate string

	salesBy    string
	salesFrom  string
	salesTo    string
	salesNames bool

	notifMarkRead string
	notifDelete   string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List and record farm data kept by the backend",
}

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "List expense records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(ctx context.Context, c *backend.Client) error {
			q := url.Values{}
			if expenseDate != "" {
				if _, err := time.Parse("2006-01-02", expenseDate); err != nil {
					return fmt.Errorf("--date %q is not YYYY-MM-DD", expenseDate)
				}
				q.Set("date", expenseDate)
			}
			resp, err := backend.NewExpenseRepository(c).List(ctx, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range resp.Results {
				fmt.Fprintf(out, "%d  %s  %-20s  %10.2f  %s\n", e.ID, calendar.FormatDisplay(e.CreatedAt), e.Name, e.Cost, e.Description)
			}
			return nil
		})
	},
}

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "List sales, optionally filtered by seller and date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(ctx context.Context, c *backend.Client) error {
			repo := backend.NewSalesRepository(c)
			out := cmd.OutOrStdout()
			if salesNames {
				names, err := repo.TransactedByNames(ctx)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			q, err := backend.SalesFilter{TransactedBy: salesBy, FromDate: salesFrom, ToDate: salesTo}.Values()
			if err != nil {
				return err
			}
			sales, err := repo.ListAll(ctx, q, 0)
			if err != nil {
				return err
			}
			var total float64
			for _, s := range sales {
				total += s.TotalSales
				fmt.Fprintf(out, "%d  %s  %-12s  %-6s  %3d  %10.2f\n", s.ID, calendar.FormatDisplay(s.CreatedAt), s.TransactedBy, s.EggSize, s.Quantity, s.TotalSales)
			}
			fmt.Fprintf(out, "%d sales, total %.2f\n", len(sales), total)
			return nil
		})
	},
}

var eggsCmd = &cobra.Command{
	Use:   "eggs",
	Short: "List egg harvest records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(ctx context.Context, c *backend.Client) error {
			eggs, err := backend.NewEggRepository(c).ListAll(ctx, nil, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range eggs {
				fmt.Fprintf(out, "%d  %s  %-12s  %-6s  %3d\n", e.ID, calendar.FormatDisplay(e.HarvestTime), e.HarvestBy, e.EggSize, e.EggCount)
			}
			return nil
		})
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications, or mark one read or delete it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(ctx context.Context, c *backend.Client) error {
			repo := backend.NewNotificationRepository(c)
			switch {
			case notifMarkRead != "":
				return repo.MarkRead(ctx, notifMarkRead)
			case notifDelete != "":
				return repo.Delete(ctx, notifDelete)
			}

			resp, err := repo.List(ctx, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range resp.Results {
				mark := " "
				if !n.IsRead {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %d  %s\n", mark, n.ID, n.Message)
			}
			return nil
		})
	},
}

var orderCmd = &cobra.Command{
	Use:   "order CUSTOMER SIZE QUANTITY",
	Short: "Place an egg order (SIZE is Small, Medium or Large)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("quantity %q is not a number", args[2])
		}
		return withClient(func(ctx context.Context, c *backend.Client) error {
			payload := model.CreateOrder{CustomerName: args[0], EggSize: args[1], Quantity: qty}
			if _, err := backend.NewOrderRepository(c).Create(ctx, payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ordered %d %s eggs for %s\n", qty, payload.EggSize, payload.CustomerName)
			return nil
		})
	},
}

func init() {
	expensesCmd.Flags().StringVar(&expenseDate, "date", "", "Only expenses recorded on this date (YYYY-MM-DD)")

	salesCmd.Flags().StringVar(&salesBy, "by", "", "Only sales transacted by this person")
	salesCmd.Flags().StringVar(&salesFrom, "from", "", "First date (YYYY-MM-DD)")
	salesCmd.Flags().StringVar(&salesTo, "to", "", "Last date (YYYY-MM-DD)")
	salesCmd.Flags().BoolVar(&salesNames, "names", false, "List seller names instead of sales")

	notificationsCmd.Flags().StringVar(&notifMarkRead, "mark-read", "", "Mark the notification with this ID read")
	notificationsCmd.Flags().StringVar(&notifDelete, "delete", "", "Delete the notification with this ID")

	recordsCmd.AddCommand(expensesCmd, salesCmd, eggsCmd, notificationsCmd, orderCmd)
}

// withClient loads the config and runs fn against the backend with the
// configured timeout.
func withClient(fn func(context.Context, *backend.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newBackendClient(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutSeconds)*time.Second*2)
	defer cancel()
	return fn(ctx, c)
}
