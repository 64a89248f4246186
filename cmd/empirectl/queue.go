package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/queue"
)

func newQueueCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and place production queue items",
	}
	cmd.AddCommand(newQueueListCmd(cfg), newQueueStartCmd(cfg), newQueueCancelCmd(cfg))
	return cmd
}

func newQueueListCmd(cfg config.Config) *cobra.Command {
	var (
		empireID string
		opts     queue.ListOptions
		category string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an empire's queue items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Category = catalog.Category(category)
			opts.Status = queue.Status(status)

			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			items, err := e.svc.Queue.List(cmd.Context(), empireID, opts)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				warnColor.Println("No queue items")
				return nil
			}

			now := time.Now()
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"ID", "Category", "Item", "Coord", "Cost", "Status", "Paid", "Completes", "Remaining"}),
			)
			for _, it := range items {
				remaining := "-"
				if it.Status == queue.StatusPending {
					remaining = fmt.Sprintf("%dm", it.RemainingMinutes(now))
				}
				_ = table.Append([]string{
					it.ID,
					string(it.Category),
					it.ItemKey,
					it.Coord,
					fmtInt(it.CreditsCost),
					string(it.Status),
					fmt.Sprintf("%t", it.Paid),
					formatTime(it.CompletesAt),
					remaining,
				})
			}
			return table.Render()
		},
	}

	f := cmd.Flags()
	f.StringVar(&empireID, "empire", "", "Empire ID")
	f.StringVar(&category, "category", "", "technology, unit or defense")
	f.StringVar(&status, "status", "", "pending, completed or cancelled")
	f.IntVar(&opts.Limit, "limit", 50, "Maximum items")
	_ = cmd.MarkFlagRequired("empire")
	return cmd
}

func newQueueStartCmd(cfg config.Config) *cobra.Command {
	var empireID, coord, item string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start production of an item at a colony",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.svc.Queue.Start(cmd.Context(), empireID, coord, item)
			if err != nil {
				return describeQueueError(err)
			}
			successColor.Printf("✓ Queued %s %s (%s)\n", res.Category, res.ItemKey, res.QueueID)
			fmt.Printf("   Cost: %d   Balance: %d   Rate: %.2f/h   ETA: %dm (%s)\n",
				res.CreditsCost, res.BalanceAfter, res.CapacityRate, res.ETAMinutes, formatTime(res.CompletesAt))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&empireID, "empire", "", "Empire ID")
	f.StringVar(&coord, "coord", "", "Colony coordinate")
	f.StringVar(&item, "item", "", "Catalog item key")
	_ = cmd.MarkFlagRequired("empire")
	_ = cmd.MarkFlagRequired("coord")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newQueueCancelCmd(cfg config.Config) *cobra.Command {
	var req queue.CancelRequest

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending queue item",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			item, err := e.svc.Queue.Cancel(cmd.Context(), req)
			if err != nil {
				return describeQueueError(err)
			}
			successColor.Printf("✓ Cancelled %s %s (refund: %t)\n", item.Category, item.ItemKey, req.Refund && item.Paid)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.EmpireID, "empire", "", "Empire ID")
	f.StringVar(&req.QueueID, "id", "", "Queue item ID")
	f.BoolVar(&req.Refund, "refund", false, "Return the paid credits")
	_ = cmd.MarkFlagRequired("empire")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// describeQueueError flattens a queue error and its details into one line.
func describeQueueError(err error) error {
	var qe *queue.Error
	if !errors.As(err, &qe) || len(qe.Details) == 0 {
		return err
	}
	return fmt.Errorf("%w %v", err, qe.Details)
}
