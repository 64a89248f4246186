package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/config"
)

func newLedgerCmd(cfg config.Config) *cobra.Command {
	var empireID string
	var limit int

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the credit transactions of an empire, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			txs, err := e.svc.Ledger.History(cmd.Context(), empireID, limit)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				warnColor.Println("No transactions")
				return nil
			}

			plus := color.New(color.FgGreen).SprintFunc()
			minus := color.New(color.FgRed).SprintFunc()

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"#", "Time", "Type", "Amount", "Balance", "Note"}),
			)
			for _, tx := range txs {
				amount := plus(fmt.Sprintf("+%d", tx.Amount))
				if tx.Amount < 0 {
					amount = minus(fmt.Sprintf("%d", tx.Amount))
				}
				_ = table.Append([]string{
					fmtInt(tx.ID),
					formatTime(tx.CreatedAt),
					string(tx.Type),
					amount,
					fmtInt(tx.BalanceAfter),
					tx.Note,
				})
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVar(&empireID, "empire", "", "Empire ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	_ = cmd.MarkFlagRequired("empire")
	return cmd
}

func newReconcileCmd(cfg config.Config) *cobra.Command {
	grace := cfg.Game.ReconcileGrace
	if grace <= 0 {
		grace = 5 * time.Minute
	}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Settle unpaid queue items: mark charged ones paid, cancel the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.svc.Queue.ReconcileUnpaid(cmd.Context(), time.Now().Add(-grace))
			if err != nil {
				return err
			}
			if n == 0 {
				successColor.Println("✓ No orphaned queue items")
				return nil
			}
			warnColor.Printf("Cancelled %d orphaned queue item(s)\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&grace, "older-than", grace, "Only items started longer ago than this")
	return cmd
}
