package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/tick"
)

func newTickCmd(cfg config.Config) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one game tick pass over every empire",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				now = t
			}

			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := e.svc.Scheduler.RunOnce(cmd.Context(), now)
			if err != nil {
				return err
			}
			printPassReport(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Tick time as RFC3339 (default now)")
	return cmd
}

func printPassReport(r tick.PassReport) {
	titleColor.Printf("Tick at %s (%s)\n", formatTime(r.At), r.Duration.Round(time.Millisecond))
	if r.Reconciled > 0 {
		warnColor.Printf("   Reconciled %d unpaid queue item(s)\n", r.Reconciled)
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Empire", "Credits", "Citizens", "Techs", "Units", "Defenses", "Buildings", "Fleets", "Research", "Status"}),
	)
	for _, er := range r.Empires {
		status := "ok"
		if er.Failed() {
			status = fmt.Sprintf("failed at %s: %s", er.FailedStep, er.Error)
		} else if er.CompletionFailures > 0 {
			status = fmt.Sprintf("%d completion(s) retried", er.CompletionFailures)
		}
		_ = table.Append([]string{
			er.EmpireID,
			fmt.Sprintf("+%d", er.CreditsPaid),
			fmt.Sprintf("+%d", er.CitizensAdded),
			joinOrDash(er.TechsCompleted),
			fmt.Sprintf("%d", len(er.UnitsCompleted)),
			joinOrDash(er.DefensesCompleted),
			fmt.Sprintf("%d", er.BuildingsActivated),
			fmt.Sprintf("%d", er.FleetsArrived),
			joinOrDash(er.ResearchCompleted),
			status,
		})
	}
	_ = table.Render()

	if n := r.Failures(); n > 0 {
		errorColor.Printf("✗ %d empire(s) failed\n", n)
		return
	}
	successColor.Printf("✓ %d empire(s) processed\n", len(r.Empires))
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}
