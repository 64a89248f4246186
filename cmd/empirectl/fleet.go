package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/config"
)

func newFleetCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "List and move fleets",
	}
	cmd.AddCommand(newFleetListCmd(cfg), newFleetDispatchCmd(cfg))
	return cmd
}

func newFleetListCmd(cfg config.Config) *cobra.Command {
	var empireID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an empire's fleets",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			fleets, err := e.svc.Fleets.List(cmd.Context(), empireID)
			if err != nil {
				return err
			}
			if len(fleets) == 0 {
				warnColor.Println("No fleets")
				return nil
			}

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"ID", "Status", "Coord", "Destination", "Arrives", "Units", "Size"}),
			)
			for _, f := range fleets {
				arrives := "-"
				if f.ArrivesAt != nil {
					arrives = formatTime(*f.ArrivesAt)
				}
				_ = table.Append([]string{
					f.ID,
					string(f.Status),
					f.Coord,
					f.Destination,
					arrives,
					formatUnits(f.Units),
					fmtInt(f.SizeCredits),
				})
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVar(&empireID, "empire", "", "Empire ID")
	_ = cmd.MarkFlagRequired("empire")
	return cmd
}

func newFleetDispatchCmd(cfg config.Config) *cobra.Command {
	var fleetID, destination string
	var travel time.Duration

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send a stationed fleet to another coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := e.svc.Fleets.Dispatch(cmd.Context(), fleetID, destination, time.Now().Add(travel))
			if err != nil {
				return err
			}
			successColor.Printf("✓ Fleet %s moving to %s, arrives %s\n", f.ID, f.Destination, formatTime(*f.ArrivesAt))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fleetID, "id", "", "Fleet ID")
	f.StringVar(&destination, "to", "", "Destination coordinate")
	f.DurationVar(&travel, "in", time.Hour, "Travel time")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newResearchCmd(cfg config.Config) *cobra.Command {
	var empireID, techKey string

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Start or list long-running research projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			if techKey != "" {
				p, err := e.svc.Research.Start(cmd.Context(), empireID, techKey, time.Now())
				if err != nil {
					return err
				}
				successColor.Printf("✓ Researching %s (%s)\n", p.TechKey, p.ID)
			}

			projects, err := e.svc.Research.List(cmd.Context(), empireID)
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Printf("   %-14s %-10s %6.1f%%\n", p.TechKey, p.Status, p.Percent())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&empireID, "empire", "", "Empire ID")
	cmd.Flags().StringVar(&techKey, "start", "", "Technology to start researching")
	_ = cmd.MarkFlagRequired("empire")
	return cmd
}

func formatUnits(units map[string]int64) string {
	keys := make([]string, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s×%d", k, units[k]))
	}
	return strings.Join(parts, " ")
}
