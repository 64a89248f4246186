package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/domain/capacity"
	"github.com/rpggio/starbase/internal/domain/empire"
)

func newStatusCmd(cfg config.Config) *cobra.Command {
	var empireID string
	var breakdown bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show an empire's resources and the capacities of each base",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			emp, err := e.svc.Empires.Get(cmd.Context(), empireID)
			if err != nil {
				return err
			}
			econ, err := e.svc.Empires.Economy(cmd.Context(), empireID)
			if err != nil {
				return err
			}
			bases, err := e.svc.Empires.ListBases(cmd.Context(), empireID)
			if err != nil {
				return err
			}

			titleColor.Printf("%s (%s)\n", emp.Name, emp.ID)
			fmt.Printf("   Credits: %d   Income: %.2f/h   Energy: %d\n", emp.Credits, econ.CreditsPerHour, econ.Energy)
			fmt.Printf("   Last payout: %s\n", formatTime(emp.LastCreditPayout))
			fmt.Printf("   Techs: %s\n\n", formatLevels(emp.TechLevels))

			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Coord", "Citizens", "Construction", "Production", "Research", "Citizen", "Economy", "Energy", "Projected"}),
			)
			for _, b := range bases {
				c := b.Capacity()
				en := b.Energy()
				_ = table.Append([]string{
					string(b.Colony.Coord),
					fmtInt(b.Colony.Citizens),
					fmtRate(c.Construction.Value),
					fmtRate(c.Production.Value),
					fmtRate(c.Research.Value),
					fmtRate(c.Citizen.Value),
					fmtRate(c.Economy.Value),
					fmtInt(en.RawBalance),
					fmtInt(en.ProjectedBalance),
				})
			}
			if err := table.Render(); err != nil {
				return err
			}

			if breakdown {
				for _, b := range bases {
					printBreakdown(b)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&empireID, "empire", "", "Empire ID")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "Show where each capacity comes from")
	_ = cmd.MarkFlagRequired("empire")
	return cmd
}

func printBreakdown(b *empire.Base) {
	c := b.Capacity()
	titleColor.Printf("\n%s breakdown\n", b.Colony.Coord)
	rows := []struct {
		name string
		res  capacity.CapacityResult
	}{
		{"construction", c.Construction},
		{"production", c.Production},
		{"research", c.Research},
		{"citizen", c.Citizen},
		{"economy", c.Economy},
	}
	for _, r := range rows {
		parts := make([]string, 0, len(r.res.Breakdown))
		for _, en := range r.res.Breakdown {
			if en.Kind == capacity.EntryPercent {
				parts = append(parts, fmt.Sprintf("%s %+.0f%%", en.Source, en.Value*100))
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %+.2f", en.Source, en.Value))
		}
		fmt.Printf("   %-13s %8.2f  %s\n", r.name, r.res.Value, strings.Join(parts, ", "))
	}
}

func formatLevels(levels map[string]int) string {
	if len(levels) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, levels[k]))
	}
	return strings.Join(parts, " ")
}

func fmtRate(v float64) string { return fmt.Sprintf("%.2f", v) }
