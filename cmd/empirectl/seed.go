package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/starbase/internal/app"
	"github.com/rpggio/starbase/internal/config"
	"github.com/rpggio/starbase/internal/domain/empire"
)

func newSeedCmd(cfg config.Config) *cobra.Command {
	var (
		req       app.SeedRequest
		coord     string
		buildings map[string]int
		techs     map[string]int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an empire with a developed home colony",
		Example: `  empirectl seed --owner alice --name Vega --coord A01:02:03:04 \
    --building research_labs=2 --building solar_plants=3 --tech energy=1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := empire.ParseCoordinate(coord)
			if err != nil {
				return err
			}
			req.Location.Coord = c
			req.Buildings = buildings
			req.TechLevels = techs
			req.Now = time.Now()

			e, err := openEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			emp, err := e.svc.Seed(cmd.Context(), req)
			if err != nil {
				return err
			}
			successColor.Printf("✓ Seeded empire %s (%s)\n", emp.Name, emp.ID)
			fmt.Printf("   Credits: %d   Home: %s   Buildings: %d   Techs: %d\n",
				emp.Credits, c, len(buildings), len(emp.TechLevels))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.EmpireID, "id", "", "Empire ID (generated when empty)")
	f.StringVar(&req.OwnerID, "owner", "", "Owner ID")
	f.StringVar(&req.Name, "name", "", "Empire name")
	f.Int64Var(&req.Credits, "credits", 1000, "Starting credits")
	f.Int64Var(&req.Citizens, "citizens", 10, "Starting citizens")
	f.StringVar(&coord, "coord", "A01:01:01:01", "Home colony coordinate")
	f.Int64Var(&req.Location.SolarEnergy, "solar", 3, "Solar energy at the home location")
	f.Int64Var(&req.Location.Fertility, "fertility", 3, "Fertility at the home location")
	f.Int64Var(&req.Location.GasYield, "gas", 2, "Gas yield at the home location")
	f.Int64Var(&req.Location.MetalYield, "metal", 2, "Metal yield at the home location")
	f.StringToIntVar(&buildings, "building", map[string]int{}, "Active building levels as key=level (repeatable)")
	f.StringToIntVar(&techs, "tech", map[string]int{}, "Technology levels as key=level (repeatable)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
