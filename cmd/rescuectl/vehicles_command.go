package main

import (
	"fmt"

	"github.com/kiranshivaraju/rescueassist/internal/vehicles"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"github.com/spf13/cobra"
)

func newVehiclesCommand() *cobra.Command {
	vehiclesCmd := &cobra.Command{
		Use:   "vehicles",
		Short: "Query the vehicle registry",
	}

	vehiclesCmd.AddCommand(&cobra.Command{
		Use:   "lookup PLATE",
		Short: "Look up a vehicle by license plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok := vehicles.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no vehicle registered with plate %q", vehicles.NormalizePlate(args[0]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), vehicleTable([]models.VehicleRecord{rec}))
			return nil
		},
	})

	vehiclesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every registered vehicle",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), vehicleTable(vehicles.All()))
			return nil
		},
	})

	return vehiclesCmd
}

func vehicleTable(recs []models.VehicleRecord) string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.LicensePlate, r.Make, r.Model, r.VIN, r.InsuranceCompany})
	}
	return renderTable([]string{"Plate", "Make", "Model", "VIN", "Insurer"}, rows, nil)
}
