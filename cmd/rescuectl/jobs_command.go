package main

import (
	"fmt"
	"strconv"

	"github.com/kiranshivaraju/rescueassist/internal/analysis"
	"github.com/kiranshivaraju/rescueassist/internal/store"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
	"github.com/spf13/cobra"
)

func newJobsCommand() *cobra.Command {
	var (
		status string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List towing jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !models.ValidJobStatus(status) {
				return fmt.Errorf("unknown status %q: must be New, In Progress or Completed", status)
			}

			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			jobs, err := st.ListJobs(cmd.Context(), store.JobFilter{Status: models.JobStatus(status)})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, jobs)
			}

			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				rows = append(rows, []string{
					j.ID,
					string(j.Status),
					j.Vehicle.Make + " " + j.Vehicle.Model,
					j.Vehicle.LicensePlate,
					j.Location,
					j.AssignedTo,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Vehicle", "Plate", "Location", "Driver"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newStatsCommand() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize completed jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			jobs, err := st.ListJobs(cmd.Context(), store.JobFilter{})
			if err != nil {
				return err
			}
			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			stats := analysis.Summarize(jobs, users, top)

			money := func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) + " kr" }
			rows := [][]string{
				{"Completed jobs", strconv.Itoa(stats.CompletedJobs)},
				{"Revenue", money(stats.Revenue.Total)},
				{"Average per job", money(stats.Revenue.AveragePerJob)},
				{"Paid on site", strconv.Itoa(stats.Revenue.PaidOnSite)},
			}
			for _, d := range stats.TopDrivers {
				rows = append(rows, []string{"Top driver", fmt.Sprintf("%s (%d)", d.Name, d.Completed)})
			}
			for _, c := range stats.TopDiagnoses {
				rows = append(rows, []string{"Diagnosis", fmt.Sprintf("%s (%d)", c.Value, c.Count)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", analysis.DefaultTopN, "Entries per ranking")
	return cmd
}
