package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dcf_valuation/pkg/core/sensitivity"
	"dcf_valuation/pkg/io/loader"
)

var (
	sensGrowth   []float64
	sensShifts   []float64
	sensShocks   bool
	sensDelta    float64
	sensParallel int
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity <case-file>",
	Short: "Sweep terminal growth and discount-rate shifts around a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loader.LoadAssumptions(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		parallel := sensParallel
		if parallel == 0 {
			parallel = viper.GetInt("sensitivity_parallelism")
		}

		if sensShocks {
			base, results, err := sensitivity.RunShocks(ctx, a, sensitivity.DefaultShocks(sensDelta), parallel)
			if err != nil {
				return err
			}
			renderShocks(base.Bridge.EquityValue, results)
			return nil
		}

		grid, err := sensitivity.RunGrid(ctx, a, sensitivity.GridSpec{
			GrowthValues: sensGrowth,
			RateShifts:   sensShifts,
			Parallelism:  parallel,
		})
		if err != nil {
			return err
		}
		renderGrid(grid)
		log.Info().
			Str("run_id", grid.RunID).
			Int("valid", grid.Valid).
			Int("invalid", grid.Invalid).
			Msg("sensitivity sweep complete")
		return nil
	},
}

func init() {
	sensitivityCmd.Flags().Float64SliceVar(&sensGrowth, "growth", []float64{0.01, 0.015, 0.02, 0.025, 0.03}, "perpetuity growth values")
	sensitivityCmd.Flags().Float64SliceVar(&sensShifts, "shift", []float64{-0.01, -0.005, 0, 0.005, 0.01}, "parallel rate shifts applied to rf and rd")
	sensitivityCmd.Flags().BoolVar(&sensShocks, "shocks", false, "run one-at-a-time shocks instead of the grid")
	sensitivityCmd.Flags().Float64Var(&sensDelta, "delta", 0.5, "shock size (beta points; /100 for rates)")
	sensitivityCmd.Flags().IntVar(&sensParallel, "parallel", 0, "max concurrent engine runs")
	rootCmd.AddCommand(sensitivityCmd)
}

// renderGrid prints equity value with growth down the rows and rate shift
// across the columns.
func renderGrid(grid *sensitivity.GridResult) {
	table := tablewriter.NewWriter(os.Stdout)

	shifts := map[float64]bool{}
	var header []string
	header = append(header, "g \\ shift")
	for _, c := range grid.Cells {
		if !shifts[c.RateShift] {
			shifts[c.RateShift] = true
			header = append(header, fmt.Sprintf("%+.2f%%", c.RateShift*100))
		}
	}
	table.SetHeader(header)

	cols := len(header) - 1
	for i := 0; i < len(grid.Cells); i += cols {
		row := []string{fmt.Sprintf("%.2f%%", grid.Cells[i].Growth*100)}
		for j := i; j < i+cols && j < len(grid.Cells); j++ {
			c := grid.Cells[j]
			if c.Err != "" {
				row = append(row, "n/a")
				continue
			}
			row = append(row, strconv.FormatFloat(c.EquityValue, 'f', 0, 64))
		}
		table.Append(row)
	}
	table.Render()

	fmt.Printf("equity value: min %.0f, mean %.0f, max %.0f, stddev %.0f (%d valid, %d ill-posed)\n",
		grid.Min, grid.Mean, grid.Max, grid.StdDev, grid.Valid, grid.Invalid)
}

func renderShocks(baseEquity float64, results []sensitivity.ShockResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Shock", "Equity value", "Delta vs base"})
	table.Append([]string{"base", strconv.FormatFloat(baseEquity, 'f', 0, 64), ""})
	for _, r := range results {
		if r.Err != "" {
			table.Append([]string{r.Name, "error", r.Err})
			continue
		}
		table.Append([]string{
			r.Name,
			strconv.FormatFloat(r.EquityValue, 'f', 0, 64),
			strconv.FormatFloat(r.DeltaEquity, 'f', 0, 64),
		})
	}
	table.Render()
}
