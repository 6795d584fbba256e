package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/budgetsim/internal/chart"
	"github.com/theirongolddev/budgetsim/internal/cli"

	"github.com/spf13/cobra"
)

var flagColorsRemaining bool

var colorsCmd = &cobra.Command{
	Use:   "colors <count>",
	Short: "Print the chart color sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  runColors,
}

func init() {
	colorsCmd.Flags().BoolVar(&flagColorsRemaining, "remaining", false, "Give the last slot the Remaining color")
	rootCmd.AddCommand(colorsCmd)
}

func runColors(_ *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid count %q", args[0])
	}

	colors := chart.GenerateColors(n, flagColorsRemaining)
	if len(colors) == 0 {
		fmt.Println("  (no colors)")
		return nil
	}

	rows := make([][]string, 0, len(colors))
	for i, c := range colors {
		rows = append(rows, []string{
			strconv.Itoa(i),
			cli.RenderSwatch(c.Hex()),
			c.Hex(),
			c.Fill(),
			c.Stroke(),
		})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "", "Hex", "Fill", "Stroke"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
