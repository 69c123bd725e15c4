package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
)

func newBreakpointsCmd(flags *rootFlags) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "breakpoints",
		Short: "List the breakpoints declared by the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := loadEngine(cmd, "list breakpoints", flags)
			if err != nil {
				return err
			}
			defer engine.Close()

			active := ""
			if cmd.Flags().Changed("width") {
				active = engine.Breakpoints().Active(width).Name
			}
			return renderBreakpoints(cmd, flags, engine.Breakpoints().Epochs(), active)
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Mark the breakpoint active at this viewport width")
	return cmd
}

type breakpointRow struct {
	Name     string `json:"name"`
	MinWidth int    `json:"minWidth"`
	Active   bool   `json:"active,omitempty"`
}

func renderBreakpoints(cmd *cobra.Command, flags *rootFlags, bps []tokens.Breakpoint, active string) error {
	rows := make([]breakpointRow, 0, len(bps))
	for _, bp := range bps {
		rows = append(rows, breakpointRow{Name: bp.Name, MinWidth: bp.MinWidth, Active: bp.Name == active})
	}
	if flags.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMIN-WIDTH\tACTIVE")
	for _, row := range rows {
		marker := ""
		if row.Active {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Name, row.MinWidth, marker)
	}
	return tw.Flush()
}
