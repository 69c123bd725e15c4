package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
)

type traceOptions struct {
	component string
	width     int
	path      string
}

func newTraceCmd(flags *rootFlags) *cobra.Command {
	opts := &traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Explain which layer supplies a token at a viewport width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.component, "component", "", "Component to trace")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Viewport width in pixels")
	cmd.Flags().StringVar(&opts.path, "path", "", "Dotted token path")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runTrace(cmd *cobra.Command, flags *rootFlags, opts *traceOptions) error {
	engine, doc, err := loadEngine(cmd, "trace token", flags)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := requireComponent("trace token", doc, opts.component); err != nil {
		return err
	}

	bp := engine.Breakpoints().Active(opts.width)
	trace, err := engine.Trace(opts.component, bp, opts.path)
	if err != nil {
		return newCommandError("trace token", fmt.Sprintf("tracing %q at %dpx", opts.path, opts.width), err, "")
	}

	if flags.jsonOutput {
		payload, err := trace.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return err
	}
	return renderTrace(cmd, trace)
}

func renderTrace(cmd *cobra.Command, trace tokens.Trace) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s @ %s = %s\n\n", trace.Component, trace.Path, trace.Breakpoint, trace.Value)

	winner, _ := trace.Winner()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAYER\tMIN-WIDTH\tVALUE\tSTATUS\tWHEN")
	for _, layer := range trace.Layers {
		status := "overridden"
		switch {
		case layer.Skipped:
			status = "skipped"
		case !layer.Found:
			status = "-"
		case layer.Layer == winner.Layer:
			status = "wins"
		}
		value := layer.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", layer.Layer, layer.MinWidth, value, status, layer.When)
	}
	return tw.Flush()
}
