package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
)

type simulateOptions struct {
	component string
}

type simulateStep struct {
	Width      int               `json:"width"`
	Previous   string            `json:"previous"`
	Breakpoint string            `json:"breakpoint"`
	Tokens     map[string]string `json:"tokens,omitempty"`
}

type simulatePayload struct {
	Steps []simulateStep    `json:"steps"`
	Cache tokens.CacheStats `json:"cache"`
}

func newSimulateCmd(flags *rootFlags) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <width>...",
		Short: "Feed viewport widths through the observer and report breakpoint changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, flags, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.component, "component", "", "Resolve this component after every change")
	return cmd
}

func runSimulate(cmd *cobra.Command, flags *rootFlags, opts *simulateOptions, args []string) error {
	widths := make([]int, 0, len(args))
	for _, arg := range args {
		width, err := strconv.Atoi(arg)
		if err != nil || width < 0 {
			return newCommandError("simulate viewport", fmt.Sprintf("parsing width %q", arg), fmt.Errorf("width must be a non-negative integer"), "")
		}
		widths = append(widths, width)
	}

	engine, doc, err := loadEngine(cmd, "simulate viewport", flags)
	if err != nil {
		return err
	}
	defer engine.Close()

	if opts.component != "" {
		if err := requireComponent("simulate viewport", doc, opts.component); err != nil {
			return err
		}
	}

	var steps []simulateStep
	var resolveErr error
	engine.OnBreakpointChange(func(change tokens.BreakpointChange) {
		step := simulateStep{Width: change.Width, Previous: change.Previous.Name, Breakpoint: change.Current.Name}
		if opts.component != "" {
			resolved, err := engine.ResolveAt(opts.component, change.Current)
			if err != nil {
				if resolveErr == nil {
					resolveErr = err
				}
				return
			}
			step.Tokens = map[string]string{}
			for _, leaf := range resolved.Leaves() {
				step.Tokens[leaf.Path] = resolved.Value(leaf.Path)
			}
		}
		steps = append(steps, step)
	})

	for _, width := range widths {
		engine.Sample(width)
	}
	if resolveErr != nil {
		return newCommandError("simulate viewport", fmt.Sprintf("resolving %q", opts.component), resolveErr, "")
	}

	if flags.jsonOutput {
		if steps == nil {
			steps = []simulateStep{}
		}
		return writeJSON(cmd.OutOrStdout(), simulatePayload{Steps: steps, Cache: engine.Cache().Stats()})
	}

	out := cmd.OutOrStdout()
	if len(steps) == 0 {
		fmt.Fprintf(out, "no breakpoint change, active: %s\n", engine.Active().Name)
		return nil
	}
	for _, step := range steps {
		fmt.Fprintf(out, "%dpx: %s -> %s\n", step.Width, step.Previous, step.Breakpoint)
		for _, leaf := range sortedKeys(step.Tokens) {
			fmt.Fprintf(out, "  %s = %s\n", leaf, step.Tokens[leaf])
		}
	}
	return nil
}
