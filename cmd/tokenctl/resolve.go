package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type resolveOptions struct {
	component string
	width     int
	path      string
}

type resolvePayload struct {
	Component  string         `json:"component" yaml:"component"`
	Breakpoint string         `json:"breakpoint" yaml:"breakpoint"`
	Width      int            `json:"width" yaml:"width"`
	Applied    []string       `json:"applied" yaml:"applied"`
	Tokens     map[string]any `json:"tokens" yaml:"tokens"`
}

func newResolveCmd(flags *rootFlags) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a component's tokens at a viewport width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.component, "component", "", "Component to resolve")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Viewport width in pixels")
	cmd.Flags().StringVar(&opts.path, "path", "", "Print only the leaf at this dotted path")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func runResolve(cmd *cobra.Command, flags *rootFlags, opts *resolveOptions) error {
	engine, doc, err := loadEngine(cmd, "resolve tokens", flags)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := requireComponent("resolve tokens", doc, opts.component); err != nil {
		return err
	}

	resolved, err := engine.ResolveWidth(opts.component, opts.width)
	if err != nil {
		return newCommandError("resolve tokens", fmt.Sprintf("resolving %q at %dpx", opts.component, opts.width), err, "")
	}

	if opts.path != "" {
		node, ok := resolved.Lookup(opts.path)
		if !ok || !node.Kind().IsLeaf() {
			return newCommandError("resolve tokens", fmt.Sprintf("reading %q", opts.path),
				fmt.Errorf("path %q is not a token leaf", opts.path), "Run 'tokenctl schema' to list the component's leaves.")
		}
		if flags.jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]string{"path": opts.path, "value": resolved.Value(opts.path)})
		}
		fmt.Fprintln(cmd.OutOrStdout(), resolved.Value(opts.path))
		return nil
	}

	applied := resolved.Applied
	if applied == nil {
		applied = []string{}
	}
	return writeStructured(cmd.OutOrStdout(), flags.jsonOutput, resolvePayload{
		Component:  resolved.Component,
		Breakpoint: resolved.Breakpoint.Name,
		Width:      opts.width,
		Applied:    applied,
		Tokens:     resolved.Plain(),
	})
}
