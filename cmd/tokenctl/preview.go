package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/layering"
)

type previewOptions struct {
	component string
	width     int
	noColor   bool
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a component's resolved tokens with color swatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.component, "component", "", "Component to preview")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Viewport width in pixels")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable swatches even on a terminal")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func runPreview(cmd *cobra.Command, flags *rootFlags, opts *previewOptions) error {
	engine, doc, err := loadEngine(cmd, "preview tokens", flags)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := requireComponent("preview tokens", doc, opts.component); err != nil {
		return err
	}

	resolved, err := engine.ResolveWidth(opts.component, opts.width)
	if err != nil {
		return newCommandError("preview tokens", fmt.Sprintf("resolving %q at %dpx", opts.component, opts.width), err, "")
	}

	out := cmd.OutOrStdout()
	swatches := !opts.noColor && isTerminal(out)
	fmt.Fprintln(out, renderPreview(lipgloss.NewRenderer(out), resolved, opts.width, swatches))
	return nil
}

func renderPreview(renderer *lipgloss.Renderer, resolved *tokens.Resolved, width int, swatches bool) string {
	titleStyle := renderer.NewStyle().Bold(true)
	mutedStyle := renderer.NewStyle().Faint(true)
	boxStyle := renderer.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	leaves := resolved.Leaves()
	pathWidth := 0
	for _, leaf := range leaves {
		pathWidth = max(pathWidth, len(leaf.Path))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s @ %s (%dpx)", resolved.Component, resolved.Breakpoint.Name, width)))
	b.WriteString("\n")
	applied := "none"
	if len(resolved.Applied) > 0 {
		applied = strings.Join(resolved.Applied, " -> ")
	}
	b.WriteString(mutedStyle.Render("applied: " + applied))
	for _, leaf := range leaves {
		value := layering.LeafString(leaf.Value)
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-*s  %-9s ", pathWidth, leaf.Path, leaf.Value.Kind()))
		if swatches {
			b.WriteString(swatch(renderer, leaf.Value))
		}
		b.WriteString(value)
	}
	return boxStyle.Render(b.String())
}

// swatch renders a two-cell block in the leaf's color. Only hex colors can
// be shown on a terminal; everything else gets blank cells.
func swatch(renderer *lipgloss.Renderer, node layering.Node) string {
	color, ok := node.(layering.Color)
	if !ok {
		return ""
	}
	value := string(color)
	if !strings.HasPrefix(value, "#") || (len(value) != 4 && len(value) != 7) {
		return "   "
	}
	return renderer.NewStyle().Foreground(lipgloss.Color(value)).Render("██") + " "
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
