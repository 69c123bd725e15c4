package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tokens/schema/jsonschema"
)

type schemaOptions struct {
	component string
	fragment  bool
	id        string
}

func newSchemaCmd(flags *rootFlags) *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a component's token table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.component, "component", "", "Component to describe")
	cmd.Flags().BoolVar(&opts.fragment, "fragment", false, "Describe override fragments instead of the complete table")
	cmd.Flags().StringVar(&opts.id, "id", "", "Value for the document $id")
	_ = cmd.MarkFlagRequired("component")

	return cmd
}

func runSchema(cmd *cobra.Command, flags *rootFlags, opts *schemaOptions) error {
	engine, doc, err := loadEngine(cmd, "generate schema", flags)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := requireComponent("generate schema", doc, opts.component); err != nil {
		return err
	}

	schema, _ := engine.Store().Schema(opts.component)
	generate := jsonschema.Generate
	if opts.fragment {
		generate = jsonschema.GenerateFragment
	}
	document, err := generate(schema, jsonschema.WithTitle(opts.component), jsonschema.WithID(opts.id))
	if err != nil {
		return newCommandError("generate schema", fmt.Sprintf("describing %q", opts.component), err, "")
	}
	return writeJSON(cmd.OutOrStdout(), document)
}
