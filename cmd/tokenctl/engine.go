package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/config"
)

func newLogger(flags *rootFlags, writer io.Writer) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if flags.logLevel != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(flags.logLevel))
		if err != nil {
			return zerolog.Nop(), err
		}
		level = parsed
	}

	output := writer
	if flags.human {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger(), nil
}

// loadEngine reads the token document and builds an engine that settles
// viewport samples synchronously.
func loadEngine(cmd *cobra.Command, operation string, flags *rootFlags, opts ...tokens.Option) (*tokens.Engine, *config.Document, error) {
	if strings.TrimSpace(flags.configPath) == "" {
		return nil, nil, newCommandError(operation, "validating flags", errors.New("config file is required"), "Pass --config with a token document.")
	}

	log, err := newLogger(flags, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, newCommandError(operation, "configuring logger", err, "Use one of debug, info, warn or error.")
	}

	doc, err := config.Load(flags.configPath)
	if err != nil {
		var parseErr *config.ParseError
		if errors.As(err, &parseErr) && errors.Is(err, os.ErrNotExist) {
			return nil, nil, newCommandError(operation, fmt.Sprintf("reading %s", flags.configPath), err, "Check the --config path.")
		}
		return nil, nil, newCommandError(operation, fmt.Sprintf("loading %s", flags.configPath), err, "Fix the token document and try again.")
	}

	base := []tokens.Option{
		tokens.WithViewportDebounce(0),
		tokens.WithResolveLogger(tokens.NewZerologLogger(log)),
	}
	engine, err := config.NewEngine(doc, append(base, opts...)...)
	if err != nil {
		return nil, nil, newCommandError(operation, "registering tokens", err, "Fix the token document and try again.")
	}
	log.Debug().Str("config", flags.configPath).Int("components", len(doc.Components)).Msg("token document loaded")
	return engine, doc, nil
}

func requireComponent(operation string, doc *config.Document, component string) error {
	if strings.TrimSpace(component) == "" {
		return newCommandError(operation, "validating flags", errors.New("component is required"), "Pass --component.")
	}
	if _, ok := doc.Components[component]; !ok {
		return newCommandError(operation, fmt.Sprintf("looking up component %q", component),
			fmt.Errorf("%w: %q", tokens.ErrUnknownComponent, component),
			fmt.Sprintf("Known components: %s.", strings.Join(doc.ComponentNames(), ", ")))
	}
	return nil
}
