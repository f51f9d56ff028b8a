// Package cmd implements the quickrt command-line interface.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go.quickrt.io/quickrt/env"
)

type rootCommand struct {
	cmd    *cobra.Command
	logger *logrus.Logger
	opts   env.Options
}

func newRootCommand() *rootCommand {
	c := &rootCommand{
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
	// the base command when called without any subcommands
	c.cmd = &cobra.Command{
		Use:               "quickrt",
		Short:             "a lightweight JavaScript runtime",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.AddCommand(getResolveCmd(c))
	return c
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	opts, err := env.ReadOptions()
	if err != nil {
		return err
	}
	c.opts = opts

	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	c.logger.SetLevel(level)
	return nil
}

// Execute runs the root command and exits the process on failure.
func Execute() {
	c := newRootCommand()
	if err := c.cmd.Execute(); err != nil {
		c.logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
