package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/mentorloop/config"
	"github.com/yoockh/mentorloop/internal/bootstrap"
	"github.com/yoockh/mentorloop/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "mentorloopctl",
	Short:         "Operational tasks for the mentorloop scheduling service",
	SilenceUsage:  true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() *logrus.Logger {
	l := logger.New()
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// withContainer connects the stores, wires the services and runs fn.
func withContainer(ctx context.Context, fn func(*bootstrap.Container) error) error {
	log := newLogger()
	cfg, err := config.LoadApp()
	if err != nil {
		return err
	}
	if err := bootstrap.Connect(ctx, log); err != nil {
		return err
	}
	defer bootstrap.Close(context.WithoutCancel(ctx))

	return fn(bootstrap.Wire(cfg, log))
}
