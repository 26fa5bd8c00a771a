package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/atlarge-research/opendc-go/driver"
	"github.com/atlarge-research/opendc-go/sim"
	"github.com/atlarge-research/opendc-go/sim/config"
	"github.com/atlarge-research/opendc-go/storage/sqlite"
)

// rootCmd is the base command: a single positional argument naming the
// SQLite store file to drive against. No flags — an optional
// "<storePath>.config.yaml" overlay next to the store file is read
// automatically instead of via a flag.
var rootCmd = &cobra.Command{
	Use:   "opendc-go <store-path>",
	Short: "Drive queued datacenter simulation experiments against a store",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	storePath := args[0]

	cfg, err := config.Load(storePath + ".config.yaml")
	if err != nil {
		logrus.WithError(err).Error("loading config overlay")
		return err
	}
	sim.ApplyConfig(cfg)

	store, err := sqlite.Open(storePath)
	if err != nil {
		logrus.WithError(err).Error("opening store")
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Warn("closing store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if v := recover(); v != nil {
			if msg, ok := sim.AsInvariantViolation(v); ok {
				logrus.Errorf("aborting on invariant violation: %s", msg)
				os.Exit(1)
			}
			panic(v)
		}
	}()

	d := driver.New(store, cfg, logrus.StandardLogger())
	logrus.WithField("store", storePath).Info("starting driver loop")
	return d.Run(ctx)
}
