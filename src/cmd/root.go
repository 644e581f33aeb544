package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/logger"
	"github.com/warp-contracts/launchpad/src/utils/monitoring"
)

var (
	RootCmd = &cobra.Command{
		Use:   "launchpad",
		Short: "Deploys the token launchpad contracts and runs maintenance scripts against them",

		// All child commands will use this
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			// Setup a context that gets cancelled upon SIGINT
			ctx, cancel = context.WithCancel(context.Background())

			signalChannel = make(chan os.Signal, 1)
			signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
			go func() {
				select {
				case <-signalChannel:
					cancel()
				case <-ctx.Done():
				}
			}()

			// Load configuration
			conf, err = config.Load(cfgFile)
			if err != nil {
				return
			}

			// Setup logging
			err = logger.Init(conf)
			if err != nil {
				return
			}

			monitor = monitoring.NewMonitor()
			return
		},

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Configuration
	conf    *config.Config
	cfgFile string

	// Counters of the current run
	monitor *monitoring.Monitor

	// Context setup
	ctx           context.Context
	cancel        context.CancelFunc
	signalChannel chan os.Signal
)

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path")
	cobra.OnFinalize(finalize)
}

// Runs after every command, failed ones included
func finalize() {
	defer func() {
		if signalChannel != nil {
			signal.Stop(signalChannel)
		}
		if cancel != nil {
			cancel()
		}
		monitor = nil
	}()

	// Setup didn't get far enough
	if monitor == nil {
		return
	}

	log := logger.NewSublogger("root-cmd")

	monitor.LogReport()
	err := monitor.Push(ctx, conf)
	if err != nil {
		// Metrics are best effort
		log.WithError(err).Warn("Report not pushed")
	}

	log.Debug("Finished")
}
