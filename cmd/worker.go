package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools, currently the payment gateway callback simulator.`,
}

// gatewayWorkerCmd runs the callback simulator used in local development: it
// plays the role of the real gateway by posting asynchronous callbacks to
// the API.
var gatewayWorkerCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the payment gateway callback simulator",
	Run: func(cmd *cobra.Command, args []string) {
		startGatewayWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	webhookURL   string
)

func startGatewayWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.L()

	simConfig := paymentgateway.SimulatorConfig{
		WebhookURL:   getStringFlag(webhookURL, config.Gateway.CallbackURL),
		MaxWorkers:   getIntFlag(maxWorkers, config.Gateway.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.Gateway.JobQueueSize),
	}

	log.Info("starting gateway callback simulator",
		"max_workers", simConfig.MaxWorkers,
		"job_queue_size", simConfig.JobQueueSize,
		"webhook_url", simConfig.WebhookURL)

	simulator := paymentgateway.NewSimulator(simConfig, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("gateway simulator is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	log.Info("received signal, shutting down gateway simulator", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		simulator.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		log.Info("gateway simulator shutdown complete")
	case <-ctx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	gatewayWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	gatewayWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	gatewayWorkerCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Webhook callback URL (overrides config)")

	workerCmd.AddCommand(gatewayWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
