package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groupshard/groupshard/pkg/api"
	"github.com/groupshard/groupshard/pkg/client"
	"github.com/groupshard/groupshard/pkg/config"
	"github.com/groupshard/groupshard/pkg/fanout"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/signing"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shard",
	Short:   "groupshard shard node - serves a partition of group membership",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("shard version %s (%s)\n", Version, Commit))
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)
	rootCmd.AddCommand(startCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the shard node process",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		arbiterAddr, _ := cmd.Flags().GetString("arbiter-addr")
		healthAddr, _ := cmd.Flags().GetString("health-addr")
		signingSecret, _ := cmd.Flags().GetString("signing-secret")
		skipColdStart, _ := cmd.Flags().GetBool("skip-cold-start")

		cfg, err := config.LoadShardConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if len(cfg.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka.brokers must be configured")
		}

		key, err := signing.DeriveKey(signingSecret)
		if err != nil {
			return fmt.Errorf("derive signing key: %w", err)
		}
		signer, err := signing.NewSigner(key)
		if err != nil {
			return fmt.Errorf("create signer: %w", err)
		}

		node := shard.NewNode(cfg.ShardAddress)
		userSvc := client.NoopUserServiceClient{}

		arbClient, err := client.DialArbiter(arbiterAddr, signer)
		if err != nil {
			return fmt.Errorf("dial arbiter: %w", err)
		}
		defer arbClient.Close()

		runner := shard.NewLifecycleRunner(node, arbClient, client.DialPeer(signer), userSvc, strings.Join(cfg.KafkaBrokers, ","))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Start registers with the arbiter first, which is what hands this
		// node its index/total; load_from_data needs those to know which
		// groups it owns, so it runs right after registration completes
		// rather than before it.
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("lifecycle start: %w", err)
		}
		defer runner.Stop()

		if !skipColdStart {
			if err := runner.LoadFromData(ctx); err != nil {
				log.WithComponent("shard").Warn().Err(err).Msg("cold-start replay incomplete, continuing")
			}
		}

		dispatcher := fanout.NewDispatcher(node, userSvc)
		dlq, err := fanout.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("create dead-letter producer: %w", err)
		}
		defer dlq.Close()

		consumer, err := fanout.NewConsumer(cfg.KafkaBrokers, dispatcher, dlq)
		if err != nil {
			return fmt.Errorf("create fan-out consumer: %w", err)
		}
		go consumer.Run(ctx)
		defer consumer.Stop()

		collector := metrics.NewCollector(nil, node)
		collector.Start()
		defer collector.Stop()

		grpcServer := api.NewShardServer(node, signer)
		errCh := make(chan error, 2)
		go func() {
			if err := grpcServer.Start(cfg.ServerAddr); err != nil {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()

		healthServer := api.NewShardHealthServer(node)
		go func() {
			if err := healthServer.Start(healthAddr); err != nil {
				errCh <- fmt.Errorf("health server: %w", err)
			}
		}()

		log.WithComponent("shard").Info().
			Str("addr", cfg.ShardAddress).Str("server_addr", cfg.ServerAddr).
			Str("arbiter_addr", arbiterAddr).Msg("shard node started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.WithComponent("shard").Info().Str("signal", sig.String()).Msg("shutting down")
		case err := <-errCh:
			log.WithComponent("shard").Error().Err(err).Msg("server error, shutting down")
		}

		if err := runner.Shutdown(context.Background()); err != nil {
			log.WithComponent("shard").Error().Err(err).Msg("graceful leave failed")
		}
		grpcServer.Stop()
		return nil
	},
}

func init() {
	startCmd.Flags().String("config", "", "Path to shard config YAML (optional; env vars and flags can fully configure it)")
	startCmd.Flags().String("arbiter-addr", "", "Arbiter gRPC address")
	startCmd.Flags().String("health-addr", "0.0.0.0:7091", "HTTP health/metrics bind address")
	startCmd.Flags().String("signing-secret", "", "Shared secret used to derive the intra-cluster signing key")
	startCmd.Flags().Bool("skip-cold-start", false, "Skip load_from_data replay on boot")
	_ = startCmd.MarkFlagRequired("arbiter-addr")
	_ = startCmd.MarkFlagRequired("signing-secret")
}
