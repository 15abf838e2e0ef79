package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groupshard/groupshard/pkg/api"
	"github.com/groupshard/groupshard/pkg/arbiter"
	"github.com/groupshard/groupshard/pkg/config"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/metrics"
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
	Use:     "arbiter",
	Short:   "groupshard arbiter - node registry and lifecycle coordinator",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("arbiter version %s (%s)\n", Version, Commit))
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
	Short: "Start the arbiter process",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		nodeID, _ := cmd.Flags().GetString("node-id")
		raftBindAddr, _ := cmd.Flags().GetString("raft-bind-addr")
		healthAddr, _ := cmd.Flags().GetString("health-addr")
		signingSecret, _ := cmd.Flags().GetString("signing-secret")
		bootstrap, _ := cmd.Flags().GetBool("bootstrap")

		cfg, err := config.LoadArbiterConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		arb, err := arbiter.New(arbiter.Config{
			NodeID:   nodeID,
			BindAddr: raftBindAddr,
			DataDir:  cfg.DataDir,
		})
		if err != nil {
			return fmt.Errorf("create arbiter: %w", err)
		}

		if bootstrap {
			if err := arb.Bootstrap(); err != nil {
				return fmt.Errorf("bootstrap raft cluster: %w", err)
			}
		} else {
			if err := arb.Join(); err != nil {
				return fmt.Errorf("join raft cluster: %w", err)
			}
		}

		key, err := signing.DeriveKey(signingSecret)
		if err != nil {
			return fmt.Errorf("derive signing key: %w", err)
		}
		signer, err := signing.NewSigner(key)
		if err != nil {
			return fmt.Errorf("create signer: %w", err)
		}

		collector := metrics.NewCollector(arb, nil)
		collector.Start()
		defer collector.Stop()

		grpcServer := api.NewArbiterServer(arb, signer)
		errCh := make(chan error, 2)
		go func() {
			if err := grpcServer.Start(cfg.BindAddr); err != nil {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()

		healthServer := api.NewHealthServer(arb)
		go func() {
			if err := healthServer.Start(healthAddr); err != nil {
				errCh <- fmt.Errorf("health server: %w", err)
			}
		}()

		log.WithComponent("arbiter").Info().
			Str("node_id", nodeID).Str("bind_addr", cfg.BindAddr).Str("health_addr", healthAddr).
			Bool("bootstrap", bootstrap).Msg("arbiter started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.WithComponent("arbiter").Info().Str("signal", sig.String()).Msg("shutting down")
		case err := <-errCh:
			log.WithComponent("arbiter").Error().Err(err).Msg("server error, shutting down")
		}

		grpcServer.Stop()
		return arb.Shutdown()
	},
}

func init() {
	startCmd.Flags().String("config", "", "Path to arbiter config YAML (optional; env vars and flags can fully configure it)")
	startCmd.Flags().String("node-id", "arbiter-0", "Raft node ID, unique per arbiter replica")
	startCmd.Flags().String("raft-bind-addr", "0.0.0.0:7071", "Raft transport bind address")
	startCmd.Flags().String("health-addr", "0.0.0.0:7090", "HTTP health/metrics bind address")
	startCmd.Flags().String("signing-secret", "", "Shared secret used to derive the intra-cluster signing key")
	startCmd.Flags().Bool("bootstrap", false, "Bootstrap a new single-node Raft cluster instead of joining an existing one")
	_ = startCmd.MarkFlagRequired("signing-secret")
}
