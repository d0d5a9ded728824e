// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/ingest"
	"github.com/agrisync/agrisync/pkg/sink"
)

var (
	port               int
	sinkType           string
	confirmPersistence bool
	storePath          string
	policyIssuer       string
	accessSubject      string
	authRequired       bool
	authKeyPath        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingest API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		config, err := ingest.LoadFileConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyServeFlags(cmd, config)
		if err := config.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if configPath != "" {
			configureLogging(&config.Logging)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		entitySink, err := newSink(config)
		if err != nil {
			return err
		}

		store, engine, err := ingest.NewDelegation(ctx, config.Delegation)
		if err != nil {
			return fmt.Errorf("failed to open delegation store: %w", err)
		}
		if evs, err := store.List(ctx); err == nil {
			if err := engine.Load(evs); err != nil {
				return fmt.Errorf("failed to load delegation evidence: %w", err)
			}
		}

		auth, err := newAuth(config.Auth)
		if err != nil {
			return err
		}

		service := ingest.NewService(ingest.Config{
			ConfirmPersistence: config.ConfirmPersistence,
			StampDates:         config.StampDates,
			PolicyIssuer:       config.Delegation.PolicyIssuer,
			AccessSubject:      config.Delegation.AccessSubject,
		}, entitySink, store, engine)

		return ingest.NewServer(config, ingest.NewRouter(service, auth)).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	serveCmd.Flags().StringVar(&sinkType, "sink", "memory", "Entity sink (memory, stdout)")
	serveCmd.Flags().BoolVar(&confirmPersistence, "confirm", false, "Re-read every entity after sending it")
	serveCmd.Flags().StringVar(&storePath, "policy-store", "", "Path to the delegation evidence file (in memory when empty)")
	serveCmd.Flags().StringVar(&policyIssuer, "policy-issuer", "", "Issuer written on stored delegation evidence")
	serveCmd.Flags().StringVar(&accessSubject, "access-subject", "", "Default access subject for stored policies")
	serveCmd.Flags().BoolVar(&authRequired, "auth-required", false, "Reject API requests without a bearer token")
	serveCmd.Flags().StringVar(&authKeyPath, "auth-key", "", "PEM public key used to verify bearer tokens")

	rootCmd.AddCommand(serveCmd)
}

// applyServeFlags overrides file values with flags set on the command line.
func applyServeFlags(cmd *cobra.Command, config *ingest.FileConfig) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		config.Port = port
	}
	if flags.Changed("sink") {
		config.Sink = ingest.SinkType(sinkType)
	}
	if flags.Changed("confirm") {
		config.ConfirmPersistence = confirmPersistence
	}
	if flags.Changed("policy-store") {
		config.Delegation.StorePath = storePath
	}
	if flags.Changed("policy-issuer") {
		config.Delegation.PolicyIssuer = policyIssuer
	}
	if flags.Changed("access-subject") {
		config.Delegation.AccessSubject = accessSubject
	}
	if flags.Changed("auth-required") {
		config.Auth.Required = authRequired
	}
	if flags.Changed("auth-key") {
		config.Auth.PublicKeyPath = authKeyPath
	}
}

func newSink(config *ingest.FileConfig) (sink.Sink, error) {
	switch config.Sink {
	case ingest.SinkTypeStdout:
		return sink.NewWriter(os.Stdout), nil
	case ingest.SinkTypeMemory:
		return sink.NewMemory(config.MemoryCapacity)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", config.Sink)
	}
}

func newAuth(config ingest.AuthConfig) (func(http.Handler) http.Handler, error) {
	if !config.Required && config.PublicKeyPath == "" {
		return nil, nil
	}
	opts := ingest.AuthOptions{Required: config.Required}
	if config.PublicKeyPath != "" {
		key, err := delegation.LoadPublicKey(config.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load auth key: %w", err)
		}
		opts.Key = key
	}
	return ingest.RequireBearer(opts), nil
}
