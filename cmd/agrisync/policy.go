package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/agrisync/agrisync/pkg/ingest"
)

var (
	policyEntityType string
	policyAction     string
	policyAttributes string
	policySubject    string
	policyEffect     string
	policyAllUsers   bool
	policyTokenKey   string
	policyAt         string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage delegation policies",
}

var policyBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Print delegation evidence without storing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := ingest.LoadFileConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ev, err := delegation.NewEvidence(policyRequest(config), time.Now())
		if err != nil {
			return err
		}
		return printJSON(cmd, ev)
	},
}

var policyStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Store delegation evidence in the configured evidence file",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, store, err := openPolicyStore()
		if err != nil {
			return err
		}
		ev, err := delegation.NewEvidence(policyRequest(config), time.Now())
		if err != nil {
			return err
		}
		if err := store.Put(cmd.Context(), ev); err != nil {
			return fmt.Errorf("failed to store policy: %w", err)
		}
		return printJSON(cmd, ev)
	},
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored delegation evidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openPolicyStore()
		if err != nil {
			return err
		}
		evs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{"policies": evs})
	},
}

var policyTestCmd = &cobra.Command{
	Use:   "test [ATTRIBUTE...]",
	Short: "Evaluate an access request against stored evidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, store, err := openPolicyStore()
		if err != nil {
			return err
		}
		evs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		engine, err := delegation.NewEngine(evs...)
		if err != nil {
			return err
		}

		req := delegation.AccessRequest{
			Subject:    policySubject,
			EntityType: policyEntityType,
			Action:     policyAction,
			Attributes: args,
		}
		if req.Subject == "" {
			req.Subject = config.Delegation.AccessSubject
		}
		if policyAt != "" {
			at, err := time.Parse(time.RFC3339, policyAt)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
			req.At = at
		}

		decision, err := engine.Evaluate(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd, decision)
	},
}

var policyDecodeCmd = &cobra.Command{
	Use:   "decode TOKEN",
	Short: "Extract delegation evidence from a registry delegation token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key interface{}
		if policyTokenKey != "" {
			k, err := delegation.LoadPublicKey(policyTokenKey)
			if err != nil {
				return err
			}
			key = k
		}
		ev, err := delegation.DecodeDelegationToken(args[0], key)
		if err != nil {
			return err
		}
		return printJSON(cmd, ev)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{policyBuildCmd, policyStoreCmd} {
		cmd.Flags().StringVar(&policyAttributes, "attributes", "", "Comma-separated allowed attributes")
		cmd.Flags().StringVar(&policyEffect, "effect", delegation.EffectPermit, "Rule effect (Permit, Deny)")
		cmd.Flags().BoolVar(&policyAllUsers, "all-users", false, "Issue the policy to every user")
	}
	for _, cmd := range []*cobra.Command{policyBuildCmd, policyStoreCmd, policyTestCmd} {
		cmd.Flags().StringVar(&policyEntityType, "entity-type", "", "Entity type the policy covers")
		cmd.Flags().StringVar(&policyAction, "action", "", "Action the policy covers")
		cmd.Flags().StringVar(&policySubject, "subject", "", "Access subject (defaults to the configured one)")
	}
	policyTestCmd.Flags().StringVar(&policyAt, "at", "", "Evaluation time (RFC 3339, defaults to now)")
	policyDecodeCmd.Flags().StringVar(&policyTokenKey, "key", "", "PEM public key to verify the token signature")

	policyCmd.AddCommand(policyBuildCmd, policyStoreCmd, policyListCmd, policyTestCmd, policyDecodeCmd)
	rootCmd.AddCommand(policyCmd)
}

func policyRequest(config *ingest.FileConfig) delegation.Request {
	req := delegation.Request{
		Issuer:        config.Delegation.PolicyIssuer,
		AccessSubject: policySubject,
		EntityType:    policyEntityType,
		Action:        policyAction,
		Attributes:    delegation.ParseAttributes(policyAttributes),
		Effect:        policyEffect,
	}
	if req.AccessSubject == "" {
		req.AccessSubject = config.Delegation.AccessSubject
	}
	if policyAllUsers {
		req.AccessSubject = ""
	}
	return req
}

func openPolicyStore() (*ingest.FileConfig, delegation.Store, error) {
	config, err := ingest.LoadFileConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if config.Delegation.StorePath == "" {
		return nil, nil, errors.New(errors.ErrCodeMissingConfig, "delegation.store_path must be set to manage stored policies")
	}
	store, err := delegation.NewFileStore(config.Delegation.StorePath, nil)
	if err != nil {
		return nil, nil, err
	}
	return config, store, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
