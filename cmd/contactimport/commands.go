package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
	"github.com/JonMunkholm/smsdesk/internal/store"
	"github.com/JonMunkholm/smsdesk/internal/web/middleware"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a CSV file without importing it (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			return printOutcome(cmd.OutOrStdout(), core.Validate(raw))
		},
	}
}

type submitOptions struct {
	owner  int64
	email  string
	token  string
	driver string
}

func newSubmitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Import a CSV file into the configured contacts store",
		Long: `Import a CSV file for one owner. The store comes from STORE_DRIVER and
its settings (CONTACTS_BACKEND_URL, DATABASE_URL, SQLITE_PATH) unless
--store overrides the driver. The file is imported all or nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args[0], opts)
		},
	}

	cmd.Flags().Int64Var(&opts.owner, "owner", 0, "Owner user ID (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Owner email, for logs")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("CONTACTS_TOKEN"), "Bearer token forwarded to the rest store")
	cmd.Flags().StringVar(&opts.driver, "store", "", "Store driver override: "+strings.Join(config.StoreDrivers, ", "))
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func runSubmit(cmd *cobra.Command, path string, opts submitOptions) error {
	ctx := cmd.Context()

	var cfg config.StoreConfig
	if err := config.LoadInto(&cfg); err != nil {
		return withCode(exitInternal, err)
	}
	if opts.driver != "" {
		cfg.Driver = opts.driver
	}
	if err := cfg.Validate(); err != nil {
		return withCode(exitUsage, err)
	}

	owner := core.OwnerContext{UserID: opts.owner, Email: opts.email, Token: opts.token}
	if err := owner.Validate(); err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid --owner: %w", err))
	}

	raw, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return withCode(exitUsage, err)
	}

	contacts, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return withCode(exitInternal, err)
	}
	defer closeStore()

	outcome, err := core.NewImporter(contacts).Import(ctx, raw, owner)
	if err != nil {
		return withCode(exitInternal, err)
	}
	return printOutcome(cmd.OutOrStdout(), outcome)
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print the CSV import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(core.Template())
			return err
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		owner int64
		email string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token with AUTH_JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sec config.SecurityConfig
			if err := config.LoadInto(&sec); err != nil {
				return withCode(exitInternal, err)
			}
			if sec.JWTSecret == "" {
				return withCode(exitUsage, fmt.Errorf("AUTH_JWT_SECRET is not set"))
			}

			tok, err := middleware.SignOwnerToken(core.OwnerContext{UserID: owner, Email: email, Role: role}, []byte(sec.JWTSecret), ttl)
			if err != nil {
				return withCode(exitInternal, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "Owner user ID (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", "", "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("owner")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if owner <= 0 {
			return withCode(exitUsage, fmt.Errorf("--owner must be positive"))
		}
		return nil
	}

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// printOutcome writes the outcome as indented JSON. An unsuccessful outcome
// exits with exitFailure.
func printOutcome(w io.Writer, outcome core.ImportOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		return withCode(exitInternal, err)
	}
	if !outcome.Success {
		return withCode(exitFailure, nil)
	}
	return nil
}
