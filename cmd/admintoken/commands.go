package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipkia/connector/internal/infrastructure/auth"
	"github.com/shipkia/connector/internal/infrastructure/config"
)

// cli carries the state shared by every subcommand
type cli struct {
	// loadConfig is swapped in tests
	loadConfig func() (*config.Config, error)
}

func newRootCmd() *cobra.Command {
	return (&cli{loadConfig: config.Load}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "admintoken",
		Short: "Issue and inspect Shipkia connector admin tokens",
		Long: `Issue and inspect the bearer tokens the admin API accepts.

Tokens are signed with jwt.secret from config.toml or SHIPKIA_JWT_SECRET.`,
		SilenceUsage: true,
	}
	root.AddCommand(c.issueCmd(), c.inspectCmd())
	return root
}

func (c *cli) jwtService() (*auth.JWTService, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return auth.NewJWTService(cfg.JWT), nil
}

func (c *cli) issueCmd() *cobra.Command {
	var (
		username    string
		permissions []string
		ttl         time.Duration
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "issue <admin-id>",
		Short: "Issue a token for an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl < 0 {
				return errors.New("--ttl cannot be negative")
			}
			svc, err := c.jwtService()
			if err != nil {
				return err
			}
			token, err := svc.Issue(auth.IssueInput{
				Subject:     args[0],
				Username:    username,
				Permissions: permissions,
				TTL:         ttl,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(token)
			}
			fmt.Fprintln(out, token.Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "display name carried in the token")
	cmd.Flags().StringSliceVarP(&permissions, "permission", "p", []string{auth.PermissionManageOptions}, "granted permissions")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: jwt.token_expiration)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the token with its expiry as JSON")
	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Validate a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.jwtService()
			if err != nil {
				return err
			}
			claims, err := svc.Validate(cmd.Context(), strings.TrimPrefix(args[0], "Bearer "))
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "admin:       %s\n", claims.Subject)
			if claims.Username != "" {
				fmt.Fprintf(out, "username:    %s\n", claims.Username)
			}
			fmt.Fprintf(out, "permissions: %s\n", strings.Join(claims.Permissions, ", "))
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "expires:     %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
			}
			fmt.Fprintf(out, "id:          %s\n", claims.ID)
			return nil
		},
	}
}
