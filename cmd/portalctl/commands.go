package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/campushq/go-placement-client/internal/config"
	"github.com/campushq/go-placement-client/portal"
)

func newRootCmd(cfg config.Config, log zerolog.Logger) *cobra.Command {
	var p *portal.Portal

	rootCmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Command-line client for the placement portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			p, err = portal.New(cfg, portal.WithLogger(log))
			return err
		},
	}

	loginCmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppName(cfg.GetAppName())
			password := os.Getenv("PORTAL_PASSWORD")
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				if _, err := fmt.Scanln(&password); err != nil {
					return err
				}
			}
			result, err := p.Auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s), landing at %s\n", result.UserID, result.Role, result.LandingPath)
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return p.Auth.Logout(cmd.Context())
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session identity and token expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !p.Store.LoggedIn() {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("user_id: %s\nrole:    %s\n", p.Store.UserID(), p.Store.RoleType())
			claims, err := p.Store.Claims()
			if err != nil {
				return err
			}
			fmt.Printf("expires: %s", claims.ExpiresAt.Format(time.RFC3339))
			if claims.Expired(time.Now()) {
				fmt.Print(" (expired, will refresh on next call)")
			}
			fmt.Println()
			return nil
		},
	}

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Fetch and print the cached user profile document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := p.Cache.FetchAndCache(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	refetchCmd := &cobra.Command{
		Use:   "refetch",
		Short: "Invalidate the cached profile and fetch fresh data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := p.Cache.InvalidateAndRefetch(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("profile refetched")
			return nil
		},
	}

	themeCmd := &cobra.Command{
		Use:   "theme [value]",
		Short: "Show or set the display theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println(p.Store.Preference("theme"))
				return nil
			}
			return p.Store.SetPreference("theme", args[0])
		},
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, profileCmd, refetchCmd, themeCmd)
	return rootCmd
}
