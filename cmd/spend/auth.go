package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spend/internal/cli"
	"github.com/Veraticus/spend/internal/model"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Long: `Log in with your email and password. The issued credentials are saved
to the configured session backend and used by every other command.

Missing values are prompted for; the password is not echoed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				var err error
				if email == "" {
					if email, err = a.prompter.AskRequired(ctx, "Email"); err != nil {
						return err
					}
				}
				if password == "" {
					if password, err = a.prompter.Password(ctx, "Password"); err != nil {
						return err
					}
				}

				user, err := a.store.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return a.success("Logged in as %s (%s)", user.Username, user.Email)
			})
		},
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")

	return cmd
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := model.RegisterCredentials{}
			creds.Username, _ = cmd.Flags().GetString("username")
			creds.Email, _ = cmd.Flags().GetString("email")
			creds.Password, _ = cmd.Flags().GetString("password")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				var err error
				if creds.Username == "" {
					if creds.Username, err = a.prompter.AskRequired(ctx, "Username"); err != nil {
						return err
					}
				}
				if creds.Email == "" {
					if creds.Email, err = a.prompter.AskRequired(ctx, "Email"); err != nil {
						return err
					}
				}
				if creds.Password == "" {
					if creds.Password, err = a.prompter.Password(ctx, "Password"); err != nil {
						return err
					}
					confirm, err := a.prompter.Password(ctx, "Confirm password")
					if err != nil {
						return err
					}
					if confirm != creds.Password {
						return fmt.Errorf("passwords do not match")
					}
				}

				user, err := a.store.Register(ctx, creds)
				if err != nil {
					return err
				}
				return a.success("Registered and logged in as %s (%s)", user.Username, user.Email)
			})
		},
	}

	cmd.Flags().String("username", "", "display name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.store.Logout(ctx); err != nil {
					return err
				}
				return a.success("Logged out")
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := cli.PrintUser(a.out, a.store.CurrentUser(), a.store.Expiry()); err != nil {
					return err
				}
				if a.sqlite == nil || a.store.CurrentUser() == nil {
					return nil
				}

				saved, err := a.sqlite.LastSaved(ctx)
				if err != nil || saved.IsZero() {
					return err
				}
				_, err = fmt.Fprintln(a.out, cli.SubtleStyle.Render("Session saved "+saved.Local().Format(time.RFC1123)))
				return err
			})
		},
	}
}
