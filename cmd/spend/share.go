package main

import (
	"context"

	"github.com/Veraticus/spend/internal/cli"
	"github.com/spf13/cobra"
)

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share your payment history",
		Long: `Manage who can browse your payments. People you share with can list your
history with "spend payments --from <your email>".`,
	}

	listShared := func(cmd *cobra.Command, _ []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			emails, err := a.client.SharedWith(ctx)
			if err != nil {
				return err
			}
			return cli.PrintList(a.out, "Shared with", emails, "You are not sharing your payments")
		})
	}
	cmd.RunE = listShared

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List who can see your payments",
		Args:  cobra.NoArgs,
		RunE:  listShared,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to-me",
		Short: "List who shares their payments with you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				emails, err := a.client.SharedToMe(ctx)
				if err != nil {
					return err
				}
				return cli.PrintList(a.out, "Shared with you", emails, "Nobody is sharing payments with you")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <email>",
		Short: "Share your payments with someone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.client.AddShare(ctx, args[0]); err != nil {
					return err
				}
				return a.success("Shared your payments with %s", args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <email>",
		Aliases: []string{"remove"},
		Short:   "Stop sharing your payments with someone",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.client.RemoveShare(ctx, args[0]); err != nil {
					return err
				}
				return a.success("Stopped sharing with %s", args[0])
			})
		},
	})

	return cmd
}
