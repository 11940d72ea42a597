package main

import (
	"context"

	"github.com/Veraticus/spend/internal/cli"
	"github.com/Veraticus/spend/internal/model"
	"github.com/spf13/cobra"
)

func defaultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Manage payer and payee defaults",
		Long: `Show and edit the payer (payed-from) and payee (payed-to) labels offered
when recording a payment. The first entry of each list is the prefill.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				defaults, err := a.client.Defaults(ctx)
				if err != nil {
					return err
				}
				return cli.PrintDefaults(a.out, *defaults)
			})
		},
	}

	cmd.AddCommand(defaultKindCmd("payed-to", "Payed to", model.DefaultPayedTo))
	cmd.AddCommand(defaultKindCmd("payed-from", "Payed from", model.DefaultPayedFrom))

	return cmd
}

func defaultKindCmd(use, title string, kind model.DefaultKind) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		return withUser(cmd, func(ctx context.Context, a *app) error {
			values, err := a.client.DefaultsOf(ctx, kind)
			if err != nil {
				return err
			}
			return cli.PrintList(a.out, title, values, "No defaults yet")
		})
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: "Manage " + title + " defaults",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + title + " defaults",
		Args:  cobra.NoArgs,
		RunE:  list,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <value>",
		Short: "Add a " + title + " default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				values, err := a.client.AddDefault(ctx, kind, args[0])
				if err != nil {
					return err
				}
				if err := a.success("Added %q", args[0]); err != nil {
					return err
				}
				return cli.PrintList(a.out, title, values, "No defaults yet")
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <value>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a " + title + " default",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				values, err := a.client.DeleteDefault(ctx, kind, args[0])
				if err != nil {
					return err
				}
				if err := a.success("Removed %q", args[0]); err != nil {
					return err
				}
				return cli.PrintList(a.out, title, values, "No defaults yet")
			})
		},
	})

	return cmd
}
