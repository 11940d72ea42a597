package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/spend/internal/cli"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the generated spending summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUser(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.client.Summary(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, cli.RenderBox("Spending summary", strings.TrimSpace(summary.Response)))
				return err
			})
		},
	}
}
