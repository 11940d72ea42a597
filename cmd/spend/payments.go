package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spend/internal/cli"
	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"ls"},
		Short:   "List payments grouped by day",
		Long: `List payments grouped by day, newest first.

Filters apply to the pages loaded: --month and --currency narrow what is
shown, --pages controls how many pages are fetched and --all fetches until
the history is exhausted.`,
		Example: `  spend payments
  spend payments --month 2024-03 --currency USD
  spend payments --from alice@example.com --all`,
		Args: cobra.NoArgs,
		RunE: runPayments,
	}

	addViewFlags(cmd.Flags())
	cmd.Flags().Int("pages", 1, "number of pages to fetch")
	cmd.Flags().Bool("all", false, "fetch every page")

	cmd.AddCommand(paymentsDeleteCmd())

	return cmd
}

// addViewFlags registers the flags that make up a view context.
func addViewFlags(flags *pflag.FlagSet) {
	flags.String("month", "", "only show this month (YYYY-MM)")
	flags.String("currency", "", "only show this currency (e.g. INR, USD)")
	flags.String("sort", "desc", "day order (asc, desc)")
	flags.String("from", "", "show payments shared with you by this email")
}

// viewContextFromFlags builds the view context selected on the command line.
func viewContextFromFlags(flags *pflag.FlagSet) (model.ViewContext, error) {
	vc := model.DefaultViewContext()

	if month, _ := flags.GetString("month"); month != "" {
		m, err := model.ParseMonth(month)
		if err != nil {
			return vc, err
		}
		vc.Month = &m
	}

	if currency, _ := flags.GetString("currency"); currency != "" {
		c, err := model.ParseCurrency(currency)
		if err != nil {
			return vc, err
		}
		vc.Currency = c
	}

	sortFlag, _ := flags.GetString("sort")
	order, err := model.ParseSortOrder(sortFlag)
	if err != nil {
		return vc, err
	}
	vc.Sort = order

	if from, _ := flags.GetString("from"); from != "" {
		vc.Scope = model.DelegateScope(from)
	}

	return vc, nil
}

func runPayments(cmd *cobra.Command, _ []string) error {
	vc, err := viewContextFromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetInt("pages")
	all, _ := cmd.Flags().GetBool("all")
	if pages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	return withUser(cmd, func(ctx context.Context, a *app) error {
		var interrupts *cli.InterruptHandler
		if all {
			interrupts = cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx = interrupts.HandleInterrupts(ctx, "Showing the payments loaded so far")
			defer interrupts.Stop()
		}

		engine := a.newEngine()
		bar := cli.NewLoadProgress(cmd.ErrOrStderr(), "Loading payments")

		result, err := engine.LoadFirstPage(ctx, vc)
		if err != nil {
			return err
		}
		_ = bar.Add(len(result.Records))

		for loaded := 1; !result.Exhausted && (all || loaded < pages); loaded++ {
			result, err = engine.LoadNextPage(ctx)
			if err != nil {
				if interrupts != nil && interrupts.WasInterrupted() {
					break
				}
				return err
			}
			_ = bar.Add(len(result.Records))
		}
		_ = bar.Finish()

		if err := cli.PrintBuckets(a.out, vc.Scope.String(), engine.View(a.cfg.HideEmptyDays)); err != nil {
			return err
		}
		if !engine.Cursor().Exhausted {
			_, err = fmt.Fprintln(a.out, cli.FormatInfo("More payments available: use --pages or --all"))
		}
		return err
	})
}

func paymentsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			id := args[0]

			return withUser(cmd, func(ctx context.Context, a *app) error {
				if !yes {
					ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("Delete payment %s?", id))
					if err != nil {
						return err
					}
					if !ok {
						_, err := fmt.Fprintln(a.out, cli.FormatInfo("Nothing deleted"))
						return err
					}
				}

				if err := a.client.DeletePayment(ctx, id); err != nil {
					return err
				}
				return a.success("Deleted payment %s", id)
			})
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record a payment",
		Long: `Record a payment. Values not given as flags are prompted for; payer and
payee default to the first entry of your configured defaults.`,
		Example: `  spend pay --amount 250 --currency INR --from Wallet --to Grocer`,
		Args:    cobra.NoArgs,
		RunE:    runPay,
	}

	cmd.Flags().String("amount", "", "amount, e.g. 12.50")
	cmd.Flags().String("currency", string(model.CurrencyINR), "currency code")
	cmd.Flags().String("from", "", "who paid (payed from)")
	cmd.Flags().String("to", "", "who was paid (payed to)")

	return cmd
}

func runPay(cmd *cobra.Command, _ []string) error {
	amountFlag, _ := cmd.Flags().GetString("amount")
	currencyFlag, _ := cmd.Flags().GetString("currency")
	payedFrom, _ := cmd.Flags().GetString("from")
	payedTo, _ := cmd.Flags().GetString("to")

	currency, err := model.ParseCurrency(currencyFlag)
	if err != nil {
		return err
	}

	return withUser(cmd, func(ctx context.Context, a *app) error {
		if amountFlag == "" {
			if amountFlag, err = a.prompter.AskRequired(ctx, "Amount"); err != nil {
				return err
			}
		}
		amount, err := model.ParseAmount(amountFlag)
		if err != nil {
			return err
		}

		if payedFrom == "" || payedTo == "" {
			defaultTo, defaultFrom, err := firstDefaults(ctx, a)
			if err != nil {
				return err
			}
			if payedTo == "" {
				if payedTo, err = a.prompter.Ask(ctx, "Payed to", defaultTo); err != nil {
					return err
				}
			}
			if payedFrom == "" {
				if payedFrom, err = a.prompter.Ask(ctx, "Payed from", defaultFrom); err != nil {
					return err
				}
			}
		}

		payment := model.CreatePayment{
			Amount:    amount,
			Currency:  currency,
			PayedFrom: payedFrom,
			PayedTo:   payedTo,
		}
		if err := payment.Validate(); err != nil {
			return err
		}

		created, err := a.client.CreatePayment(ctx, payment)
		if err != nil {
			return err
		}
		return a.success("Recorded %s %s → %s (%s)",
			created.FormatAmount(), created.PayedFrom, created.PayedTo, created.ID)
	})
}

// firstDefaults loads both default lists in parallel and returns the first
// entry of each. Failing to load them only loses the prefill, unless the
// session itself is rejected.
func firstDefaults(ctx context.Context, a *app) (string, string, error) {
	var payedTo, payedFrom []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payedTo, err = a.client.PayedToDefaults(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		payedFrom, err = a.client.PayedFromDefaults(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return "", "", err
		}
		slog.Warn("Could not load defaults", "error", err)
		return "", "", nil
	}

	first := func(values []string) string {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	return first(payedTo), first(payedFrom), nil
}
