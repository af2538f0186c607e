package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var suppressionCmd = &cobra.Command{
	Use:   "suppression",
	Short: "Inspect or edit the suppression ledger",
}

var suppressionCheckCmd = &cobra.Command{
	Use:   "check <address>",
	Short: "Show the suppression record for an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuppressionCheck,
}

var suppressionPutCmd = &cobra.Command{
	Use:   "put <address>",
	Short: "Suppress replies to an address",
	Long:  "Write a suppression record, replacing any existing one. Use --until 1970-01-01T00:00:00Z to lift a suppression.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuppressionPut,
}

var (
	suppressUntil string
	suppressFor   time.Duration
)

func init() {
	suppressionPutCmd.Flags().StringVar(&suppressUntil, "until", "", "RFC 3339 time the suppression ends")
	suppressionPutCmd.Flags().DurationVar(&suppressFor, "for", 0, "Suppress for this long from now (e.g. 720h)")
	suppressionPutCmd.MarkFlagsMutuallyExclusive("until", "for")
	suppressionPutCmd.MarkFlagsOneRequired("until", "for")

	suppressionCmd.AddCommand(suppressionCheckCmd, suppressionPutCmd)
	rootCmd.AddCommand(suppressionCmd)
}

func runSuppressionCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	address := args[0]
	rec, found, err := env.ledger.Lookup(ctx, address)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", address, err)
	}

	out := cmd.OutOrStdout()
	if !found {
		fmt.Fprintf(out, "%s: no record\n", address)
		return nil
	}
	state := "expired"
	if env.ledger.IsSuppressed(ctx, address) {
		state = "suppressed"
	}
	fmt.Fprintf(out, "%s: %s until %s\n", address, state, rec.Until.UTC().Format(time.RFC3339))
	return nil
}

func runSuppressionPut(cmd *cobra.Command, args []string) error {
	until := time.Now().Add(suppressFor)
	if suppressUntil != "" {
		t, err := time.Parse(time.RFC3339, suppressUntil)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		until = t
	}

	ctx := cmd.Context()
	env, err := loadRuntime(ctx)
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.ledger.Put(ctx, args[0], until); err != nil {
		return fmt.Errorf("put %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: suppressed until %s\n", args[0], until.UTC().Format(time.RFC3339))
	return nil
}
