package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"microlend/internal/adapter/middleware"
	"microlend/internal/app"
	"microlend/internal/config"
	"microlend/internal/infrastructure/db"
	"microlend/pkg/money"
)

func init() {
	rootCmd.AddCommand(migrateCmd, jobsCmd, loansCmd, tokenCmd)

	jobsCmd.AddCommand(jobsListCmd, jobsRunCmd)
	loansCmd.AddCommand(loansStatusCmd)

	tokenCmd.Flags().String("role", middleware.RoleUser, "role claim: user or admin")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		if err := db.Migrate(a.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		printf(cmd.OutOrStdout(), "schema up to date\n")
		return nil
	}),
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and trigger scheduled jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app.App, _ []string) error {
		for _, name := range a.Scheduler.Names() {
			printf(cmd.OutOrStdout(), "%s\n", name)
		}
		return nil
	}),
}

var jobsRunCmd = &cobra.Command{
	Use:   "run JOB",
	Short: "Run a job now, under the same lock as the timer",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		res, err := a.Scheduler.RunNow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if res.Skipped {
			printf(cmd.OutOrStdout(), "%s: skipped, another run holds the lock\n", args[0])
			return nil
		}
		printf(cmd.OutOrStdout(), "%s: processed=%d failed=%d\n", args[0], res.Processed, res.Failed)
		return nil
	}),
}

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Administrative loan operations",
}

var loansStatusCmd = &cobra.Command{
	Use:   "status LOAN_ID STATUS",
	Short: "Move a loan to DEFAULTED, CANCELLED or OVERDUE",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app.App, args []string) error {
		l, err := a.Loans.UpdateStatus(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s %s due=%.2f\n", l.LoanNumber, l.Status, money.ToNumber(l.AmountDue))
		return nil
	}),
}

// tokenCmd only needs the JWT settings, not storage.
var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Mint an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
		role, _ := cmd.Flags().GetString("role")
		if role != middleware.RoleUser && role != middleware.RoleAdmin {
			return fmt.Errorf("unknown role %q", role)
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		tok, err := middleware.NewTokens(cfg.JWTIssuer, cfg.JWTSecret).Mint(args[0], role, ttl)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "%s\n", tok)
		return nil
	},
}
