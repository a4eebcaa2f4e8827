package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/dto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(expireCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(accountCmd)

	sweepCmd.Flags().Bool("all", false, "Repeat batches until nothing is left to expire")
	expireCmd.Flags().String("admin", "", "Admin user ID recorded as the expirer")
	grantCmd.Flags().String("admin", "", "Admin user ID recorded on the ledger entry")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the engine tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Migrate(database.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire penalties whose end time has passed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		total := 0
		for {
			n, err := eng.sweeper.SweepNow(cmd.Context())
			total += n
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			if !all || n < eng.cfg.PenaltySweepBatch {
				break
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d penalties\n", total)
		return nil
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire PENALTY_ID",
	Short: "Lift a penalty before its end time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		penaltyID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid penalty id %q", args[0])
		}
		adminID, err := adminFlag(cmd)
		if err != nil {
			return err
		}
		if _, err := eng.penalties.Expire(cmd.Context(), penaltyID, adminID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "penalty %s expired\n", penaltyID)
		return nil
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant USER_ID POINTS REASON",
	Short: "Credit points to a user outside the daily cap",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		points, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid points %q", args[1])
		}
		adminID, err := adminFlag(cmd)
		if err != nil {
			return err
		}
		entry, err := eng.reputation.AdminGrant(cmd.Context(), adminID, userID, points, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "granted %d points, balance %d\n", entry.Points, entry.BalanceAfter)
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account USER_ID",
	Short: "Print a user's reputation account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		account, err := eng.reputation.GetAccount(cmd.Context(), userID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewAccountResponse(account, eng.reputation.EarnedToday(account)))
	},
}

// adminFlag reads --admin, defaulting to the nil UUID for operator actions.
func adminFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("admin")
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid admin id %q", raw)
	}
	return id, nil
}
