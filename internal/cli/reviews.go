package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarpov/tipstream/internal/market"
	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/review"
)

var (
	reviewStatus     string
	reviewInfluencer string

	overrideSymbol    string
	overrideSignal    string
	overrideTimeframe string
	overrideEntry     float64
	overrideTarget    float64
	overrideStop      float64
	overrideNote      string

	autoThreshold float64
)

// reviewsCmd groups the pending-review subcommands
var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Inspect and resolve pending signal reviews",
	Long: `Reviews manages the staged signals produced by tracking. Approving a
review creates an active recommendation, backfilling its entry price from
market data when possible. Rejecting keeps the record; deleting removes
it entirely.`,
}

func newReviewService() (*review.Service, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	provider := market.NewCachedProvider(
		market.NewYahooProvider(cfg.Market.Timeout, cfg.Source.UserAgent),
		cfg.Market.QuoteTTL, cfg.Market.HistoricalTTL)

	return review.NewService(st, provider, log), cfg, nil
}

var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reviews, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cfg))
		if err != nil {
			return err
		}

		reviews, err := st.ListReviews(reviewInfluencer, model.ReviewStatus(reviewStatus))
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		if len(reviews) == 0 {
			fmt.Println("No reviews found.")
			return nil
		}

		for _, r := range reviews {
			fmt.Printf("%s  %-8s %-6s %-5s conf=%.2f  %s\n",
				r.ID, r.Status, r.SuggestedSymbol, r.SuggestedSignal,
				r.Confidence, r.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var reviewsApproveCmd = &cobra.Command{
	Use:   "approve <review-id>",
	Short: "Approve a pending review into an active recommendation",
	Long: `Approve turns a pending review into an active recommendation. Explicit
flags override the oracle's suggestions; everything else falls back to
the suggestion, then to BUY / MID.

Example:
  tipstream reviews approve 41bd60c2-...
  tipstream reviews approve 41bd60c2-... --signal SELL --timeframe SHORT --entry 187.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newReviewService()
		if err != nil {
			return err
		}

		ov := review.Overrides{
			Symbol:    overrideSymbol,
			Signal:    model.Signal(overrideSignal),
			Timeframe: model.Timeframe(overrideTimeframe),
			Note:      overrideNote,
		}
		if cmd.Flags().Changed("entry") {
			ov.EntryPrice = &overrideEntry
		}
		if cmd.Flags().Changed("target") {
			ov.TargetPrice = &overrideTarget
		}
		if cmd.Flags().Changed("stop") {
			ov.StopLoss = &overrideStop
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		recID, err := svc.Approve(ctx, args[0], ov)
		if err != nil {
			return fmt.Errorf("approve: %w", err)
		}

		fmt.Printf("✓ Approved %s -> recommendation %s\n", args[0], recID)
		return nil
	},
}

var reviewsRejectCmd = &cobra.Command{
	Use:   "reject <review-id>",
	Short: "Reject a pending review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newReviewService()
		if err != nil {
			return err
		}
		if err := svc.Reject(args[0]); err != nil {
			return fmt.Errorf("reject: %w", err)
		}
		fmt.Printf("✓ Rejected %s\n", args[0])
		return nil
	},
}

var reviewsDeleteCmd = &cobra.Command{
	Use:   "delete <review-id>",
	Short: "Delete a review regardless of status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newReviewService()
		if err != nil {
			return err
		}
		if err := svc.Delete(args[0]); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Printf("✓ Deleted %s\n", args[0])
		return nil
	},
}

var reviewsApproveAllCmd = &cobra.Command{
	Use:   "approve-all",
	Short: "Approve every pending review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newReviewService()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := svc.ApproveAll(ctx)
		if err != nil {
			return fmt.Errorf("approve-all: %w", err)
		}
		printBatchResult(result)
		return nil
	},
}

var reviewsAutoApproveCmd = &cobra.Command{
	Use:   "auto-approve",
	Short: "Approve pending reviews at or above a confidence threshold",
	Long: `Auto-approve walks pending reviews oldest-first and approves those whose
oracle confidence meets the threshold. Lower-confidence reviews stay
pending for manual resolution.

Example:
  tipstream reviews auto-approve --threshold 0.8`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := newReviewService()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := svc.AutoApprove(ctx, autoThreshold)
		if err != nil {
			return fmt.Errorf("auto-approve: %w", err)
		}
		printBatchResult(result)
		return nil
	},
}

func printBatchResult(result model.BatchApproveResult) {
	fmt.Printf("✓ Approved: %d\n", result.ApprovedCount)
	fmt.Printf("  Still pending: %d\n", result.RemainingPending)
	for symbol, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "  warning (%s): %s\n", symbol, warning)
	}
}

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsApproveCmd)
	reviewsCmd.AddCommand(reviewsRejectCmd)
	reviewsCmd.AddCommand(reviewsDeleteCmd)
	reviewsCmd.AddCommand(reviewsApproveAllCmd)
	reviewsCmd.AddCommand(reviewsAutoApproveCmd)

	reviewsListCmd.Flags().StringVar(&reviewStatus, "status", "", "filter by status (PENDING, APPROVED, REJECTED)")
	reviewsListCmd.Flags().StringVar(&reviewInfluencer, "influencer", "", "filter by influencer id")

	reviewsApproveCmd.Flags().StringVar(&overrideSymbol, "symbol", "", "override the suggested symbol")
	reviewsApproveCmd.Flags().StringVar(&overrideSignal, "signal", "", "override the signal (BUY, SELL, HEDGE, WATCH, CLOSED)")
	reviewsApproveCmd.Flags().StringVar(&overrideTimeframe, "timeframe", "", "override the timeframe (SHORT, MID, LONG)")
	reviewsApproveCmd.Flags().Float64Var(&overrideEntry, "entry", 0, "explicit entry price (skips backfill)")
	reviewsApproveCmd.Flags().Float64Var(&overrideTarget, "target", 0, "target price")
	reviewsApproveCmd.Flags().Float64Var(&overrideStop, "stop", 0, "stop loss")
	reviewsApproveCmd.Flags().StringVar(&overrideNote, "note", "", "note stored with the recommendation")

	reviewsAutoApproveCmd.Flags().Float64Var(&autoThreshold, "threshold", 0.8, "minimum confidence to auto-approve")
}
