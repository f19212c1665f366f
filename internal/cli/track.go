package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/oracle"
	"github.com/mkarpov/tipstream/internal/pipeline"
)

var (
	trackLimit   int
	trackTimeout time.Duration
	trackWorkers int
	trackJSON    bool
)

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track <influencer-id>",
	Short: "Fetch and analyze new posts for one influencer",
	Long: `Track fetches the influencer's latest posts, normalizes and merges them,
skips everything already in the analysis ledger, and stages a pending
review for each asset the oracle extracts.

Example:
  tipstream track 7b0a9d6e-...
  tipstream track 7b0a9d6e-... --limit 50 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

// trackAllCmd represents the track-all command
var trackAllCmd = &cobra.Command{
	Use:   "track-all",
	Short: "Track every registered influencer",
	Long: `Track-all runs the tracking pipeline for every influencer in the
registry. One influencer failing does not stop the others.

Example:
  tipstream track-all
  tipstream track-all --workers 4 --limit 50`,
	Args: cobra.NoArgs,
	RunE: runTrackAll,
}

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(trackAllCmd)

	for _, cmd := range []*cobra.Command{trackCmd, trackAllCmd} {
		cmd.Flags().IntVar(&trackLimit, "limit", pipeline.DefaultFetchLimit, "max posts to fetch per influencer")
		cmd.Flags().DurationVar(&trackTimeout, "timeout", 10*time.Minute, "overall run timeout")
		cmd.Flags().BoolVar(&trackJSON, "json", false, "print results as JSON")
	}
	trackAllCmd.Flags().IntVar(&trackWorkers, "workers", 1, "influencers tracked concurrently")
}

func newTracker(cfg *model.Config) (*pipeline.Tracker, error) {
	log := newLogger(cfg)

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	orc, err := oracle.NewClient(cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}

	return pipeline.NewTracker(st, orc, cfg, log), nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tracker, err := newTracker(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	result, err := tracker.TrackOne(ctx, args[0], trackLimit)
	if err != nil {
		return fmt.Errorf("track failed: %w", err)
	}

	return printTrackResults([]model.TrackResult{*result})
}

func runTrackAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tracker, err := newTracker(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	results, err := tracker.TrackAll(ctx, trackLimit, trackWorkers)
	if err != nil {
		return fmt.Errorf("track-all failed: %w", err)
	}

	return printTrackResults(results)
}

func printTrackResults(results []model.TrackResult) error {
	if trackJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Printf("%s (%s)\n", r.InfluencerID, r.Platform)
		fmt.Printf("  scraped:    %d\n", r.PostsScraped)
		fmt.Printf("  analyzed:   %d\n", r.PostsAnalyzed)
		fmt.Printf("  duplicates: %d\n", r.PostsSkippedDuplicate)
		fmt.Printf("  irrelevant: %d\n", r.PostsSkippedIrrelevant)
		fmt.Printf("  signals:    %d\n", r.RecommendationsFound)
		for _, id := range r.PendingReviewIDs {
			fmt.Printf("  review:     %s\n", id)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(os.Stderr, "  error: %s\n", e)
		}
	}
	return nil
}
