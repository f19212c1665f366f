package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	infName     string
	infPlatform string
	infURL      string
)

// influencersCmd groups registry management subcommands
var influencersCmd = &cobra.Command{
	Use:   "influencers",
	Short: "Manage the tracked-influencer registry",
}

var influencersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an influencer",
	Long: `Add registers an author to track.

Example:
  tipstream influencers add --name "Some Trader" --platform substack --url https://sometrader.substack.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if infName == "" || infPlatform == "" || infURL == "" {
			return fmt.Errorf("--name, --platform and --url are all required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cfg))
		if err != nil {
			return err
		}

		id, err := st.CreateInfluencer(infName, infPlatform, infURL)
		if err != nil {
			return fmt.Errorf("add influencer: %w", err)
		}

		fmt.Printf("✓ Registered %s (%s): %s\n", infName, infPlatform, id)
		return nil
	},
}

var influencersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered influencers",
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

		influencers, err := st.ListInfluencers()
		if err != nil {
			return fmt.Errorf("list influencers: %w", err)
		}
		if len(influencers) == 0 {
			fmt.Println("No influencers registered.")
			return nil
		}

		for _, inf := range influencers {
			fmt.Printf("%s  %-20s %-10s %s\n", inf.ID, inf.Name, inf.Platform, inf.URL)
		}
		return nil
	},
}

var influencersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an influencer from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg, newLogger(cfg))
		if err != nil {
			return err
		}

		if err := st.DeleteInfluencer(args[0]); err != nil {
			return fmt.Errorf("remove influencer: %w", err)
		}
		fmt.Printf("✓ Removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(influencersCmd)
	influencersCmd.AddCommand(influencersAddCmd)
	influencersCmd.AddCommand(influencersListCmd)
	influencersCmd.AddCommand(influencersRemoveCmd)

	influencersAddCmd.Flags().StringVar(&infName, "name", "", "display name")
	influencersAddCmd.Flags().StringVar(&infPlatform, "platform", "substack", "platform (substack)")
	influencersAddCmd.Flags().StringVar(&infURL, "url", "", "profile or publication URL")
}
