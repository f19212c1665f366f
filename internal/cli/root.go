// Package cli wires the tipstream command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkarpov/tipstream/internal/model"
	"github.com/mkarpov/tipstream/internal/store"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tipstream",
	Short: "Tipstream - influencer investment-signal tracking",
	Long: `Tipstream follows financial influencers, pulls their new posts, and turns
asset mentions into reviewable investment signals.

Posts are fetched, normalized, and deduplicated against a persistent
ledger, so each post is analyzed exactly once. Relevant posts go through
a two-phase classification, and every extracted asset becomes a pending
review. Nothing is tracked until a human (or an explicit confidence
threshold) approves it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tipstream v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tipstream/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.tipstream")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TIPSTREAM_*
	viper.SetEnvPrefix("TIPSTREAM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
	if baseURL := os.Getenv("TIPSTREAM_ORACLE_BASE_URL"); baseURL != "" {
		cfg.Oracle.BaseURL = baseURL
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	return cfg, nil
}

// newLogger builds the CLI logger. Warnings and errors always show; verbose
// raises the level to debug.
func newLogger(cfg *model.Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg.Output.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// openStore opens the configured database.
func openStore(cfg *model.Config, log zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}
