package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/naysayer/internal/llm"
	"github.com/ppiankov/naysayer/internal/logging"
	"github.com/ppiankov/naysayer/internal/model"
)

// Version is the release version printed by the version command
const Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "naysayer",
	Short: "Naysayer - product risk reports from negative reviews",
	Long: `Naysayer reads what unhappy owners say about a product and tells you
what will go wrong before you buy it.

For each product it extracts real defects from negative reviews (filtering
logistics, service and emotional noise), predicts where the product will
conflict with your own usage scenario, digs up recalls, batch defects and
rebrands, and combines everything into a 0-100 risk score.

Without a configured reasoning backend naysayer runs in demo mode on
built-in sample data.`,
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
	Long:  `Display the version number of naysayer.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "naysayer %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.naysayer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.naysayer")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match NAYSAYER_* (llm.provider -> NAYSAYER_LLM_PROVIDER)
	viper.SetEnvPrefix("NAYSAYER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)
	v.SetDefault("llm.no_proxy", d.LLM.NoProxy)

	v.SetDefault("analysis.max_reviews", d.Analysis.MaxReviews)
	v.SetDefault("analysis.review_platform", d.Analysis.ReviewPlatform)
	v.SetDefault("analysis.review_polarity", d.Analysis.ReviewPolarity)
	v.SetDefault("analysis.reviews_dir", d.Analysis.ReviewsDir)
	v.SetDefault("analysis.history_size", d.Analysis.HistorySize)
	v.SetDefault("analysis.data_sources", d.Analysis.DataSources)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("concurrency.requests_per_second", d.Concurrency.RequestsPerSecond)
	v.SetDefault("concurrency.burst", d.Concurrency.Burst)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig builds the effective configuration: defaults, config file,
// NAYSAYER_* env vars, then the provider's conventional API key variables
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(cfg)
	return cfg, nil
}

// applyProviderEnv fills the API key and Ollama URL from the environment
func applyProviderEnv(cfg *model.Config) {
	if cfg.LLM.APIKey == "" {
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			cfg.LLM.APIKey = os.Getenv(env)
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

// newLogger builds the command logger; --verbose forces debug level
func newLogger(cfg *model.Config) (*logrus.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.File, os.Stderr)
}

// setup loads config, applies provider flag overrides and builds the logger
func setup(provider, modelName string) (*model.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	// Credentials from the config file belong to the configured provider only
	if provider != "" && !strings.EqualFold(provider, cfg.LLM.Provider) {
		cfg.LLM.Provider = provider
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
		applyProviderEnv(cfg)
	}
	if modelName != "" {
		cfg.LLM.Model = modelName
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, nil
}
