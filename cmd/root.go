package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/gitval/internal/demo"
	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/llm"
	"github.com/joescharf/gitval/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "gitval",
	Short: "Grade developers by the pull requests they merged",
	Long: `gitval fetches the most recently merged pull requests of a GitHub
repository, asks a language model to grade each author's diffs, and ranks
the team by Impact GPA, archetype and strategic impact.

Start with 'gitval demo' to see a sample report without any credentials.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		if ui != nil {
			ui.Error("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without calling any API")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/gitval/config.yaml)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GITVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	setDefaults(filepath.Join(home, ".config", "gitval"))
	bindEnvFallbacks()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("port", 8080)

	viper.SetDefault("github.token", "")
	viper.SetDefault("github.base_url", "")
	viper.SetDefault("github.list_page_size", git.DefaultListPageSize)
	viper.SetDefault("github.max_pull_requests", git.DefaultMaxPullRequests)
	viper.SetDefault("github.diff_max_chars", git.DefaultDiffMaxChars)

	viper.SetDefault("llm.provider", llm.ProviderOpenAI)
	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.model", llm.DefaultOpenAIModel)
	viper.SetDefault("openai.base_url", llm.DefaultOpenAIBaseURL)
	viper.SetDefault("openai.reasoning_effort", "low")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", llm.DefaultAnthropicModel)
	viper.SetDefault("anthropic.max_tokens", llm.DefaultAnthropicMaxTokens)

	viper.SetDefault("scoring.prompt_diff_chars", llm.DefaultPromptDiffChars)
	viper.SetDefault("demo.delay", demo.DefaultDelay.String())
}

// bindEnvFallbacks lets the conventional unprefixed variables supply secrets.
func bindEnvFallbacks() {
	for _, k := range configKeys {
		if len(k.EnvVars) > 1 {
			_ = viper.BindEnv(append([]string{k.Key}, k.EnvVars...)...)
		}
	}
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// demoDelay parses demo.delay, falling back to the default on bad input.
func demoDelay() time.Duration {
	d, err := time.ParseDuration(viper.GetString("demo.delay"))
	if err != nil {
		slog.Warn("invalid demo.delay, using default", "value", viper.GetString("demo.delay"), "error", err)
		return demo.DefaultDelay
	}
	return d
}
