package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitval"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage gitval configuration.

Running bare 'gitval config' is the same as 'gitval config show'.
Secrets are masked in the output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
// Secrets are never written; they belong in the environment.
const configTemplate = `# gitval configuration
# See: gitval config show (for effective values and sources)

# State directory for the serve PID and log files (default: ~/.config/gitval)
# state_dir: {{ .StateDir }}

# Port for 'gitval serve'
port: {{ .Port }}

github:
  # Personal access token. Prefer the GITHUB_TOKEN environment variable.
  # token: ""
  # API root for GitHub Enterprise, e.g. https://github.example.com/api/v3/
  base_url: "{{ .GitHubBaseURL }}"
  # Closed pull requests requested per list call
  list_page_size: {{ .ListPageSize }}
  # Merged pull requests analyzed per run
  max_pull_requests: {{ .MaxPullRequests }}
  # Characters of each diff kept after fetching
  diff_max_chars: {{ .DiffMaxChars }}

llm:
  # openai or anthropic
  provider: "{{ .Provider }}"

openai:
  # api_key: ""   (or OPENAI_API_KEY)
  model: "{{ .OpenAIModel }}"
  base_url: "{{ .OpenAIBaseURL }}"
  reasoning_effort: "{{ .ReasoningEffort }}"

anthropic:
  # api_key: ""   (or ANTHROPIC_API_KEY)
  model: "{{ .AnthropicModel }}"
  max_tokens: {{ .AnthropicMaxTokens }}

scoring:
  # Characters of each diff included in the grading prompt
  prompt_diff_chars: {{ .PromptDiffChars }}

demo:
  # Simulated latency of the demo analysis
  delay: "{{ .DemoDelay }}"
`

type configTemplateData struct {
	StateDir           string
	Port               int
	GitHubBaseURL      string
	ListPageSize       int
	MaxPullRequests    int
	DiffMaxChars       int
	Provider           string
	OpenAIModel        string
	OpenAIBaseURL      string
	ReasoningEffort    string
	AnthropicModel     string
	AnthropicMaxTokens int
	PromptDiffChars    int
	DemoDelay          string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:           viper.GetString("state_dir"),
		Port:               viper.GetInt("port"),
		GitHubBaseURL:      viper.GetString("github.base_url"),
		ListPageSize:       viper.GetInt("github.list_page_size"),
		MaxPullRequests:    viper.GetInt("github.max_pull_requests"),
		DiffMaxChars:       viper.GetInt("github.diff_max_chars"),
		Provider:           viper.GetString("llm.provider"),
		OpenAIModel:        viper.GetString("openai.model"),
		OpenAIBaseURL:      viper.GetString("openai.base_url"),
		ReasoningEffort:    viper.GetString("openai.reasoning_effort"),
		AnthropicModel:     viper.GetString("anthropic.model"),
		AnthropicMaxTokens: viper.GetInt("anthropic.max_tokens"),
		PromptDiffChars:    viper.GetInt("scoring.prompt_diff_chars"),
		DemoDelay:          viper.GetString("demo.delay"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes. The first
// env var is the prefixed one; any others are conventional fallbacks.
type configKeyInfo struct {
	Key     string
	EnvVars []string
	Secret  bool
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVars: []string{"GITVAL_STATE_DIR"}},
	{Key: "port", EnvVars: []string{"GITVAL_PORT"}},
	{Key: "github.token", EnvVars: []string{"GITVAL_GITHUB_TOKEN", "GITHUB_TOKEN"}, Secret: true},
	{Key: "github.base_url", EnvVars: []string{"GITVAL_GITHUB_BASE_URL"}},
	{Key: "github.list_page_size", EnvVars: []string{"GITVAL_GITHUB_LIST_PAGE_SIZE"}},
	{Key: "github.max_pull_requests", EnvVars: []string{"GITVAL_GITHUB_MAX_PULL_REQUESTS"}},
	{Key: "github.diff_max_chars", EnvVars: []string{"GITVAL_GITHUB_DIFF_MAX_CHARS"}},
	{Key: "llm.provider", EnvVars: []string{"GITVAL_LLM_PROVIDER"}},
	{Key: "openai.api_key", EnvVars: []string{"GITVAL_OPENAI_API_KEY", "OPENAI_API_KEY"}, Secret: true},
	{Key: "openai.model", EnvVars: []string{"GITVAL_OPENAI_MODEL"}},
	{Key: "openai.base_url", EnvVars: []string{"GITVAL_OPENAI_BASE_URL"}},
	{Key: "openai.reasoning_effort", EnvVars: []string{"GITVAL_OPENAI_REASONING_EFFORT"}},
	{Key: "anthropic.api_key", EnvVars: []string{"GITVAL_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}, Secret: true},
	{Key: "anthropic.model", EnvVars: []string{"GITVAL_ANTHROPIC_MODEL"}},
	{Key: "anthropic.max_tokens", EnvVars: []string{"GITVAL_ANTHROPIC_MAX_TOKENS"}},
	{Key: "scoring.prompt_diff_chars", EnvVars: []string{"GITVAL_SCORING_PROMPT_DIFF_CHARS"}},
	{Key: "demo.delay", EnvVars: []string{"GITVAL_DEMO_DELAY"}},
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(v string) string {
	switch {
	case v == "":
		return "(not set)"
	case len(v) <= 8:
		return "****"
	default:
		return "****" + v[len(v)-4:]
	}
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		var val any = viper.Get(k.Key)
		if k.Secret {
			val = maskSecret(viper.GetString(k.Key))
		}
		source := detectSource(k.Key, k.EnvVars, fileValues)
		fmt.Fprintf(ui.Out, "  %-26s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key string, envVars []string, fileValues map[string]bool) string {
	for _, envVar := range envVars {
		if _, ok := os.LookupEnv(envVar); ok {
			return fmt.Sprintf("(env: %s)", envVar)
		}
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set; set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'gitval config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
