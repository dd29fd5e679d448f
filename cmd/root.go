package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-bot/internal/ai/gemini"
	"github.com/spigell/job-bot/internal/bot"
	"github.com/spigell/job-bot/internal/candidate"
	"github.com/spigell/job-bot/internal/scoring"
	"github.com/spigell/job-bot/internal/tracking"
)

const (
	app = "job-bot"

	agentBrowser = "browser"
	agentGemini  = "gemini"
)

type Config struct {
	DataDir    string             `mapstructure:"data-dir"`
	Storage    string             `mapstructure:"storage"`
	SessionDir string             `mapstructure:"session-dir"`
	Resume     string             `mapstructure:"resume"`
	Schedule   string             `mapstructure:"schedule"`
	Candidate  *candidate.Profile `mapstructure:"candidate"`
	Scoring    *ScoringConfig     `mapstructure:"scoring"`
	Allocation []bot.Allocation   `mapstructure:"allocation"`
	Limits     tracking.Limits    `mapstructure:"limits"`
	Portals    *PortalsConfig     `mapstructure:"portals"`
	Agent      *AgentConfig       `mapstructure:"agent"`
	AI         *AIConfig          `mapstructure:"ai"`
}

// ScoringConfig overrides parts of scoring.DefaultConfig. Non-empty lists
// replace the defaults entirely. A set MinScore wins, zero included.
type ScoringConfig struct {
	Blacklist []string `mapstructure:"blacklist"`
	Required  []string `mapstructure:"required"`
	Bonus     []string `mapstructure:"bonus"`
	Negative  []string `mapstructure:"negative"`
	MinScore  *int     `mapstructure:"min-score"`
}

type PortalsConfig struct {
	LinkedIn       *PortalConfig `mapstructure:"linkedin"`
	WorkAtAStartup *PortalConfig `mapstructure:"workatastartup"`
}

type PortalConfig struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	Keywords     string `mapstructure:"keywords"`
}

type AgentConfig struct {
	Provider string        `mapstructure:"provider"`
	Command  []string      `mapstructure:"command"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxSteps int           `mapstructure:"max-steps"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-bot searches job portals and applies to matching jobs through an AI agent",
	}

	envBindings = map[string]string{
		"portals.linkedin.username":       "LINKEDIN_USER",
		"portals.linkedin.password":       "LINKEDIN_PASS",
		"portals.workatastartup.username": "WORKATASTARTUP_USER",
		"portals.workatastartup.password": "WORKATASTARTUP_PASS",
		"ai.gemini.api-key":               "GOOGLE_API_KEY",
		"data-dir":                        "JOB_BOT_DATA_DIR",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-bot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("storage", "", "tracking storage backend: json or sqlite")
	rootCmd.PersistentFlags().String("agent", "", "agent provider: browser or gemini")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	viper.BindPFlag("agent.provider", rootCmd.PersistentFlags().Lookup("agent"))
}

func setDefaults() {
	viper.SetDefault("data-dir", "data")
	viper.SetDefault("storage", tracking.BackendFile)
	viper.SetDefault("session-dir", "browser_sessions")
	viper.SetDefault("resume", "resume.pdf")
	viper.SetDefault("schedule", "0 9 * * 1-5")
	viper.SetDefault("scoring.min-score", scoring.DefaultMinScore)
	viper.SetDefault("agent.provider", agentBrowser)
	viper.SetDefault("agent.model", gemini.DefaultModel)
	viper.SetDefault("agent.max-steps", bot.DefaultMaxSteps)
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.max-retries", gemini.DefaultMaxRetries)
}

func initConfig() {
	// .env only supplies credentials, so it is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults are enough unless the user pointed at a file explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Candidate == nil {
		profile := candidate.Default()
		config.Candidate = &profile
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Portals == nil {
		config.Portals = &PortalsConfig{}
	}
	if config.Portals.LinkedIn == nil {
		config.Portals.LinkedIn = &PortalConfig{}
	}
	if config.Portals.WorkAtAStartup == nil {
		config.Portals.WorkAtAStartup = &PortalConfig{}
	}
	if config.Agent == nil {
		config.Agent = &AgentConfig{Provider: agentBrowser}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}

// build returns the scoring profile with configured overrides applied.
func (c *ScoringConfig) build() scoring.Config {
	cfg := scoring.DefaultConfig()

	cfg.Blacklist = override(cfg.Blacklist, c.Blacklist)
	cfg.Required = override(cfg.Required, c.Required)
	cfg.Bonus = override(cfg.Bonus, c.Bonus)
	cfg.Negative = override(cfg.Negative, c.Negative)
	if c.MinScore != nil {
		cfg.MinScore = *c.MinScore
	}

	return cfg
}

func override(defaults, configured []string) []string {
	if len(configured) == 0 {
		return defaults
	}
	return configured
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
