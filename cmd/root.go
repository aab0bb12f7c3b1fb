package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobsniper"
)

type Config struct {
	Resume *ResumeConfig `mapstructure:"resume"`
	Search *SearchConfig `mapstructure:"search"`
	Match  *MatchConfig  `mapstructure:"match"`
	AI     *AIConfig     `mapstructure:"ai"`
}

type ResumeConfig struct {
	File string `mapstructure:"file"`
	// Years is the candidate's declared experience. 0 disables the
	// candidate side of the guardrail.
	Years int `mapstructure:"years"`
}

type SearchConfig struct {
	Roles    []string `mapstructure:"roles"`
	Location string   `mapstructure:"location"`
	// Input is a JSON file of postings produced by external collectors.
	Input string `mapstructure:"input"`
}

type MatchConfig struct {
	Dedup        bool `mapstructure:"dedup"`
	Guardrail    bool `mapstructure:"guardrail"`
	TopK         int  `mapstructure:"top-k"`
	ScoreWorkers int  `mapstructure:"score-workers"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	// RateIntervalSeconds is the minimum spacing between analysis
	// calls. Zero selects the built-in default.
	RateIntervalSeconds int `mapstructure:"rate-interval"`
	MaxLogLength        int `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsniper ranks collected job postings against a resume to surface high-fit opportunities",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini-api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsniper.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A .env file may carry the Gemini credential; missing files are fine.
	_ = godotenv.Load()

	viper.SetDefault("match.dedup", true)
	viper.SetDefault("match.guardrail", true)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
