package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/interview-prep/internal/health"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interview-prep"
)

type Config struct {
	API          *APIConfig    `mapstructure:"api"`
	Health       health.Config `mapstructure:"health"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Output       string        `mapstructure:"output"`
}

type APIConfig struct {
	URL       string `mapstructure:"url"`
	Key       string `mapstructure:"key"`
	KeyFile   string `mapstructure:"key-file"`
	KeyHeader string `mapstructure:"key-header"`
	Keyring   bool   `mapstructure:"keyring"`
	UserAgent string `mapstructure:"user-agent"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-prep is a cli for practicing interview answers against your resume",
	}
)

// Execute executes the root command. Interrupting cancels in-flight requests.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	if err := viper.BindEnv("api.url", "INTERVIEW_API_URL"); err != nil {
		log.Fatalf("binding INTERVIEW_API_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("api.key-file", "INTERVIEW_API_KEY_FILE"); err != nil {
		log.Fatalf("binding INTERVIEW_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("api.url", "http://localhost:8000")
	viper.SetDefault("api.key-header", "X-API-Key")
	viper.SetDefault("api.keyring", true)
	viper.SetDefault("health.interval", health.DefaultInterval)
	viper.SetDefault("health.attempt-timeout", health.DefaultAttemptTimeout)
	viper.SetDefault("health.budget", health.DefaultBudget)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-prep.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "result format: text or json")
	rootCmd.PersistentFlags().String("api-url", "", "backend base url")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file is optional. An explicit one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
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

	if config == nil {
		config = &Config{}
	}
	if config.API == nil {
		config.API = &APIConfig{}
	}

	return config, nil
}
