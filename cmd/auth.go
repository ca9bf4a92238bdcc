package cmd

import (
	"log"
	"strings"

	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/output"
	"github.com/spigell/interview-prep/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend api key stored in the OS keyring",
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the api key in the OS keyring",
	Run: func(cmd *cobra.Command, _ []string) {
		l := authLogger()
		out := output.Default()

		key, _ := cmd.Flags().GetString("key")
		if strings.TrimSpace(key) == "" {
			if !out.Terminal().Interactive() {
				l.Fatal("no key given", zap.String("hint", "pass --key when not running in a terminal"))
			}
			p := promptui.Prompt{Label: "API key", Mask: '*', Validate: notBlank}
			var err error
			if key, err = p.Run(); err != nil {
				l.Fatal("reading api key", zap.Error(err))
			}
		}

		if err := secrets.Store(key); err != nil {
			l.Fatal("storing api key", zap.Error(err))
		}
		out.Success("API key stored in the %s keyring entry", secrets.KeyringService)
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the api key from the OS keyring",
	Run: func(_ *cobra.Command, _ []string) {
		l := authLogger()

		if err := secrets.Delete(); err != nil {
			l.Fatal("deleting api key", zap.Error(err))
		}
		output.Default().Success("API key removed")
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the api key would be loaded from",
	Run: func(_ *cobra.Command, _ []string) {
		l := authLogger()
		out := output.Default()

		config, err := getConfig()
		if err != nil {
			l.Fatal("getting a config", zap.Error(err))
		}

		_, origin, err := secrets.LoadWithOrigin(secrets.Source{
			Name:    "api key",
			Value:   config.API.Key,
			File:    config.API.KeyFile,
			Keyring: config.API.Keyring,
		})
		if err != nil {
			out.Warning("%v", err)
			return
		}
		out.Info("API key is loaded from the %s", origin)
	},
}

func authLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authDeleteCmd, authStatusCmd)

	authSetCmd.Flags().StringP("key", "k", "", "api key to store (prompted when empty)")
}
