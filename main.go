// Command collab runs the influencer marketplace backend.
//
//	collab serve --config collab.yaml
//	collab migrate
//	collab close-idle
//
// Database credentials, the OpenAI key and the JWT secret can also come from
// MYSQL_USER, MYSQL_PWD, MYSQL_HOST, MYSQL_DATABASE, OPENAI_API_KEY and
// JWT_SECRET.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := buildRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "collab",
		Short:         "Influencer marketplace backend with negotiation agents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig := os.Getenv("COLLAB_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "collab.yaml"
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "path to YAML configuration file")

	root.AddCommand(
		buildServeCmd(&configPath),
		buildMigrateCmd(&configPath),
		buildCloseIdleCmd(&configPath),
	)
	return root
}
