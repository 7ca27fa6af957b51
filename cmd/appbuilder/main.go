// Package main provides the appbuilder server entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ValorSage/ai-app-builder/internal/config"
	"github.com/ValorSage/ai-app-builder/internal/server"
	"github.com/ValorSage/ai-app-builder/internal/version"
)

func main() {
	var (
		cfgFile     string
		listenAddr  string
		projectRoot string
	)

	rootCmd := &cobra.Command{
		Use:           "appbuilder",
		Short:         "Backend for the web IDE: sandboxed file operations, issue aggregation and the AI agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default appbuilder.yaml in the working directory)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if projectRoot != "" {
				cfg.ProjectRoot = projectRoot
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg)
		},
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&projectRoot, "project-root", "", "project directory to serve (overrides config)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
