package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/csheth/cowrite/internal/llm"
	"github.com/csheth/cowrite/internal/logging"
	"github.com/csheth/cowrite/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the completion backend",
	Long: `serve hosts POST /completion. Each request carries the article title and its
sections; the configured model rewrites the draft and the reply holds the
revised markdown. GET /healthz and GET /metrics are served alongside.

Providers: ollama (default, OLLAMA_HOST / OLLAMA_MODEL), openai
(OPENAI_API_KEY) and echo, which returns the draft as markdown without a model.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("provider", "ollama", "model provider: ollama, openai or echo")
	serveCmd.Flags().String("model", "", "model name (provider default when empty)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"server.addr":  "addr",
		"llm.provider": "provider",
		"llm.model":    "model",
	})
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	client, err := llm.New(cfg.LLMSettings())
	if err != nil {
		return fmt.Errorf("configure llm: %w", err)
	}
	srv, err := server.New(client, server.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("completion backend listening", "addr", cfg.Server.Addr, "llm", client.Name())
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
