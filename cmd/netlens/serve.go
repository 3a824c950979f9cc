package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netlens/netlens/pkg/api"
	"github.com/netlens/netlens/pkg/llm"
	"github.com/netlens/netlens/pkg/log"
	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the NetLens API server",
	Long: `Start the REST API server over a local data directory. The LLM
endpoint is optional; without it analysis submissions fail while the
rest of the platform keeps working.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", envOr("NETLENS_LISTEN", ":8080"), "address to listen on")
	serveCmd.Flags().String("data-dir", envOr("NETLENS_DATA_DIR", "/var/lib/netlens"), "data directory")
	serveCmd.Flags().String("llm-endpoint", envOr("NETLENS_LLM_ENDPOINT", ""), "LLM analysis backend URL")
	serveCmd.Flags().String("llm-model", envOr("NETLENS_LLM_MODEL", ""), "model name passed to the LLM backend")
	serveCmd.Flags().String("log-level", envOr("NETLENS_LOG_LEVEL", "info"), "log level (debug|info|warn|error)")
	serveCmd.Flags().Bool("log-json", os.Getenv("NETLENS_LOG_JSON") == "true", "log in JSON instead of console format")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runServe(cmd *cobra.Command, args []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	llmEndpoint, _ := cmd.Flags().GetString("llm-endpoint")
	llmModel, _ := cmd.Flags().GetString("llm-model")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})

	mgr, err := manager.NewManager(&manager.Config{DataDir: dataDir})
	if err != nil {
		return fmt.Errorf("failed to create manager: %v", err)
	}
	defer mgr.Close()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("store", true, "open at "+dataDir)

	collector := metrics.NewCollector(mgr.Store())
	collector.Start()
	defer collector.Stop()

	var adapter llm.Adapter = llm.NewHTTPAdapter(llmEndpoint, llmModel)
	if llmEndpoint == "" {
		log.WithComponent("serve").Warn().Msg("No LLM endpoint configured, analysis jobs will fail")
	}

	api.Version = Version
	server := api.NewServer(mgr, adapter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(listen)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.WithComponent("serve").Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %v", err)
		}
	}
	return nil
}
