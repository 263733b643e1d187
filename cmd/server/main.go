package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/audit"
	"github.com/ericksa/legalyze/internal/config"
	"github.com/ericksa/legalyze/internal/llm"
	"github.com/ericksa/legalyze/internal/logging"
	"github.com/ericksa/legalyze/internal/workers"
	"github.com/ericksa/legalyze/pkg/mcp"
)

var (
	configDir string
	mcpMode   bool
)

var rootCmd = &cobra.Command{
	Use:           "legalyze-server",
	Short:         "Contract analysis backend",
	Long:          "Serves the simplify, red flag, Q&A, improve and suggestion operations over HTTP, or as MCP tools on stdio with --mcp.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "serve the analysis tools over MCP on stdin/stdout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = []string{configDir}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, cleanup, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mcpMode {
		logger.Info("serving MCP tools on stdio", zap.Bool("mock_mode", srv.analysisWorker().MockMode()))
		return srv.handler.Serve(ctx)
	}
	return serveHTTP(ctx, cfg, srv, logger)
}

// newAnalysisWorker builds the model client and worker for cfg.
func newAnalysisWorker(cfg *config.Config, logger *zap.Logger) (*workers.AnalysisWorker, error) {
	gen, err := llm.NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		logger.Warn("no LLM api key configured, serving sample responses")
	}
	return workers.NewAnalysisWorker(gen,
		workers.WithResponseCache(cfg.Analysis.TTL()),
		workers.WithAnalysisLogger(logger.Named("analysis")),
	), nil
}

// newServer wires the worker, journal and config API for cfg.
func newServer(cfg *config.Config, logger *zap.Logger) (*server, func(), error) {
	worker, err := newAnalysisWorker(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var auditor *audit.Auditor
	if cfg.Audit.Enabled {
		auditor, err = audit.NewAuditor(cfg.Audit.DSN, logger.Named("audit"))
		if err != nil {
			return nil, nil, err
		}
	}

	reload := func() (*config.Config, error) {
		if configDir != "" {
			return config.Load(configDir)
		}
		return config.Load()
	}

	srv := &server{
		handler:   mcp.NewHandler(worker, auditor, logger.Named("tools")),
		worker:    worker,
		configAPI: config.NewConfigAPI(cfg, reload),
		logger:    logger,
	}
	srv.configAPI.OnReload(srv.applyConfig)
	cleanup := func() {
		if err := auditor.Close(); err != nil {
			logger.Warn("closing audit journal", zap.Error(err))
		}
	}
	return srv, cleanup, nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, srv *server, logger *zap.Logger) error {
	timeout, shutdownTimeout := cfg.Server.Durations()
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.router(cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Legalyze backend",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("mock_mode", srv.analysisWorker().MockMode()),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
