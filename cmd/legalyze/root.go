package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/config"
	"github.com/ericksa/legalyze/internal/document"
	"github.com/ericksa/legalyze/internal/llm"
	"github.com/ericksa/legalyze/internal/logging"
	"github.com/ericksa/legalyze/internal/session"
	"github.com/ericksa/legalyze/internal/workers"
)

var (
	serverURL string
	configDir string
	verbose   bool
	local     bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "legalyze",
	Short: "Analyze, question and improve contracts from the terminal",
	Long: `Legalyze simplifies contracts, flags risky clauses, answers questions
about them and helps rewrite them in a sandbox.

Analysis runs on a Legalyze backend (--server), or in-process with --local.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		if configDir != "" {
			paths = []string{configDir}
		}
		loaded, err := config.Load(paths...)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if serverURL != "" {
			cfg.Client.ServerURL = serverURL
		}

		if verbose {
			logCfg := cfg.Log
			logCfg.Level = "debug"
			logger, err = logging.New(logCfg)
		} else {
			logger, err = logging.FileOnly(cfg.Log)
		}
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "analysis backend URL (default from config, http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&local, "local", false, "run analysis in-process instead of calling a backend")
}

// newAnalyzer returns the backend client, or an in-process worker with --local.
func newAnalyzer() (session.Analyzer, error) {
	if local {
		gen, err := llm.NewGenerator(cfg.LLM)
		if err != nil {
			return nil, err
		}
		return workers.NewAnalysisWorker(gen,
			workers.WithResponseCache(cfg.Analysis.TTL()),
			workers.WithAnalysisLogger(logger.Named("analysis")),
		), nil
	}
	return analysis.NewClient(cfg.Client.ServerURL, analysis.WithLogger(logger.Named("client"))), nil
}

func newGate() *document.Gate {
	gate := document.NewGate(nil)
	gate.MaxSize = cfgMaxUpload()
	return gate
}

// newObjectSource returns nil when object storage is not configured.
func newObjectSource() (*document.ObjectSource, error) {
	if !cfg.MinIO.Enabled {
		return nil, nil
	}
	return document.NewObjectSource(document.ObjectStoreConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
	})
}
