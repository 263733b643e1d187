package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ericksa/legalyze/internal/analysis"
	"github.com/ericksa/legalyze/internal/document"
	"github.com/ericksa/legalyze/internal/session"
	"github.com/ericksa/legalyze/internal/terminal"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [file]",
	Short: "Print a plain-language summary of a contract",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runOneShot(cmd, args[0], session.ModeSimplified)
	},
}

var redflagsCmd = &cobra.Command{
	Use:   "redflags [file]",
	Short: "List risky clauses in a contract",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runOneShot(cmd, args[0], session.ModeRedFlags)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the analysis backend",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if local {
			fmt.Fprintln(cmd.OutOrStdout(), "local analysis, no backend to check")
			return
		}
		client := analysis.NewClient(cfg.Client.ServerURL, analysis.WithLogger(logger.Named("client")))
		health, err := client.Health(cmd.Context())
		if err != nil {
			fatal("Error reaching backend", err)
		}
		writeHealth(cmd.OutOrStdout(), cfg.Client.ServerURL, health)
	},
}

func init() {
	rootCmd.AddCommand(simplifyCmd, redflagsCmd, healthCmd)
}

func runOneShot(cmd *cobra.Command, path string, mode session.Mode) {
	analyzer, err := newAnalyzer()
	if err != nil {
		fatal("Error creating analyzer", err)
	}
	f, err := readLocalFile(path)
	if err != nil {
		fatal("Error reading file", err)
	}
	sink := terminal.New(cmd.OutOrStdout())
	if err := analyzeFile(cmd.Context(), analyzer, sink, f, mode); err != nil {
		fatal("Analysis failed", err)
	}
}

// analyzeFile loads f into a fresh session and runs one analysis on it.
func analyzeFile(ctx context.Context, analyzer session.Analyzer, sink session.Sink, f document.File, mode session.Mode) error {
	sess := session.New(analyzer,
		session.WithSink(sink),
		session.WithIngester(newGate()),
		session.WithLogger(logger.Named("session")),
	)
	if err := sess.Upload(ctx, f); err != nil {
		return err
	}
	if err := sess.SwitchMode(mode); err != nil {
		return err
	}
	return sess.RequestAnalysis(ctx, mode)
}

func writeHealth(w io.Writer, url string, h *analysis.HealthResponse) {
	model := "sample responses (no model configured)"
	if h.ModelConfigured {
		model = "model configured"
	}
	fmt.Fprintf(w, "%s: %s, version %s, %s\n", url, h.Status, h.Version, model)
}
