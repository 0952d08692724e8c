package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/analysis"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/config"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/dataset"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/llm"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/logging"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/router"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/storage"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mission-analyzer",
	Short: "Query NASA mission data by keyword or through a language model",
	Long: `mission-analyzer answers questions about a small NASA mission dataset.

Standard queries are classified by keyword (mission, year, status) and return
the matching column plus a chart description. Advanced queries are forwarded
to an OpenAI-compatible model when GROQ_API_KEY is set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, mcpCmd, queryCmd, askCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wired service and the resources it owns.
type app struct {
	svc     *analysis.Service
	history *storage.HistoryStore
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

// buildApp wires dataset, router, model client and history store from cfg.
func buildApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	table := dataset.Default()
	if cfg.Dataset.Path != "" {
		loaded, err := dataset.LoadFile(cfg.Dataset.Path)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		table = loaded
	}

	var rules []router.Rule
	if cfg.Router.StrictKeywords {
		rules = router.KeywordRules()
	}
	r := router.New(table, rules...)

	model := llm.New(cfg.LLM, logger.Named("llm"))

	history, err := storage.OpenHistory(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	logger.Info("mission analyzer ready",
		zap.Int("missions", table.Len()),
		zap.Bool("strict_keywords", cfg.Router.StrictKeywords),
		zap.Stringer("model", model),
		zap.String("history", history.Path()))

	return &app{
		svc:     analysis.New(r, model, history, logger.Named("analysis")),
		history: history,
	}, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
