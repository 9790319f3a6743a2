// Package main implements the scout CLI: the process entry point that
// wires config, logging, and the four core operations (query, sync, nav,
// index query) behind cobra.Commands. Each subcommand lives in its own
// cmd_*.go file; PersistentPreRunE builds the shared application once per
// invocation (load config, init logging, construct clients).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scout/internal/config"
	"scout/internal/logging"
	"scout/internal/scoutcore/audit"
	"scout/internal/scoutcore/extract"
	"scout/internal/scoutcore/gate"
	"scout/internal/scoutcore/graph"
	"scout/internal/scoutcore/index"
	"scout/internal/scoutcore/llm"
	"scout/internal/scoutcore/router"
	"scout/internal/scoutcore/scouterr"
	"scout/internal/scoutcore/synth"
	syncpkg "scout/internal/scoutcore/sync"
)

var (
	workspace  string
	configPath string
	verbose    bool

	app *application
)

// application bundles every wired component a command needs, built once
// in PersistentPreRunE and shared across all subcommands.
type application struct {
	cfg      *config.Config
	repoRoot string

	auditLog *audit.Log
	graphG   *graph.Graph
	idx      *index.Index
	registry *extract.Registry

	gate   *gate.Gate
	router *router.Router
	synth  *synth.Synthesizer

	engine *syncpkg.Engine
}

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Scout - hybrid doc sync and gated LLM synthesis core",
	Long: `Scout keeps living documentation synchronized with a source tree and
answers natural-language questions about it by routing through a
confidence-gated, tiered LLM pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			var err error
			ws, err = os.Getwd()
			if err != nil {
				return scouterr.Wrap(scouterr.IOError, "could not determine working directory", err)
			}
		}
		abs, err := filepath.Abs(ws)
		if err != nil {
			return scouterr.Wrap(scouterr.IOError, "could not resolve workspace path", err)
		}
		ws = abs

		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		path := configPath
		if path == "" {
			path = filepath.Join(ws, ".scout", "config.yaml")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		_ = cfg.WriteLoggingConfig(ws)

		if err := cfg.Validate(); err != nil {
			return scouterr.Wrap(scouterr.ConfigMissing, err.Error(), err)
		}

		a, err := buildApplication(cmd.Context(), cfg, ws)
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.graphG != nil {
			cachePath := filepath.Join(app.repoRoot, ".scout", "dependency_graph.v2.json")
			if err := app.graphG.SaveCache(cachePath); err != nil {
				logging.SyncWarn("scout: failed to persist dependency graph: %v", err)
			}
		}
		if app != nil && app.idx != nil {
			_ = app.idx.Close()
		}
		logging.CloseAll()
	},
}

func buildApplication(ctx context.Context, cfg *config.Config, repoRoot string) (*application, error) {
	auditPath := cfg.Paths.AuditLogPath
	if auditPath == "" {
		auditPath = audit.DefaultPath(repoRoot)
	}
	auditLog, err := audit.Open(auditPath)
	if err != nil {
		return nil, scouterr.Wrap(scouterr.IOError, "could not open audit log", err)
	}

	g := graph.New()
	cachePath := filepath.Join(repoRoot, ".scout", "dependency_graph.v2.json")
	if err := g.LoadCache(cachePath); err != nil {
		logging.SyncWarn("scout: could not load dependency graph cache: %v", err)
	}

	idxPath := cfg.Paths.IndexDBPath
	if idxPath == "" {
		idxPath = index.DefaultPath(repoRoot)
	}
	idx, err := index.Open(idxPath)
	if err != nil {
		return nil, scouterr.Wrap(scouterr.IOError, "could not open symbol index", err)
	}

	var geminiClient llm.Client
	if cfg.LLM.GeminiAPIKey != "" {
		gc, err := llm.NewGeminiClient(ctx, cfg.LLM.GeminiAPIKey)
		if err != nil {
			return nil, scouterr.Wrap(scouterr.LLMTransport, "could not construct Gemini client", err)
		}
		geminiClient = gc
	}

	var middleManagerClient llm.Client
	if cfg.LLM.GroqAPIKey != "" {
		gq, err := llm.NewGroqClient(cfg.LLM.GroqAPIKey, "")
		if err != nil {
			return nil, scouterr.Wrap(scouterr.LLMTransport, "could not construct Groq client", err)
		}
		middleManagerClient = gq
	}
	if middleManagerClient == nil {
		middleManagerClient = geminiClient
	}
	if geminiClient == nil {
		geminiClient = middleManagerClient
	}

	auditedGemini := llm.NewAuditingClient(geminiClient, auditLog)
	auditedMiddleManager := llm.NewAuditingClient(middleManagerClient, auditLog)

	gt := gate.New(auditedMiddleManager, auditLog, gate.Config{
		MaxAttempts:         cfg.Gate.MaxAttempts,
		ConfidenceThreshold: cfg.Gate.ConfidenceThreshold,
		Model:               cfg.LLM.MiddleManagerModel,
	})

	rt := router.New(auditedGemini, auditLog, router.Config{
		FlashModel: cfg.LLM.FlashModel,
		ProModel:   cfg.LLM.ProModel,
	})

	sy := synth.New(auditedGemini, cfg.LLM.FlashModel, repoRoot)

	registry := extract.DefaultRegistry()

	engine := &syncpkg.Engine{
		RepoRoot: repoRoot,
		Registry: registry,
		Graph:    g,
		Index:    idx,
		Synth:    sy,
	}

	return &application{
		cfg:      cfg,
		repoRoot: repoRoot,
		auditLog: auditLog,
		graphG:   g,
		idx:      idx,
		registry: registry,
		gate:     gt,
		router:   rt,
		synth:    sy,
		engine:   engine,
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Repo root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: <workspace>/.scout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(queryCmd, syncCmd, navCmd, indexCmd, statsCmd, auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to a process exit code: 0 success (never
// reached here), 1 user error or missing config, 2 unrecoverable LLM
// error.
func exitCodeFor(err error) int {
	if se, ok := scouterr.As(err); ok {
		switch se.Kind {
		case scouterr.LLMTransport, scouterr.LLMMalformed, scouterr.GateEscalated:
			return 2
		default:
			return 1
		}
	}
	return 1
}
