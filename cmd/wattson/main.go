package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/abramin/wattson/internal/catalog"
	"github.com/abramin/wattson/internal/classify"
	"github.com/abramin/wattson/internal/cli"
	"github.com/abramin/wattson/internal/db"
	"github.com/abramin/wattson/internal/dialog"
	"github.com/abramin/wattson/internal/llm"
	"github.com/abramin/wattson/internal/metrics"
	"github.com/abramin/wattson/internal/repository"
	"github.com/abramin/wattson/internal/resolve"
	"github.com/abramin/wattson/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is a development convenience; real environment variables win.
	_ = godotenv.Load()

	logger := newLogger()

	// Determine DB path: env var or default ~/.wattson/wattson.db
	dbPath := os.Getenv("WATTSON_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".wattson", "wattson.db")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	formulaRepo := repository.NewSQLiteFormulaRepo(database)
	prefRepo := repository.NewSQLitePreferenceRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// The resolver scores against an in-memory snapshot of the stored
	// catalog; re-run the process after a catalog import to pick it up.
	entries, err := formulaRepo.ListAll(context.Background())
	if err != nil {
		return fmt.Errorf("loading formula catalog: %w", err)
	}

	rules := resolve.StaticRules(resolve.DefaultRules())
	if path := os.Getenv("WATTSON_RULES"); path != "" {
		rules, err = resolve.NewRuleProvider(path)
		if err != nil {
			return fmt.Errorf("loading combine rules: %w", err)
		}
	}
	resolver := resolve.New(catalog.New(entries), rules, resolve.DefaultConfig())

	scope := os.Getenv("WATTSON_SCOPE")
	if scope == "" {
		scope = "default"
	}

	app := &cli.App{
		Formulas: formulaRepo,
		Prefs:    prefRepo,
		Resolver: resolver,
		UoW:      uow,
		Logger:   logger,
		Scope:    scope,
	}

	// Detect interactive terminal for the chat TUI and confirmations.
	app.Interactive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Wire the conversational pipeline (only when LLM is enabled)
	llmCfg := llm.LoadConfig()
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		llmClient := llm.NewOllamaClient(llmCfg, observer)
		classifier := classify.NewClassifier(llmClient, observer)

		metricsCfg := metrics.LoadConfig()
		if err := metricsCfg.Validate(); err != nil {
			return fmt.Errorf("platform configuration: %w", err)
		}
		source := metrics.NewClient(metricsCfg)

		dispatcher := dialog.New(classifier, resolver, source, prefRepo, logger.WithPrefix("dialog"))
		app.Sessions = session.NewManager(dispatcher, session.Config{IdleTimeout: sessionIdle()}, logger.WithPrefix("session"))
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// newLogger builds the stderr logger. Quiet by default so command output
// stays clean; WATTSON_LOG_LEVEL or --verbose opens it up.
func newLogger() *log.Logger {
	level := log.WarnLevel
	if v := os.Getenv("WATTSON_LOG_LEVEL"); v != "" {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "wattson",
	})
}

// sessionIdle reads the session expiry override. Zero lets the manager
// fall back to its default window.
func sessionIdle() time.Duration {
	if v := os.Getenv("WATTSON_SESSION_IDLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 0
}
