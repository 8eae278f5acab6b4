package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/scanning"
	"github.com/zombor/shopping-tracker/internal/server"
	"github.com/zombor/shopping-tracker/internal/shopping"
	"github.com/zombor/shopping-tracker/internal/storage"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine
	_ = godotenv.Load()

	fs := ff.NewFlagSet("shopping-tracker")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		storeKind     = fs.StringLong("store", "bolt", "Storage backend: 'bolt' or 'file'")
		dbPath        = fs.StringLong("db", "shopping-tracker.db", "Database file path (bolt) or data directory (file)")
		scannerType   = fs.StringLong("scanner", "gemini", "Text recognizer: 'gemini', 'ollama' or 'none'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
		frameBuffer   = fs.IntLong("frame-buffer", 4, "Number of camera frames buffered for recognition")
		lockDuration  = fs.DurationLong("lock-duration", scanning.DefaultLockDuration, "How long detections are ignored after a price is captured")
		strictLookups = fs.BoolLong("strict-lookups", "Return errors for unknown list and item ids")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		_             = fs.StringLong("config", "", "Config file (JSON with comments)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SHOPPING_TRACKER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(parseJSONC),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize storage
	slog.Info("Initializing storage...", "backend", *storeKind, "path", *dbPath)
	store, err := storage.Open(*storeKind, *dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize text recognizer based on type
	var recognizer scanning.Recognizer
	switch *scannerType {
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		recognizer, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Info("Scanner disabled, only manual prices are accepted")
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "gemini, ollama or none")
		os.Exit(1)
	}
	if recognizer != nil {
		defer recognizer.Close()
	}

	lists := shopping.NewRepository(store, logger)
	lists.SetStrict(*strictLookups)
	prices := ledger.New(store, logger)

	queue := scanning.NewFrameQueue(*frameBuffer)
	defer queue.Close()

	notifier := scanning.NotifierFunc(func(price float64) {
		slog.Info("Price added", "price", price, "total", prices.Total())
	})
	capture := scanning.NewCaptureControllerWithDeps(queue, prices, notifier, logger, scanning.SystemClock(), *lockDuration)

	var frames server.FrameSink
	if recognizer != nil {
		frames = queue
	}

	basicAuth := server.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	srv := server.NewServer(lists, prices, capture, frames, basicAuth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", *port)
	httpServer := srv.NewHTTPServer(addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	if recognizer != nil {
		feed := scanning.NewFeed(recognizer, capture, logger)
		g.Go(func() error {
			return feed.Run(ctx, queue.Frames())
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down...")
		if err := capture.StopScanning(); err != nil {
			slog.Warn("Failed to stop scanner", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
