// Screen monitor daemon: captures the screen on a cycle, OCRs it, matches
// configured targets and serves the control surface on localhost.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/screensentry/platform/internal/config"
	"github.com/screensentry/platform/internal/monitor"
	"github.com/screensentry/platform/internal/ocr"
	"github.com/screensentry/platform/internal/overlay"
	"github.com/screensentry/platform/internal/screen"
	"github.com/screensentry/platform/internal/server"
	"github.com/screensentry/platform/internal/stats"
)

var (
	flagAddr        string
	flagMode        string
	flagThreshold   int
	flagInterval    float64
	flagPreprocess  bool
	flagSeedTargets bool
	flagAutoStart   bool
	flagDebug       bool
)

var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the screen for configured text targets",
	Long: `monitor periodically captures the screen, recognizes on-screen text
and annotates every configured target it finds. Targets, match mode,
threshold and overlay styles are adjustable at runtime over the HTTP
control surface.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	rootCmd.Flags().StringVar(&flagMode, "mode", "", "initial match mode: exact, contains or fuzzy")
	rootCmd.Flags().IntVar(&flagThreshold, "threshold", -1, "initial OCR confidence threshold (0-100)")
	rootCmd.Flags().Float64Var(&flagInterval, "interval", 0, "target seconds per detection cycle")
	rootCmd.Flags().BoolVar(&flagPreprocess, "preprocess", false, "preprocess frames before OCR")
	rootCmd.Flags().BoolVar(&flagSeedTargets, "seed-targets", false, "start with the built-in target set")
	rootCmd.Flags().BoolVar(&flagAutoStart, "start", false, "begin monitoring immediately")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Load()
	applyFlags(cfg)

	engine, err := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Language:    cfg.OCRLanguage,
		PageSegMode: cfg.OCRPageSegMode,
	})
	if err != nil {
		slog.Error("failed to initialize OCR engine", "error", err)
		return err
	}

	var prep ocr.Preprocessor
	if cfg.Preprocess {
		prep = ocr.NewGrayscalePreprocessor()
	}
	extractor := ocr.NewExtractor(engine, prep)
	defer func() { _ = extractor.Close() }()

	capturer := screen.New()
	defer capturer.Close()

	scheduler := overlay.NewScheduler()
	reporter := stats.NewReporter()
	loop := monitor.New(capturer, extractor, scheduler, reporter, cfg)

	srv := server.New(loop, scheduler, reporter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if flagAutoStart {
		if err := loop.Start(ctx); err != nil {
			slog.Error("auto-start failed", "error", err)
			return err
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("monitor starting", "http", cfg.HTTPAddr, "mode", cfg.MatchMode, "threshold", cfg.ConfidenceThreshold)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	loop.Stop()
	slog.Info("shutdown complete")
	return nil
}

// applyFlags lets command-line flags override environment configuration.
func applyFlags(cfg *config.Config) {
	if flagAddr != "" {
		cfg.HTTPAddr = flagAddr
	}
	if flagMode != "" {
		cfg.MatchMode = flagMode
	}
	if flagThreshold >= 0 {
		cfg.ConfidenceThreshold = flagThreshold
	}
	if flagInterval > 0 {
		cfg.CycleInterval = flagInterval
	}
	if flagPreprocess {
		cfg.Preprocess = true
	}
	if flagSeedTargets {
		cfg.SeedDefaultTargets = true
	}
}
