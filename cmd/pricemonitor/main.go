package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/price-monitor/config"
	"github.com/yourusername/price-monitor/internal/delivery/rest"
	"github.com/yourusername/price-monitor/internal/delivery/telegram"
	"github.com/yourusername/price-monitor/internal/domain/repository"
	"github.com/yourusername/price-monitor/internal/infrastructure/export"
	"github.com/yourusername/price-monitor/internal/infrastructure/metrics"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
	"github.com/yourusername/price-monitor/internal/infrastructure/storage"
	"github.com/yourusername/price-monitor/internal/usecase"
)

const usage = `Usage: pricemonitor <command> [flags]

Commands:
  report   compare an inventory file with Keepa exports and write the report
  bot      run the Telegram bot
  serve    run the HTTP API

Run "pricemonitor report -h" for the report flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "report":
		err = runReport(ctx, cfg, os.Args[2:], os.Stdout)
	case "bot":
		err = runBot(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("❌ %v", err)
	}
}

// newReportUseCase wires the pipeline; recorder may be nil
func newReportUseCase(cfg *config.Config, recorder repository.PipelineRecorder) usecase.ReportUseCase {
	exporters := []repository.Exporter{
		export.NewCSVExporter(),
		export.NewXLSXExporter(),
		export.NewSQLiteExporter(cfg.ExportTmpDir),
	}
	return usecase.NewReportUseCase(parser.NewTableLoader(), exporters, recorder, usecase.ReportOptions{
		Mode:              cfg.JoinMode,
		Thresholds:        cfg.Thresholds,
		DefaultSite:       cfg.DefaultSite,
		InventoryEncoding: cfg.InventoryEncoding,
	})
}

func runBot(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	// the bot exposes no HTTP endpoint, so runs are not recorded
	reports := newReportUseCase(cfg, nil)
	sessions := usecase.NewSessionUseCase(
		storage.NewMemorySessionRepository(cfg.MaxPendingEdits),
		parser.NewTableLoader(),
		reports,
		cfg.InventoryEncoding,
	)

	handler, err := telegram.NewBotHandler(cfg.TelegramToken, sessions, telegram.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AlignOffset:    cfg.AlignOffset,
		HistogramBins:  cfg.HistogramBins,
		Thresholds:     cfg.Thresholds,
	})
	if err != nil {
		return err
	}
	log.Printf("📋 join key %s, thresholds %s / %s", cfg.JoinMode,
		cfg.Thresholds.OutOfMarketBelow, cfg.Thresholds.CompetitiveFrom)
	return handler.Start(ctx)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	reg := metrics.New()
	reports := newReportUseCase(cfg, reg)
	app := rest.NewApp(rest.NewHandler(reports, reg, cfg.HistogramBins), int(cfg.MaxUploadBytes()))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 HTTP API listening on %s", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down HTTP API...")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return ctx.Err()
	}
}
