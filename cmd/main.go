package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"har-prep/controller"
	"har-prep/services/ingest"
	"har-prep/utils"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	configPath := flag.String("config", "config/pipeline.yaml", "path to pipeline.yaml")
	logFile := flag.String("log", "", "optional log file path (stdout is always included)")
	outDir := flag.String("out", "", "override storage.base_dir from the config")
	seed := flag.Int64("seed", -1, "override pipeline.seed (negative keeps the config value)")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.INFO, *logFile)
	defer logger.Close()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  har-prep  ·  HAR Dataset Preparation Pipeline")
	utils.L().Info("═══════════════════════════════════════════════════")

	// ── Load config ──────────────────────────────────────────────────
	cfg, err := utils.LoadPipelineConfig(*configPath)
	if err != nil {
		utils.L().Fatal("load pipeline config: %v", err)
	}
	if *outDir != "" {
		cfg.Storage.BaseDir = *outDir
	}
	if *seed >= 0 {
		cfg.Pipeline.Seed = *seed
	}

	// Resolve relative base_dir to absolute.
	if !filepath.IsAbs(cfg.Storage.BaseDir) {
		abs, _ := filepath.Abs(cfg.Storage.BaseDir)
		cfg.Storage.BaseDir = abs
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		utils.L().Warn("received signal: %v, stopping between sessions", sig)
		cancel()
	}()

	// ── Pipeline ─────────────────────────────────────────────────────
	source := ingest.NewCSVSessionReader(cfg.Dataset)
	pipeline, err := controller.NewPipelineController(cfg, source)
	if err != nil {
		utils.L().Fatal("init pipeline: %v", err)
	}

	utils.L().Info("seed=%d  policy=%s  reference=%s  proportions=%.2f/%.2f/%.2f",
		cfg.Pipeline.Seed, cfg.Pipeline.MinClassPolicy, cfg.Pipeline.ReferenceModality,
		cfg.Pipeline.Proportions.Train, cfg.Pipeline.Proportions.Validation, cfg.Pipeline.Proportions.Test)

	manifest, err := pipeline.Run(ctx)
	if err != nil {
		utils.L().Fatal("pipeline failed: %v", err)
	}

	utils.L().Info("run %s complete  (dataset rows: %d)", manifest.RunID, manifest.DatasetRows)
	fmt.Println("\n✓ har-prep finished. Dataset at:", pipeline.OutDir())
}
