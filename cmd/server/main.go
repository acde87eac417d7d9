package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"vaxmarket/internal/api"
	"vaxmarket/internal/catalog"
	"vaxmarket/internal/config"
	"vaxmarket/internal/engine"
	"vaxmarket/internal/modules"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	port := flag.Int("port", 0, "listen port (overrides config)")
	preload := flag.Bool("preload", false, "generate the dataset at startup")
	flag.Parse()

	// 1. Config + logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *preload {
		cfg.Dataset.Preload = true
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	cat := catalog.Default()
	if cfg.Dataset.CatalogFile != "" {
		if cat, err = catalog.LoadFile(cfg.Dataset.CatalogFile); err != nil {
			sugar.Fatalw("catalog", "file", cfg.Dataset.CatalogFile, "error", err)
		}
	}

	// 2. Lazy dataset: generated on the first request that needs it
	cache := engine.NewCache(func() (*engine.ColumnStore, error) {
		sugar.Infow("generating dataset", "seed", cfg.Dataset.Seed, "expected_records", engine.FormatCount(cat.RecordCount()))
		t0 := time.Now()
		cs, err := engine.Generate(context.Background(), cat, cfg.Dataset.Seed)
		if err != nil {
			sugar.Errorw("dataset generation failed", "error", err)
			return nil, err
		}
		sugar.Infow("dataset ready", "records", engine.FormatCount(cs.Len()), "took", time.Since(t0))
		return cs, nil
	})

	opts := modules.Options{SampleCap: cfg.Sampling.ScatterCap, SampleSeed: cfg.Sampling.Seed}
	e := api.NewServer(api.NewHandler(cache, opts, sugar), sugar)

	// 3. Optional warm-up; /health reports 503 until it finishes
	if cfg.Dataset.Preload {
		go func() {
			_, _ = cache.Get()
		}()
	}

	// 4. Start Server
	sugar.Infow("server listening", "addr", cfg.Addr(), "preload", cfg.Dataset.Preload)
	if err := e.Start(cfg.Addr()); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
