package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"

	"github.com/ai-nutricare/backend/internal/archive"
	"github.com/ai-nutricare/backend/internal/config"
	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
	"github.com/ai-nutricare/backend/internal/foods"
	"github.com/ai-nutricare/backend/internal/gemini"
	"github.com/ai-nutricare/backend/internal/logging"
	"github.com/ai-nutricare/backend/internal/planner"
	"github.com/ai-nutricare/backend/internal/risk"
	"github.com/ai-nutricare/backend/internal/service"
	"github.com/ai-nutricare/backend/internal/store"
)

var logger = logging.Logger(logging.SourceApp)

// closers releases resources opened while wiring, in reverse order.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}
}

// newGeminiClient returns nil when no API key is configured.
func newGeminiClient(ctx context.Context, cfg config.Config) (*gemini.Client, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, plan generation and Gemini OCR are disabled")
		return nil, nil
	}
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Retry:  cfg.Retry(),
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	logger.Info("Gemini client ready", "model", client.Model(), "max_retries", cfg.GeminiMaxRetries)
	return client, nil
}

// newOCREngine picks the scanned-report fallback. A missing dependency
// disables OCR rather than failing startup.
func newOCREngine(cfg config.Config, client *gemini.Client) extraction.OCREngine {
	switch cfg.OCREngine {
	case config.OCRTesseract:
		engine := extraction.NewTesseractOCR(cfg.PdftoppmCmd, cfg.TesseractCmd)
		if err := engine.Available(); err != nil {
			logger.Warn("tesseract OCR unavailable, scanned reports yield no text", "err", err)
			return extraction.NoopOCR{}
		}
		return engine
	case config.OCRGemini:
		if client == nil {
			logger.Warn("Gemini OCR requested without an API key, OCR disabled")
			return extraction.NoopOCR{}
		}
		return extraction.NewGeminiOCR(client)
	default:
		return extraction.NoopOCR{}
	}
}

// openStore opens the configured plan store. StoreNone returns nil.
func openStore(ctx context.Context, cfg config.Config) (store.PlanStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Info("using in-memory plan store")
		return store.NewMemoryStore(), nil
	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open SQLite store: %w", err)
		}
		logger.Info("using SQLite plan store", "path", cfg.SQLitePath)
		return s, nil
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.Project)
		if err != nil {
			return nil, fmt.Errorf("create Firestore client: %w", err)
		}
		logger.Info("using Firestore plan store", "project", cfg.Project)
		return store.NewFirestoreStore(client), nil
	default:
		logger.Info("plan persistence disabled")
		return nil, nil
	}
}

// openArchive returns nil when no bucket is configured.
func openArchive(ctx context.Context, cfg config.Config, c *closers) (archive.Archive, error) {
	if cfg.ReportBucket == "" {
		return nil, nil
	}
	client, err := gcsstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	c.add(client.Close)
	logger.Info("archiving uploaded reports", "bucket", cfg.ReportBucket)
	return archive.NewGCSArchive(client, cfg.ReportBucket), nil
}

// buildPipeline loads the model artifacts and opens every configured
// backend. The risk model is mandatory.
func buildPipeline(ctx context.Context, cfg config.Config) (*service.Pipeline, closers, error) {
	var c closers

	model, err := risk.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, c, fmt.Errorf("load risk model: %w", err)
	}

	stats, err := features.LoadStats(cfg.ReferenceDataPath)
	if err != nil {
		logger.Warn("reference data unavailable, features are not standardized", "path", cfg.ReferenceDataPath, "err", err)
		stats = features.IdentityStats()
	}

	kb, err := foods.LoadKnowledgeBase(cfg.FoodKBPath)
	if err != nil {
		return nil, c, fmt.Errorf("load food knowledge base: %w", err)
	}

	client, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return nil, c, err
	}
	var plans *planner.Planner
	if client != nil {
		plans = planner.New(planner.NewGeminiGenerator(client))
	}

	ps, err := openStore(ctx, cfg)
	if err != nil {
		return nil, c, err
	}
	if ps != nil {
		c.add(ps.Close)
	}

	ar, err := openArchive(ctx, cfg, &c)
	if err != nil {
		c.Close()
		return nil, nil, err
	}

	p := service.NewPipeline(service.Dependencies{
		Text:    extraction.NewTextExtractor(newOCREngine(cfg, client)),
		Risk:    model,
		Stats:   stats,
		Foods:   foods.NewSelector(kb, nil),
		Planner: plans,
		Store:   ps,
		Archive: ar,
	})
	return p, c, nil
}
