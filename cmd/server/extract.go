package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ai-nutricare/backend/internal/clinical"
	"github.com/ai-nutricare/backend/internal/config"
	"github.com/ai-nutricare/backend/internal/extraction"
	"github.com/ai-nutricare/backend/internal/features"
	"github.com/ai-nutricare/backend/internal/risk"
	"github.com/ai-nutricare/backend/internal/service"
)

var cmdExtract = &cli.Command{
	Name:      "extract",
	Usage:     "Read a lab report PDF and print the extracted biomarkers",
	ArgsUsage: "<report.pdf>",
	Flags: append(config.Flags(),
		&cli.BoolFlag{Name: "assess", Usage: "also score the report and print the clinical insight"},
	),
	Action: extract,
}

type extractOutput struct {
	Report   service.Report    `json:"report"`
	Risk     *float64          `json:"risk,omitempty"`
	Clinical *clinical.Insight `json:"clinical,omitempty"`
}

func extract(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("a report path is required")
	}
	cfg := config.FromCommand(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if !extraction.LooksLikePDF(data) {
		return fmt.Errorf("%s is not a PDF", path)
	}

	client, err := newGeminiClient(ctx, cfg)
	if err != nil {
		return err
	}

	deps := service.Dependencies{Text: extraction.NewTextExtractor(newOCREngine(cfg, client))}
	if cmd.Bool("assess") {
		model, err := risk.LoadModel(cfg.ModelPath)
		if err != nil {
			return fmt.Errorf("load risk model: %w", err)
		}
		stats, err := features.LoadStats(cfg.ReferenceDataPath)
		if err != nil {
			logger.Warn("reference data unavailable, features are not standardized", "err", err)
			stats = features.IdentityStats()
		}
		deps.Risk = model
		deps.Stats = stats
	}
	p := service.NewPipeline(deps)

	out := extractOutput{Report: p.ReadReport(ctx, data)}
	if cmd.Bool("assess") {
		a, err := p.Assess(ctx, out.Report.Parameters)
		if err != nil {
			return err
		}
		out.Risk = &a.Risk
		out.Clinical = &a.Insight
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
